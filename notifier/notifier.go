package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bonder-network/bonder/log"
)

const (
	levelError      = "error"
	jsonContentType = "application/json"
)

// Config of the notifier
type Config struct {
	// Label identifies the node on the notifications
	Label string `mapstructure:"Label"`
	// BufferSize is the number of notifications queued before new ones are dropped
	BufferSize int `mapstructure:"BufferSize"`
	// RoutingKey used when publishing to the broker. Empty disables the broker sink
	RoutingKey string `mapstructure:"RoutingKey"`
}

// Notification is the payload delivered to the sinks
type Notification struct {
	Level     string `json:"level"`
	Label     string `json:"label"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// Sink delivers notifications
type Sink interface {
	Notify(ctx context.Context, n Notification) error
}

// Notifier reports errors to the sinks in the background. Error never blocks: when the
// queue is full the notification is dropped
type Notifier struct {
	label string
	sinks []Sink
	queue chan Notification
	log   *log.Logger
	now   func() time.Time
}

func New(cfg Config, sinks ...Sink) *Notifier {
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Notifier{
		label: cfg.Label,
		sinks: sinks,
		queue: make(chan Notification, bufferSize),
		log:   log.WithFields("module", "notifier"),
		now:   time.Now,
	}
}

// Error queues an error notification
func (n *Notifier) Error(msg string) {
	notification := Notification{
		Level:     levelError,
		Label:     n.label,
		Message:   msg,
		Timestamp: n.now().Unix(),
	}
	select {
	case n.queue <- notification:
	default:
		n.log.Warnf("notification queue full, dropping: %s", msg)
	}
}

// Start delivers the queued notifications until ctx is done
func (n *Notifier) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case notification := <-n.queue:
			for _, s := range n.sinks {
				if err := s.Notify(ctx, notification); err != nil {
					n.log.Errorf("error delivering notification: %v", err)
				}
			}
		}
	}
}

// LogSink writes the notifications to the log
type LogSink struct {
	log *log.Logger
}

func NewLogSink() *LogSink {
	return &LogSink{log: log.WithFields("module", "notifier")}
}

func (s *LogSink) Notify(ctx context.Context, n Notification) error {
	s.log.Errorf("[%s] %s", n.Label, n.Message)
	return nil
}

// BrokerProducer is the message broker used by BrokerSink
type BrokerProducer interface {
	Publish(ctx context.Context, routingKey, contentType string, body []byte) error
}

// BrokerSink publishes the notifications as JSON messages
type BrokerSink struct {
	producer   BrokerProducer
	routingKey string
}

func NewBrokerSink(producer BrokerProducer, routingKey string) *BrokerSink {
	return &BrokerSink{producer: producer, routingKey: routingKey}
}

func (s *BrokerSink) Notify(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("error encoding notification: %w", err)
	}
	return s.producer.Publish(ctx, s.routingKey, jsonContentType, body)
}
