package broker

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/bonder-network/bonder/log"
	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeKind = "topic"

// Config of the message broker connection
type Config struct {
	// URL of the AMQP server (amqp:// or amqps://)
	URL string `mapstructure:"URL"`
	// Exchange where the messages are published. It is declared as a durable topic exchange
	Exchange string `mapstructure:"Exchange"`
}

// Producer publishes messages to a topic exchange
type Producer struct {
	exchange string
	conn     *amqp.Connection
	channel  *amqp.Channel
	// amqp channels are not safe for concurrent publishing
	mu  sync.Mutex
	log *log.Logger
}

func sanitizeURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	if !strings.HasSuffix(clean, "/") {
		clean += "/"
	}
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewProducer connects to the broker and declares the exchange
func NewProducer(cfg Config) (*Producer, error) {
	if cfg.Exchange == "" {
		return nil, errors.New("broker exchange is required")
	}
	cleanURL, err := sanitizeURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	conn, err := amqp.Dial(cleanURL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to the broker: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = channel.ExchangeDeclare(
		cfg.Exchange,
		exchangeKind,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("error declaring exchange %s: %w", cfg.Exchange, err)
	}
	return &Producer{
		exchange: cfg.Exchange,
		conn:     conn,
		channel:  channel,
		log:      log.WithFields("broker", cfg.Exchange),
	}, nil
}

// Publish sends body with the given routing key
func (p *Producer) Publish(ctx context.Context, routingKey, contentType string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  contentType,
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("error publishing to %s/%s: %w", p.exchange, routingKey, err)
	}
	p.log.Debugf("published %d bytes with routing key %s", len(body), routingKey)
	return nil
}

// Close closes the channel and the connection
func (p *Producer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
