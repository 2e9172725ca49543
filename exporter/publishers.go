package exporter

import (
	"bytes"
	"context"
	"fmt"

	"github.com/creachadair/atomicfile"
)

const (
	snapshotFileMode = 0o644
	jsonContentType  = "application/json"
)

// FilePublisher replaces the content of a file with each snapshot. Readers never see a
// partially written file
type FilePublisher struct {
	path string
}

func NewFilePublisher(path string) *FilePublisher {
	return &FilePublisher{path: path}
}

func (p *FilePublisher) Publish(ctx context.Context, data []byte) error {
	if _, err := atomicfile.WriteAll(p.path, bytes.NewReader(data), snapshotFileMode); err != nil {
		return fmt.Errorf("error writing snapshot to %s: %w", p.path, err)
	}
	return nil
}

// BrokerProducer is the message broker used by BrokerPublisher
type BrokerProducer interface {
	Publish(ctx context.Context, routingKey, contentType string, body []byte) error
}

// BrokerPublisher sends each snapshot to the message broker
type BrokerPublisher struct {
	producer   BrokerProducer
	routingKey string
}

func NewBrokerPublisher(producer BrokerProducer, routingKey string) *BrokerPublisher {
	return &BrokerPublisher{producer: producer, routingKey: routingKey}
}

func (p *BrokerPublisher) Publish(ctx context.Context, data []byte) error {
	return p.producer.Publish(ctx, p.routingKey, jsonContentType, data)
}
