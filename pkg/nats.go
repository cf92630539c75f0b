package pkg

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm/events"
	"github.com/nats-io/nats.go"
)

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	return p.conn.Publish(topic, msg)
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

type NATSSubscriber struct {
	conn *nats.Conn
}

func NewNATSSubscriber(url string) (*NATSSubscriber, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSSubscriber{conn: conn}, nil
}

func (s *NATSSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	_, err := s.conn.Subscribe(topic, func(msg *nats.Msg) {
		_ = handler(ctx, msg.Data)
	})
	return err
}

func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}

// NATSResponder serves request/reply subscriptions: every inbound message
// gets a reply payload from the handler. Used by the call channel, which
// answers each dispatch message with a response envelope.
type NATSResponder struct {
	conn *nats.Conn
}

func NewNATSResponder(url string) (*NATSResponder, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSResponder{conn: conn}, nil
}

func (r *NATSResponder) SubscribeReply(ctx context.Context, topic string, handler func(ctx context.Context, msg []byte) []byte) error {
	_, err := r.conn.Subscribe(topic, func(msg *nats.Msg) {
		reply := handler(ctx, msg.Data)
		if msg.Reply != "" {
			_ = msg.Respond(reply)
		}
	})
	return err
}

func (r *NATSResponder) Close() error {
	r.conn.Close()
	return nil
}
