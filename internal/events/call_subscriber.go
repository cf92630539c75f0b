package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aquamarinepk/aqm"

	"github.com/voicedesk/voicedesk/internal/gateway"
)

// CallsTopic is the inbound subject for the streaming call channel. Each
// message is a dispatch payload and receives one envelope reply.
const CallsTopic = "calls.function"

// Replier is a request/reply subscription: the handler's return value is
// sent back to the message originator.
type Replier interface {
	SubscribeReply(ctx context.Context, topic string, handler func(ctx context.Context, msg []byte) []byte) error
}

// CallSubscriber applies the same dispatch-by-name contract as the HTTP
// binding to messages arriving over NATS. Malformed messages are answered
// with an error envelope; the subscription itself never closes on bad input.
type CallSubscriber struct {
	replier Replier
	tools   *gateway.Tools
	logger  aqm.Logger
}

func NewCallSubscriber(replier Replier, tools *gateway.Tools, logger aqm.Logger) *CallSubscriber {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &CallSubscriber{
		replier: replier,
		tools:   tools,
		logger:  logger,
	}
}

func (s *CallSubscriber) Start(ctx context.Context) error {
	s.logger.Info("Starting CallSubscriber", "topic", CallsTopic)

	if err := s.replier.SubscribeReply(ctx, CallsTopic, s.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", CallsTopic, err)
	}

	s.logger.Info("CallSubscriber started successfully")
	return nil
}

func (s *CallSubscriber) handleMessage(ctx context.Context, msg []byte) []byte {
	var raw map[string]any
	if err := json.Unmarshal(msg, &raw); err != nil {
		s.logger.Debug("invalid call message", "error", err)
		return invalidMessage()
	}

	name, _ := raw["function"].(string)
	if name == "" {
		return invalidMessage()
	}
	delete(raw, "function")

	data, cerr := s.tools.Dispatch(ctx, name, gateway.NormalizeArgs(raw))
	return gateway.EncodeResult(data, cerr)
}

func invalidMessage() []byte {
	return gateway.EncodeResult(nil, &gateway.CallError{
		Code:    http.StatusBadRequest,
		Message: "invalid_message",
	})
}
