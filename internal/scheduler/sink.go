package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"b3flip/internal/types"
	"b3flip/pkg/mq"
)

type mqSink struct {
	publisher *mq.Publisher
}

// NewMQSink publishes every mutation as JSON on the mutation queue.
func NewMQSink(publisher *mq.Publisher) Sink {
	return &mqSink{publisher}
}

func (s *mqSink) Send(ctx context.Context, msg *types.MutationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal mutation: %w", err)
	}
	return s.publisher.PublishJSON(ctx, body)
}

type writerSink struct {
	encoder *json.Encoder
}

// NewWriterSink writes every mutation as one JSON line.
func NewWriterSink(w io.Writer) Sink {
	return &writerSink{json.NewEncoder(w)}
}

func (s *writerSink) Send(ctx context.Context, msg *types.MutationMessage) error {
	return s.encoder.Encode(msg)
}
