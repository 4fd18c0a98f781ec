package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"post-composer/internal/broker"
	"post-composer/internal/domain"

	"github.com/wb-go/wbf/retry"
)

// ExportPublisher encodes export tasks and results onto a producer.
type ExportPublisher struct {
	producer broker.Producer
	retries  retry.Strategy
}

func NewExportPublisher(producer broker.Producer, retries retry.Strategy) *ExportPublisher {
	return &ExportPublisher{producer: producer, retries: retries}
}

func (p *ExportPublisher) SendExport(ctx context.Context, task *domain.ExportTask) error {
	value, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal export task: %w", err)
	}
	return p.producer.Send(ctx, p.retries, []byte(task.ID), value)
}

func (p *ExportPublisher) SendResult(ctx context.Context, result *domain.ExportResult) error {
	value, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal export result: %w", err)
	}
	return p.producer.Send(ctx, p.retries, []byte(result.ID), value)
}

// DecodeExportTask parses a consumed export task.
func DecodeExportTask(msg *broker.Message) (*domain.ExportTask, error) {
	var task domain.ExportTask
	if err := json.Unmarshal(msg.Value, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal export task: %w", err)
	}
	if task.ID == "" {
		return nil, fmt.Errorf("export task without id at offset %d", msg.Offset)
	}
	return &task, nil
}
