package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"post-composer/internal/broker"
	"post-composer/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/wb-go/wbf/retry"
)

type recordingProducer struct {
	keys   []string
	values [][]byte
}

func (r *recordingProducer) Send(_ context.Context, _ retry.Strategy, key, value []byte) error {
	r.keys = append(r.keys, string(key))
	r.values = append(r.values, value)
	return nil
}

func (r *recordingProducer) Close() error { return nil }

func TestExportTaskRoundTrip(t *testing.T) {
	rec := &recordingProducer{}
	pub := NewExportPublisher(rec, retry.Strategy{Attempts: 1})

	task := &domain.ExportTask{
		ID:        "task-1",
		ProjectID: domain.DefaultProjectID,
		ImageIDs:  []string{"a", "b"},
		Format:    domain.ExportPNG,
		Quality:   80,
		CreatedAt: time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
	}
	if err := pub.SendExport(context.Background(), task); err != nil {
		t.Fatalf("SendExport: %v", err)
	}
	if diff := cmp.Diff([]string{"task-1"}, rec.keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	got, err := DecodeExportTask(&broker.Message{Value: rec.values[0]})
	if err != nil {
		t.Fatalf("DecodeExportTask: %v", err)
	}
	if diff := cmp.Diff(task, got); diff != "" {
		t.Errorf("task mismatch (-want +got):\n%s", diff)
	}
}

func TestSendResultKeysByBatch(t *testing.T) {
	rec := &recordingProducer{}
	pub := NewExportPublisher(rec, retry.Strategy{Attempts: 1})

	result := &domain.ExportResult{ID: "task-9", Status: domain.ExportCompleted, Items: []domain.ExportItem{{ImageID: "a", Status: domain.ExportCompleted}}}
	if err := pub.SendResult(context.Background(), result); err != nil {
		t.Fatalf("SendResult: %v", err)
	}

	var decoded domain.ExportResult
	if err := json.Unmarshal(rec.values[0], &decoded); err != nil {
		t.Fatal(err)
	}
	if rec.keys[0] != "task-9" || decoded.Succeeded() != 1 {
		t.Errorf("key %q, decoded %+v", rec.keys[0], decoded)
	}
}

func TestDecodeExportTaskRejects(t *testing.T) {
	for _, raw := range []string{"{", `{"format":"jpg"}`} {
		if _, err := DecodeExportTask(&broker.Message{Value: []byte(raw)}); err == nil {
			t.Errorf("DecodeExportTask(%q) succeeded", raw)
		}
	}
}
