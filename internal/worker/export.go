package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"post-composer/internal/domain"
	repoImage "post-composer/internal/repository/image"
	"post-composer/internal/usecase/processor"

	"github.com/wb-go/wbf/zlog"
)

// Exporter runs one export task: it renders every edited photo of the task,
// records per-item outcomes as they happen and publishes the final result.
type Exporter struct {
	photos    photoStore
	states    stateSource
	processor batchExporter
	files     exportCleaner
	results   resultPublisher
	logger    *zlog.Zerolog
	now       func() time.Time
}

func NewExporter(photos photoStore, states stateSource, proc batchExporter, files exportCleaner, results resultPublisher, logger *zlog.Zerolog) *Exporter {
	return &Exporter{
		photos:    photos,
		states:    states,
		processor: proc,
		files:     files,
		results:   results,
		logger:    logger,
		now:       time.Now,
	}
}

// Run exports task. A task whose result already settled is skipped, so a
// redelivered message does no work twice. When ctx is cancelled mid-batch the
// partial result is saved and ctx's error returned.
func (e *Exporter) Run(ctx context.Context, task *domain.ExportTask) (*domain.ExportResult, error) {
	result, err := e.load(ctx, task)
	if err != nil {
		return nil, err
	}
	if result.Status == domain.ExportCompleted || result.Status == domain.ExportError {
		e.logger.Info().Str("export_id", task.ID).Str("status", string(result.Status)).Msg("Export already settled, skipping")
		return result, nil
	}

	prefix := fmt.Sprintf("%s%s/", domain.PathPrefixExports, task.ID)
	if err := e.files.DeleteObjectsWithPrefix(ctx, prefix); err != nil {
		e.logger.Warn().Err(err).Str("prefix", prefix).Msg("Failed to clear previous export files")
	}

	index := make(map[string]int, len(result.Items))
	for i, it := range result.Items {
		index[it.ImageID] = i
	}

	items := e.collect(ctx, result, index)
	result.Status = domain.ExportProcessing
	e.save(ctx, result)

	progress := func(it domain.ExportItem) {
		if i, ok := index[it.ImageID]; ok {
			result.Items[i] = it
		}
		e.save(ctx, result)
	}

	done, runErr := e.processor.ExportBatch(ctx, task.ID, items, task.Options(), progress)
	for _, it := range done {
		if i, ok := index[it.ImageID]; ok {
			result.Items[i] = it
		}
	}
	result.Settle()
	result.UpdatedAt = e.now()

	if runErr != nil {
		e.save(context.WithoutCancel(ctx), result)
		return result, fmt.Errorf("export %s interrupted: %w", task.ID, runErr)
	}

	if err := e.photos.SaveExportResult(ctx, result); err != nil {
		return result, fmt.Errorf("failed to save export result: %w", err)
	}
	if err := e.results.SendResult(ctx, result); err != nil {
		e.logger.Error().Err(err).Str("export_id", task.ID).Msg("Failed to publish export result")
	}

	e.logger.Info().
		Str("export_id", task.ID).
		Str("status", string(result.Status)).
		Int("succeeded", result.Succeeded()).
		Int("total", len(result.Items)).
		Msg("Export finished")

	return result, nil
}

// load returns the stored result of task, or a fresh pending one when the
// API side never recorded it.
func (e *Exporter) load(ctx context.Context, task *domain.ExportTask) (*domain.ExportResult, error) {
	result, err := e.photos.GetExportResult(ctx, task.ID)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, repoImage.ErrExportNotFound) {
		return nil, fmt.Errorf("failed to load export result: %w", err)
	}

	result = &domain.ExportResult{
		ID:        task.ID,
		ProjectID: task.ProjectID,
		Status:    domain.ExportPending,
		UpdatedAt: e.now(),
	}
	for _, id := range task.ImageIDs {
		result.Items = append(result.Items, domain.ExportItem{ImageID: id, Status: domain.ExportPending})
	}
	return result, nil
}

// collect resets every item to pending and resolves it to a photo and its
// edit state. Items whose photo vanished or lost its edits fail right away.
func (e *Exporter) collect(ctx context.Context, result *domain.ExportResult, index map[string]int) []processor.BatchItem {
	var items []processor.BatchItem
	for _, it := range result.Items {
		i := index[it.ImageID]
		result.Items[i] = domain.ExportItem{ImageID: it.ImageID, ImageName: it.ImageName, Status: domain.ExportPending}

		photo, err := e.photos.GetByID(ctx, it.ImageID)
		if err != nil {
			result.Items[i].Status = domain.ExportError
			result.Items[i].Error = "image not found"
			e.logger.Warn().Err(err).Str("image_id", it.ImageID).Msg("Export item skipped")
			continue
		}

		if st, ok := e.states.Lookup(ctx, photo.ID); ok {
			photo.EditState = &st
		}
		if !photo.Edited() {
			result.Items[i].Status = domain.ExportError
			result.Items[i].Error = "image has no edits"
			continue
		}

		items = append(items, processor.BatchItem{Photo: photo, State: *photo.EditState})
	}
	return items
}

func (e *Exporter) save(ctx context.Context, result *domain.ExportResult) {
	result.UpdatedAt = e.now()
	if err := e.photos.SaveExportResult(ctx, result); err != nil {
		e.logger.Warn().Err(err).Str("export_id", result.ID).Msg("Failed to save export progress")
	}
}
