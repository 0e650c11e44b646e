package mock

import (
	"context"

	"github.com/fwojciec/sift"
)

var _ sift.CheckpointStore = (*CheckpointStore)(nil)

// CheckpointStore is a mock implementation of sift.CheckpointStore.
type CheckpointStore struct {
	SaveCheckpointFn   func(ctx context.Context, cp *sift.Checkpoint) error
	LoadCheckpointFn   func(ctx context.Context, key string) (*sift.Checkpoint, error)
	DeleteCheckpointFn func(ctx context.Context, key string) error
	KeysFn             func(ctx context.Context) ([]string, error)
}

func (s *CheckpointStore) SaveCheckpoint(ctx context.Context, cp *sift.Checkpoint) error {
	return s.SaveCheckpointFn(ctx, cp)
}

func (s *CheckpointStore) LoadCheckpoint(ctx context.Context, key string) (*sift.Checkpoint, error) {
	return s.LoadCheckpointFn(ctx, key)
}

func (s *CheckpointStore) DeleteCheckpoint(ctx context.Context, key string) error {
	return s.DeleteCheckpointFn(ctx, key)
}

func (s *CheckpointStore) Keys(ctx context.Context) ([]string, error) {
	return s.KeysFn(ctx)
}

var _ sift.ResultWriter = (*ResultWriter)(nil)

// ResultWriter is a mock implementation of sift.ResultWriter.
type ResultWriter struct {
	WriteRunFn func(ctx context.Context, stats *sift.CrawlStats, pages []*sift.PageRecord) (*sift.Dataset, error)
}

func (w *ResultWriter) WriteRun(ctx context.Context, stats *sift.CrawlStats, pages []*sift.PageRecord) (*sift.Dataset, error) {
	return w.WriteRunFn(ctx, stats, pages)
}

var _ sift.DatasetService = (*DatasetService)(nil)

// DatasetService is a mock implementation of sift.DatasetService.
type DatasetService struct {
	FindDatasetsFn func(ctx context.Context, filter sift.DatasetFilter) ([]*sift.Dataset, error)
	LoadPagesFn    func(ctx context.Context, datasets []*sift.Dataset) ([]*sift.PageRecord, error)
	LoadStatsFn    func(ctx context.Context, dataset *sift.Dataset) (*sift.CrawlStats, error)
}

func (s *DatasetService) FindDatasets(ctx context.Context, filter sift.DatasetFilter) ([]*sift.Dataset, error) {
	return s.FindDatasetsFn(ctx, filter)
}

func (s *DatasetService) LoadPages(ctx context.Context, datasets []*sift.Dataset) ([]*sift.PageRecord, error) {
	return s.LoadPagesFn(ctx, datasets)
}

func (s *DatasetService) LoadStats(ctx context.Context, dataset *sift.Dataset) (*sift.CrawlStats, error) {
	return s.LoadStatsFn(ctx, dataset)
}
