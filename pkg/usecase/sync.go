package usecase

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/afero"

	"github.com/digione/xnatsync/pkg/domain/interfaces"
	"github.com/digione/xnatsync/pkg/domain/model"
)

// DefaultDataDir is the root of staging folders
const DefaultDataDir = "data"

// Sync discovers new complete experiments on XNAT and stages their files locally
type Sync struct {
	client        interfaces.XNATClient
	fs            afero.Fs
	dataDir       string
	requiredTypes []string
	concurrency   int
}

var _ interfaces.SyncUseCase = (*Sync)(nil)

// SyncOption is a functional option for Sync
type SyncOption func(*Sync)

// WithFs sets the filesystem staging folders are written to
func WithFs(fs afero.Fs) SyncOption {
	return func(s *Sync) {
		s.fs = fs
	}
}

// WithDataDir sets the root directory of staging folders
func WithDataDir(dir string) SyncOption {
	return func(s *Sync) {
		s.dataDir = dir
	}
}

// WithRequiredTypes sets the scan data types an experiment must have to be downloaded
func WithRequiredTypes(types ...string) SyncOption {
	return func(s *Sync) {
		s.requiredTypes = append([]string(nil), types...)
	}
}

// WithCrawlConcurrency caps in-flight listing requests per hierarchy level
func WithCrawlConcurrency(n int) SyncOption {
	return func(s *Sync) {
		s.concurrency = n
	}
}

// NewSync creates a new Sync reading from client
func NewSync(client interfaces.XNATClient, opts ...SyncOption) *Sync {
	s := &Sync{
		client:        client,
		fs:            afero.NewOsFs(),
		dataDir:       DefaultDataDir,
		requiredTypes: model.DefaultRequiredTypes(),
		concurrency:   1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StagingFolder returns the folder files of label are downloaded to
func (s *Sync) StagingFolder(label string) string {
	return filepath.Join(s.dataDir, label)
}

// Run performs one pass: crawl, drop labels in skip, then check and download the rest.
// Retrieval errors while crawling or checking completeness abort the pass; download errors
// only fail the experiment concerned.
func (s *Sync) Run(ctx context.Context, skip model.LabelSet) (*model.PassResult, error) {
	pass := &model.PassResult{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}

	logger := ctxlog.From(ctx).With("pass_id", pass.ID)
	ctx = ctxlog.With(ctx, logger)

	projects, err := s.ListProjects(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list projects", goerr.V("pass_id", pass.ID))
	}

	experiments, err := s.ListAllExperiments(ctx, projects)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list experiments", goerr.V("pass_id", pass.ID))
	}

	remaining := ExcludeProcessed(experiments, skip)

	logger.Info("Crawled XNAT",
		"projects", len(projects),
		"experiments", model.CountExperiments(experiments),
		"new", model.CountExperiments(remaining),
	)

	results, err := s.Download(ctx, remaining)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to process experiments", goerr.V("pass_id", pass.ID))
	}

	pass.Results = results
	pass.FinishedAt = time.Now()

	logger.Info("Pass finished",
		"examined", len(results),
		"downloaded", pass.Count(model.OutcomeDownloaded),
		"incomplete", pass.Count(model.OutcomeIncomplete),
		"failed", pass.Count(model.OutcomeFailed),
		"duration_ms", pass.FinishedAt.Sub(pass.StartedAt).Milliseconds(),
	)

	return pass, nil
}
