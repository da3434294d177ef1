package usecase

import (
	"context"
	"net/url"
	"os"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/afero"

	"github.com/digione/xnatsync/pkg/domain/model"
	"github.com/digione/xnatsync/pkg/domain/types"
)

// Download examines experiments in order and stages the files of complete ones.
//
// Every experiment yields one result. A staging folder is left empty for incomplete
// experiments and is removed when a download fails. The returned error is only set when the
// scan listing used for the completeness check can not be retrieved or ctx is done.
func (s *Sync) Download(ctx context.Context, projects []model.ProjectExperiments) ([]model.ExperimentResult, error) {
	var results []model.ExperimentResult

	for _, p := range projects {
		for _, exp := range p.Experiments {
			if err := ctx.Err(); err != nil {
				return nil, goerr.Wrap(err, "pass interrupted", goerr.V("label", exp.Label))
			}

			result, err := s.downloadExperiment(ctx, exp)
			if err != nil {
				return nil, err
			}
			results = append(results, result)
		}
	}

	return results, nil
}

func (s *Sync) downloadExperiment(ctx context.Context, exp model.ExperimentRef) (model.ExperimentResult, error) {
	folder := s.StagingFolder(exp.Label)
	logger := ctxlog.From(ctx).With("label", exp.Label, "project", exp.Project)
	ctx = ctxlog.With(ctx, logger)

	result := model.ExperimentResult{
		Project: exp.Project,
		Label:   exp.Label,
		Folder:  folder,
	}

	if _, err := stagedPath(s.dataDir, exp.Label); err != nil {
		logger.Error("Label can not be used as a staging folder", "error", err)
		result.Outcome = model.OutcomeFailed
		result.Error = err.Error()
		return result, nil
	}

	if err := s.prepareFolder(ctx, folder); err != nil {
		logger.Error("Failed to prepare staging folder", "error", err, "folder", folder)
		result.Outcome = model.OutcomeFailed
		result.Error = err.Error()
		return result, nil
	}

	scans, err := s.client.List(ctx, exp.ScansURL)
	if err != nil {
		return result, goerr.Wrap(err, "failed to fetch scan listing", goerr.V("label", exp.Label))
	}

	if missing := MissingTypes(scans.Result, s.requiredTypes); len(missing) > 0 {
		logger.Info("Experiment misses required data types", "missing", missing)
		result.Outcome = model.OutcomeIncomplete
		result.MissingTypes = missing
		return result, nil
	}

	files, err := s.fetchScans(ctx, exp, scans.Result, folder)
	if err != nil {
		if rmErr := s.fs.RemoveAll(folder); rmErr != nil {
			logger.Error("Failed to remove staging folder", "error", rmErr, "folder", folder)
		}
		logger.Error("Data is unretrievable or missing", "error", err)
		result.Outcome = model.OutcomeFailed
		result.Error = err.Error()
		return result, nil
	}

	logger.Info("Downloaded experiment", "folder", folder, "file_count", len(files))
	result.Outcome = model.OutcomeDownloaded
	result.Files = files
	return result, nil
}

// prepareFolder creates folder or removes regular files left in it by an earlier pass
func (s *Sync) prepareFolder(ctx context.Context, folder string) error {
	exists, err := afero.DirExists(s.fs, folder)
	if err != nil {
		return goerr.Wrap(err, "failed to check staging folder", goerr.V("folder", folder))
	}

	if !exists {
		if err := s.fs.MkdirAll(folder, 0755); err != nil {
			return goerr.Wrap(err, "failed to create staging folder", goerr.V("folder", folder))
		}
		ctxlog.From(ctx).Info("Staging folder created", "folder", folder)
		return nil
	}

	entries, err := afero.ReadDir(s.fs, folder)
	if err != nil {
		return goerr.Wrap(err, "failed to read staging folder", goerr.V("folder", folder))
	}
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		path := filepath.Join(folder, entry.Name())
		if err := s.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			return goerr.Wrap(err, "failed to remove stale file", goerr.V("path", path))
		}
	}

	return nil
}

// fetchScans downloads the files of the first resource of every scan into folder
func (s *Sync) fetchScans(ctx context.Context, exp model.ExperimentRef, scans []model.Record, folder string) ([]string, error) {
	var names []string
	seen := map[string]struct{}{}

	for _, scan := range scans {
		scanID := scan.String("ID")
		xsiType := scan.String("xsiType")

		resourcesURL := exp.ScansURL + "/" + url.PathEscape(scanID) + "/resources"
		resources, err := s.client.List(ctx, resourcesURL)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to fetch resource listing",
				goerr.V("scan", scanID),
				goerr.V("xsi_type", xsiType),
			)
		}
		if len(resources.Result) == 0 {
			return nil, goerr.New("scan has no resource",
				goerr.V("scan", scanID),
				goerr.V("xsi_type", xsiType),
			)
		}

		resourceLabel := resources.Result[0].String("label")
		filesURL := resourcesURL + "/" + url.PathEscape(resourceLabel) + "/files"

		written, err := s.fetchFiles(ctx, filesURL, folder)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to download scan files",
				goerr.V("scan", scanID),
				goerr.V("xsi_type", xsiType),
			)
		}

		for _, name := range written {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	return names, nil
}

func (s *Sync) fetchFiles(ctx context.Context, filesURL, folder string) ([]string, error) {
	files, err := s.client.List(ctx, filesURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch file listing", goerr.V("url", filesURL))
	}

	names := make([]string, 0, len(files.Result))
	for _, f := range files.Result {
		name := f.String("Name", "name")
		uri := f.String("URI")

		path, err := stagedPath(folder, name)
		if err != nil {
			return nil, err
		}
		if uri == "" {
			return nil, goerr.New("file entry has no URI", goerr.V("name", name), goerr.T(types.ErrTagInvalidFile))
		}

		if err := s.writeFile(ctx, uri, path); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	ctxlog.From(ctx).Debug("All files downloaded", "url", filesURL, "file_count", len(names))
	return names, nil
}

func (s *Sync) writeFile(ctx context.Context, uri, path string) error {
	f, err := s.fs.Create(path)
	if err != nil {
		return goerr.Wrap(err, "failed to create file", goerr.V("path", path))
	}

	if err := s.client.Download(ctx, uri, f); err != nil {
		_ = f.Close()
		return goerr.Wrap(err, "failed to download file", goerr.V("uri", uri), goerr.V("path", path))
	}

	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close file", goerr.V("path", path))
	}
	return nil
}

// stagedPath joins name to folder, rejecting names that would land outside of it
func stagedPath(folder, name string) (string, error) {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) {
		return "", goerr.New("invalid file name",
			goerr.V("name", name),
			goerr.V("folder", folder),
			goerr.T(types.ErrTagInvalidFile),
		)
	}
	return filepath.Join(folder, name), nil
}
