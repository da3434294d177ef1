package usecase

import (
	"context"
	"net/url"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/digione/xnatsync/pkg/domain/model"
	"github.com/digione/xnatsync/pkg/utils/async"
)

const projectsPath = "/data/projects"

// ListProjects returns projects that have at least one subject, in listing order
func (s *Sync) ListProjects(ctx context.Context) ([]model.Project, error) {
	logger := ctxlog.From(ctx)
	projectsURL := s.client.BaseURL() + projectsPath

	rs, err := s.client.List(ctx, projectsURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch project listing")
	}

	candidates := make([]model.Project, 0, len(rs.Result))
	for _, rec := range rs.Result {
		id := rec.String("ID")
		if id == "" {
			logger.Warn("Ignoring project without ID", "record", rec)
			continue
		}
		candidates = append(candidates, model.Project{
			ID:          id,
			Name:        rec.String("name", "Name", "ID"),
			SubjectsURL: projectsURL + "/" + url.PathEscape(id) + "/subjects",
		})
	}

	counts, err := async.Map(ctx, s.concurrency, candidates, func(ctx context.Context, p model.Project) (int, error) {
		subjects, err := s.client.List(ctx, p.SubjectsURL)
		if err != nil {
			return 0, goerr.Wrap(err, "failed to count subjects", goerr.V("project", p.Name))
		}
		return subjects.TotalRecords, nil
	})
	if err != nil {
		return nil, err
	}

	var projects []model.Project
	for i, p := range candidates {
		if counts[i] == 0 {
			logger.Debug("Skipping project without subjects", "project", p.Name)
			continue
		}
		projects = append(projects, p)
	}

	return projects, nil
}

// ListExperiments returns every experiment of project mapped to its scan listing URL.
// Subjects are flattened away; when a label repeats, the last URL wins and the first
// position is kept.
func (s *Sync) ListExperiments(ctx context.Context, project model.Project) ([]model.ExperimentRef, error) {
	logger := ctxlog.From(ctx)

	subjects, err := s.client.List(ctx, project.SubjectsURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch subject listing", goerr.V("project", project.Name))
	}

	perSubject, err := async.Map(ctx, s.concurrency, subjects.Result, func(ctx context.Context, subject model.Record) ([]model.ExperimentRef, error) {
		subjectID := subject.String("ID")
		if subjectID == "" {
			logger.Warn("Ignoring subject without ID", "project", project.Name, "record", subject)
			return nil, nil
		}

		experimentsURL := project.SubjectsURL + "/" + url.PathEscape(subjectID) + "/experiments"
		experiments, err := s.client.List(ctx, experimentsURL)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to fetch experiment listing",
				goerr.V("project", project.Name),
				goerr.V("subject", subjectID),
			)
		}

		refs := make([]model.ExperimentRef, 0, len(experiments.Result))
		for _, exp := range experiments.Result {
			label := exp.String("label")
			expID := exp.String("ID")
			if label == "" || expID == "" {
				logger.Warn("Ignoring experiment without label or ID", "project", project.Name, "record", exp)
				continue
			}
			refs = append(refs, model.ExperimentRef{
				Project:  project.Name,
				Label:    label,
				ScansURL: experimentsURL + "/" + url.PathEscape(expID) + "/scans",
			})
		}
		return refs, nil
	})
	if err != nil {
		return nil, err
	}

	var out []model.ExperimentRef
	index := map[string]int{}
	for _, refs := range perSubject {
		for _, ref := range refs {
			if i, ok := index[ref.Label]; ok {
				logger.Warn("Duplicated experiment label", "label", ref.Label, "project", project.Name)
				out[i] = ref
				continue
			}
			index[ref.Label] = len(out)
			out = append(out, ref)
		}
	}

	return out, nil
}

// ListAllExperiments applies ListExperiments to every project
func (s *Sync) ListAllExperiments(ctx context.Context, projects []model.Project) ([]model.ProjectExperiments, error) {
	return async.Map(ctx, s.concurrency, projects, func(ctx context.Context, p model.Project) (model.ProjectExperiments, error) {
		refs, err := s.ListExperiments(ctx, p)
		if err != nil {
			return model.ProjectExperiments{}, err
		}
		return model.ProjectExperiments{Project: p.Name, Experiments: refs}, nil
	})
}
