package usecase

import "github.com/digione/xnatsync/pkg/domain/model"

// ExcludeProcessed returns a copy of experiments without labels present in ledger.
// Projects left with no experiment are kept.
func ExcludeProcessed(experiments []model.ProjectExperiments, ledger model.LabelSet) []model.ProjectExperiments {
	out := make([]model.ProjectExperiments, 0, len(experiments))
	for _, p := range experiments {
		kept := make([]model.ExperimentRef, 0, len(p.Experiments))
		for _, exp := range p.Experiments {
			if ledger.Has(exp.Label) {
				continue
			}
			kept = append(kept, exp)
		}
		out = append(out, model.ProjectExperiments{Project: p.Project, Experiments: kept})
	}
	return out
}
