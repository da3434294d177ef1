package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/digione/xnatsync/pkg/domain/model"
)

// IsComplete reports whether the scan listing at scansURL contains every required data type
func (s *Sync) IsComplete(ctx context.Context, scansURL string) (bool, error) {
	scans, err := s.client.List(ctx, scansURL)
	if err != nil {
		return false, goerr.Wrap(err, "failed to fetch scan listing", goerr.V("url", scansURL))
	}
	return len(MissingTypes(scans.Result, s.requiredTypes)) == 0, nil
}

// MissingTypes returns required types not present as xsiType of any scan, in required order
func MissingTypes(scans []model.Record, required []string) []string {
	present := make(map[string]struct{}, len(scans))
	for _, scan := range scans {
		present[scan.String("xsiType")] = struct{}{}
	}

	var missing []string
	for _, t := range required {
		if _, ok := present[t]; !ok {
			missing = append(missing, t)
		}
	}
	return missing
}
