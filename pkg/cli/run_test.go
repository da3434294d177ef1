package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"

	"github.com/digione/xnatsync/pkg/domain/model"
)

func TestPrintReport(t *testing.T) {
	color.NoColor = true

	started := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	report := &model.PassReport{
		Pass: &model.PassResult{
			ID:         "pass-1",
			StartedAt:  started,
			FinishedAt: started.Add(1500 * time.Millisecond),
			Results: []model.ExperimentResult{
				{Project: "StudyX", Label: "Exp001", Folder: "data/Exp001", Outcome: model.OutcomeDownloaded, Files: []string{"1.dcm", "2.dcm"}},
				{Project: "StudyX", Label: "Exp002", Folder: "data/Exp002", Outcome: model.OutcomeIncomplete, MissingTypes: []string{model.XSITypeRTImageScan}},
				{Project: "StudyY", Label: "Exp003", Folder: "data/Exp003", Outcome: model.OutcomeFailed, Error: "connection reset"},
			},
		},
		Recorded: []string{"Exp001", "Exp002", "Exp003"},
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	out := buf.String()

	gt.String(t, out).Contains("Pass pass-1 (1.5s)")
	gt.String(t, out).Contains("StudyX/Exp001 2 files -> data/Exp001")
	gt.String(t, out).Contains("StudyX/Exp002 missing xnat:rtImageScanData")
	gt.String(t, out).Contains("StudyY/Exp003 connection reset")
	gt.String(t, out).Contains("examined 3, downloaded 1, incomplete 1, failed 1, recorded 3")
}

func TestPrintReport_NoPass(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &model.PassReport{Error: "boom"})
	gt.Equal(t, buf.String(), "")
}
