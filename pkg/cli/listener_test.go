package cli

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/spf13/afero"

	"github.com/digione/xnatsync/pkg/cli/config"
	"github.com/digione/xnatsync/pkg/domain/model"
	"github.com/digione/xnatsync/pkg/infra/xnat/xnattest"
)

func testProjects() []xnattest.Project {
	dicom := func(id, xsiType, name string) xnattest.Scan {
		return xnattest.Scan{
			ID:      id,
			XSIType: xsiType,
			Resources: []xnattest.Resource{{
				Label: "DICOM",
				Files: []xnattest.File{{Name: name, Content: []byte(name)}},
			}},
		}
	}

	return []xnattest.Project{{
		ID:   "STUDYX",
		Name: "StudyX",
		Subjects: []xnattest.Subject{{
			ID: "SUBJ01",
			Experiments: []xnattest.Experiment{
				{
					ID:    "E001",
					Label: "Exp001",
					Scans: []xnattest.Scan{
						dicom("1", model.XSITypeCTScan, "ct.dcm"),
						dicom("2", model.XSITypeRTImageScan, "rt.dcm"),
					},
				},
				{
					ID:    "E002",
					Label: "Exp002",
					Scans: []xnattest.Scan{dicom("1", model.XSITypeCTScan, "ct.dcm")},
				},
			},
		}},
	}}
}

func newTestConfig(t *testing.T, retryIncomplete bool) *listenerConfig {
	t.Helper()

	server := xnattest.NewServer(testProjects()...)
	t.Cleanup(server.Close)

	return &listenerConfig{
		xnat: config.XNAT{
			URL:      server.URL,
			User:     server.Username,
			Password: server.Password,
		},
		storage: config.Storage{
			DataDir:    "/data",
			LedgerFile: "/data/processed_ids.txt",
		},
		policy: config.Policy{RetryIncomplete: retryIncomplete},
		notify: config.Notify{Queue: "segmentation"},
	}
}

func TestListenerConfig_Build(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	cfg := newTestConfig(t, false)

	listener, closer, err := cfg.build(ctx, fs)
	gt.NoError(t, err).Required()
	defer closer()

	report, err := listener.RunOnce(ctx)
	gt.NoError(t, err).Required()
	gt.Equal(t, report.Recorded, []string{"Exp001", "Exp002"})
	gt.Equal(t, report.Notified, []string{"Exp001"})

	ledger, err := afero.ReadFile(fs, "/data/processed_ids.txt")
	gt.NoError(t, err).Required()
	gt.Equal(t, string(ledger), "Exp001\nExp002")

	content, err := afero.ReadFile(fs, "/data/Exp001/rt.dcm")
	gt.NoError(t, err).Required()
	gt.Equal(t, string(content), "rt.dcm")

	t.Run("next pass finds nothing new", func(t *testing.T) {
		report, err := listener.RunOnce(ctx)
		gt.NoError(t, err).Required()
		gt.A(t, report.Recorded).Length(0)
		gt.A(t, report.Pass.Results).Length(0)
		gt.Equal(t, listener.LastReport(), report)
	})
}

func TestListenerConfig_Build_RetryIncomplete(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	cfg := newTestConfig(t, true)

	listener, closer, err := cfg.build(ctx, fs)
	gt.NoError(t, err).Required()
	defer closer()

	report, err := listener.RunOnce(ctx)
	gt.NoError(t, err).Required()
	gt.Equal(t, report.Recorded, []string{"Exp001"})

	report, err = listener.RunOnce(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, report.Recorded).Length(0)
	gt.A(t, report.Pass.Results).Length(1)
	gt.Equal(t, report.Pass.Results[0].Label, "Exp002")
	gt.Equal(t, report.Pass.Results[0].Outcome, model.OutcomeIncomplete)
}

func TestListenerConfig_Build_InvalidURL(t *testing.T) {
	cfg := &listenerConfig{xnat: config.XNAT{URL: "not a url"}}

	_, _, err := cfg.build(context.Background(), afero.NewMemMapFs())
	gt.Error(t, err)
}
