package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	controller "github.com/digione/xnatsync/pkg/controller/http"
	"github.com/digione/xnatsync/pkg/domain/model"
	"github.com/digione/xnatsync/pkg/domain/types"
)

type mockListener struct {
	triggerFunc func(ctx context.Context) (<-chan struct{}, error)
	last        *model.PassReport
	triggered   int
}

func (m *mockListener) RunOnce(ctx context.Context) (*model.PassReport, error) {
	return m.last, nil
}

func (m *mockListener) Trigger(ctx context.Context) (<-chan struct{}, error) {
	m.triggered++
	if m.triggerFunc != nil {
		return m.triggerFunc(ctx)
	}
	done := make(chan struct{})
	close(done)
	return done, nil
}

func (m *mockListener) LastReport() *model.PassReport {
	return m.last
}

func serve(t *testing.T, listener *mockListener, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	server, err := controller.NewServer(context.Background(), listener)
	gt.NoError(t, err).Required()

	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestPasses_Last(t *testing.T) {
	t.Run("no pass yet", func(t *testing.T) {
		w := serve(t, &mockListener{}, http.MethodGet, "/passes/last")
		gt.Equal(t, w.Code, http.StatusNotFound)
	})

	t.Run("last report", func(t *testing.T) {
		listener := &mockListener{
			last: &model.PassReport{
				Pass: &model.PassResult{
					ID: "pass-1",
					Results: []model.ExperimentResult{
						{Project: "StudyX", Label: "Exp001", Outcome: model.OutcomeDownloaded},
					},
				},
				Recorded: []string{"Exp001"},
				Notified: []string{"Exp001"},
			},
		}

		w := serve(t, listener, http.MethodGet, "/passes/last")
		gt.Equal(t, w.Code, http.StatusOK)
		gt.Equal(t, w.Header().Get("Content-Type"), "application/json")

		var report model.PassReport
		gt.NoError(t, json.NewDecoder(w.Body).Decode(&report)).Required()
		gt.Equal(t, report.Pass.ID, "pass-1")
		gt.Equal(t, report.Recorded, []string{"Exp001"})
		gt.Equal(t, report.Pass.Results[0].Outcome, model.OutcomeDownloaded)
	})
}

func TestPasses_Trigger(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "accepted",
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "pass in progress",
			err:        goerr.New("another pass is in progress", goerr.T(types.ErrTagPassInProgress)),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "other error",
			err:        goerr.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listener := &mockListener{}
			if tt.err != nil {
				listener.triggerFunc = func(ctx context.Context) (<-chan struct{}, error) {
					return nil, tt.err
				}
			}

			w := serve(t, listener, http.MethodPost, "/passes")
			gt.Equal(t, w.Code, tt.wantStatus)
			gt.Equal(t, listener.triggered, 1)
		})
	}
}

func TestPasses_MethodNotAllowed(t *testing.T) {
	w := serve(t, &mockListener{}, http.MethodGet, "/passes")
	gt.Equal(t, w.Code, http.StatusMethodNotAllowed)
}
