package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	controller "github.com/digione/xnatsync/pkg/controller/http"
	"github.com/digione/xnatsync/pkg/domain/model"
)

func TestHealthEndpoint(t *testing.T) {
	server, err := controller.NewServer(
		context.Background(),
		&mockListener{},
		controller.WithAddr("localhost:0"),
	)
	gt.NoError(t, err).Required()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.Handler.ServeHTTP(w, req)

	gt.Equal(t, w.Code, http.StatusOK)

	var status model.HealthStatus
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&status)).Required()
	gt.Equal(t, status.Status, "healthy")
	gt.Equal(t, status.Service, "xnatsync")
	gt.V(t, status.Version).NotEqual("")
}
