package http

import (
	"net/http"

	"github.com/digione/xnatsync/pkg/domain/model"
	"github.com/digione/xnatsync/pkg/domain/types"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, &model.HealthStatus{
		Status:  "healthy",
		Service: "xnatsync",
		Version: types.Version,
	})
}
