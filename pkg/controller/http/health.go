package http

import (
	"net/http"

	"github.com/carrel-app/carrel/pkg/domain/model"
	"github.com/carrel-app/carrel/pkg/domain/types"
)

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &model.HealthStatus{
		Status:  "healthy",
		Service: types.ServiceName,
		Version: types.Version,
	})
}
