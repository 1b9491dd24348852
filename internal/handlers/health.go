package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	applog "crunchpunch/internal/log"
)

const (
	databaseOK          = "ok"
	databaseUnavailable = "unavailable"
	databaseUnset       = "unconfigured"
)

type healthResponse struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
}

// Health is a simple readiness handler suitable for infrastructure probes. It
// always answers 200; the database field reports whether storage is reachable.
func Health(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "health check requested", "method", r.Method)
	resp := healthResponse{
		Status:   "ok",
		Database: databaseStatus(r),
		Time:     time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		applog.Error(r.Context(), "failed to encode health response", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	applog.Debug(r.Context(), "health check responded successfully", "database", resp.Database)
}

func databaseStatus(r *http.Request) string {
	if database == nil {
		return databaseUnset
	}
	sqlDB, err := database.DB()
	if err != nil {
		return databaseUnavailable
	}
	if err := sqlDB.PingContext(r.Context()); err != nil {
		applog.Error(r.Context(), "database ping failed", "error", err)
		return databaseUnavailable
	}
	return databaseOK
}
