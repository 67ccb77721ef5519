package api

import (
	"fmt"
	"net/http"
	"time"
)

type SystemHandler struct{}

func (h *SystemHandler) IndexHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{
			"message":   "Job Tracker API",
			"version":   version,
			"status":    "running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}, http.StatusOK)
	}
}

func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"status":"ok","service":"jobtracker"}`)
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":%q,"buildTime":%q}`, version, buildTime)
	}
}
