package handlers

import (
	"net/http"
)

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	status := http.StatusOK

	for name, checker := range h.HealthChecks {
		if resp.Checks == nil {
			resp.Checks = make(map[string]string, len(h.HealthChecks))
		}

		if err := checker.HealthCheck(r.Context()); err != nil {
			h.Log.WithError(err).WithField("check", name).Warn("health check failed")
			resp.Checks[name] = "unavailable"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	writeJSON(w, resp, status)
}
