package handler

import "net/http"

// HealthHandler answers liveness probes.
//
// WHY A DEDICATED HANDLER?
// A struct feels heavyweight for a route this small, but it keeps the
// wiring uniform: every route in the server package points at a handler
// method, and adding readiness checks later (storage reachable?) means
// adding fields here instead of restructuring.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HandleHealth reports that the process is up. It deliberately does NOT
// touch storage — a liveness probe that fails on a slow disk would get
// the process restarted for no reason.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
