package controllers

import (
	"beelandr/internal/services"
	"beelandr/internal/storage"
	"net/http"
	"time"
)

type HealthController struct {
	store     storage.StoreInterface
	session   services.SessionServiceInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string   `json:"status"`
	Uptime        string   `json:"uptime"`
	UptimeSeconds float64  `json:"uptime_seconds"`
	Role          string   `json:"role,omitempty"`
	StoreKeys     []string `json:"store_keys"`
	StoreBytes    int      `json:"store_bytes"`
}

func NewHealthController(store storage.StoreInterface, session services.SessionServiceInterface) *HealthController {
	return &HealthController{
		store:     store,
		session:   session,
		startTime: time.Now(),
	}
}

// Health reports liveness together with the chosen role and what the local
// store holds.
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method Not Allowed"})
		return
	}

	uptime := time.Since(hc.startTime)
	role, _ := hc.session.Role()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: uptime.Seconds(),
		Role:          string(role),
		StoreKeys:     hc.store.Keys(),
		StoreBytes:    hc.store.Size(),
	})
}
