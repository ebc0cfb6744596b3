// Package membership exposes the admission HTTP API: applicant
// registration, candidacy submission and the approval decision endpoint.
package membership

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/utdi/ukmik/be/internal/services/approval"
	mb "github.com/utdi/ukmik/be/pkg/repositories/membership"
)

type Handler struct {
	repo      mb.Repository
	approvals *approval.Service
	uploadDir string
	baseURL   string
}

// NewHandler constructs a Handler over the membership repository and the
// approval workflow service. Upload destination and public base URL come
// from UPLOAD_DIR and BASE_URL.
func NewHandler(repo mb.Repository, approvals *approval.Service) *Handler {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "./uploads"
	}
	base := os.Getenv("BASE_URL")
	if base == "" {
		base = "http://localhost:8080/"
	}
	return &Handler{repo: repo, approvals: approvals, uploadDir: dir, baseURL: base}
}

// Router returns a chi-based router for the /api endpoints.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/health", h.health)

	// Candidate-applicant registration
	r.Post("/api/registration", h.register)
	r.Get("/api/registration", h.listRegistrations)
	r.Get("/api/registration/{id}", h.getRegistration)
	r.Put("/api/registration/{id}", h.updateRegistration)
	r.Delete("/api/registration/{id}", h.deleteRegistration)

	// Candidacy scores and the approval decision
	r.Post("/api/candidates/{personId}", h.submitCandidacy)
	r.Get("/api/candidates", h.listCandidacies)
	r.Get("/api/candidates/{personId}", h.getCandidacy)
	r.Post("/api/candidates/{personId}/decision", h.decideCandidacy)
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Health(); err != nil {
		writeEnvelope(w, http.StatusServiceUnavailable, "unhealthy", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, "ok", nil)
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeEnvelope renders the response envelope every endpoint uses:
// status_code, message and optional data.
func writeEnvelope(w http.ResponseWriter, code int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	body := map[string]any{
		"status_code": code,
		"message":     message,
	}
	if data != nil {
		body["data"] = data
	}
	_ = json.NewEncoder(w).Encode(body)
}
