package membership

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utdi/ukmik/be/internal/services/approval"
	"github.com/utdi/ukmik/be/pkg/common/logger"
	mb "github.com/utdi/ukmik/be/pkg/repositories/membership"
)

// submitCandidacy records or resubmits a person's four sub-scores. The
// average is always recomputed here; the stored decision is untouched.
func (h *Handler) submitCandidacy(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personId")
	var req struct {
		LK1        float64 `json:"lk1"`
		LK2        float64 `json:"lk2"`
		SC         float64 `json:"sc"`
		Activeness float64 `json:"keaktifan"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}

	person, err := h.repo.GetPersonByID(r.Context(), personID)
	if err != nil {
		logger.Error("submit candidacy %s: %v", personID, err)
		writeEnvelope(w, http.StatusInternalServerError, "Server Error, cannot save data", nil)
		return
	}
	if person == nil {
		writeEnvelope(w, http.StatusNotFound, "User not found", nil)
		return
	}

	cand := &mb.Candidacy{
		PersonID:   personID,
		LK1:        req.LK1,
		LK2:        req.LK2,
		SC:         req.SC,
		Activeness: req.Activeness,
		Average:    (req.LK1 + req.LK2 + req.SC + req.Activeness) / 4,
	}
	if err := h.repo.UpsertCandidacy(r.Context(), cand); err != nil {
		logger.Error("submit candidacy %s: %v", personID, err)
		writeEnvelope(w, http.StatusInternalServerError, "Server Error, cannot save data", nil)
		return
	}
	logger.Debug("submit candidacy: person=%s rerata=%.2f", personID, cand.Average)
	writeEnvelope(w, http.StatusOK, "Successfully", cand)
}

func (h *Handler) listCandidacies(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListCandidacies(r.Context())
	if err != nil {
		logger.Error("list candidacies: %v", err)
		writeEnvelope(w, http.StatusInternalServerError, "Error fetching candidate list", nil)
		return
	}
	if items == nil {
		items = []*mb.Candidacy{}
	}
	writeEnvelope(w, http.StatusOK, "Successfully", items)
}

func (h *Handler) getCandidacy(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personId")
	c, err := h.repo.GetCandidacyByPersonID(r.Context(), personID)
	if err != nil {
		logger.Error("get candidacy %s: %v", personID, err)
		writeEnvelope(w, http.StatusInternalServerError, "Server Error, cannot get data", nil)
		return
	}
	if c == nil {
		writeEnvelope(w, http.StatusNotFound, "Candidate not found", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, "Successfully", c)
}

// decideCandidacy runs the approval workflow. A committed decision with a
// failed notification still returns 200; the envelope message says the
// email did not go out.
func (h *Handler) decideCandidacy(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personId")
	var req struct {
		Approval    mb.Decision `json:"approval"`
		Description string      `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}

	out, err := h.approvals.Decide(r.Context(), personID, req.Approval, req.Description)
	switch {
	case err == nil:
	case errors.Is(err, approval.ErrInvalidDecision):
		writeEnvelope(w, http.StatusBadRequest, "approval must be Accepted or Rejected", nil)
		return
	case errors.Is(err, mb.ErrNotFound):
		writeEnvelope(w, http.StatusNotFound, "Candidate not found", nil)
		return
	case errors.Is(err, approval.ErrAlreadyDecided):
		writeEnvelope(w, http.StatusConflict, "Candidate has already been decided", nil)
		return
	default:
		logger.Error("decide candidacy %s: %v", personID, err)
		writeEnvelope(w, http.StatusInternalServerError, "Failed to process candidate approval", nil)
		return
	}

	message := "Decision applied successfully"
	if !out.NotificationSent {
		message = "Decision applied, but the notification email could not be sent"
	}
	writeEnvelope(w, http.StatusOK, message, out)
}
