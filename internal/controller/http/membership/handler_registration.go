package membership

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/utdi/ukmik/be/internal/core/credentials"
	"github.com/utdi/ukmik/be/pkg/common/logger"
	mb "github.com/utdi/ukmik/be/pkg/repositories/membership"
)

// maxRegistrationForm bounds the whole multipart registration payload,
// photo included.
const maxRegistrationForm = 6 << 20

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	logger.Debug("register: start")
	if err := r.ParseMultipartForm(maxRegistrationForm); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "invalid multipart form", nil)
		return
	}

	form := r.MultipartForm.Value
	field := func(name string) string {
		if v, ok := form[name]; ok && len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	nim := field("nim")
	name := field("nama")
	email := field("email")
	if nim == "" || name == "" || email == "" {
		writeEnvelope(w, http.StatusBadRequest, "nim, nama and email are required", nil)
		return
	}
	username := field("username")

	conflict, err := h.repo.FindPersonConflict(r.Context(), username, email, nim, "")
	if err != nil {
		logger.Error("register: conflict check: %v", err)
		writeEnvelope(w, http.StatusInternalServerError, "An error occurred while Registration", nil)
		return
	}
	if conflict != nil {
		writeEnvelope(w, http.StatusConflict, "Username, email or NIM is already in use", nil)
		return
	}

	var imageURL string
	if files := r.MultipartForm.File["users_image"]; len(files) > 0 {
		imageURL, err = h.saveUserImage(files[0])
		if err != nil {
			logger.Debug("register: image rejected: %v", err)
			writeEnvelope(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
	}

	var passwordHash string
	if pw := field("password"); pw != "" {
		passwordHash, err = credentials.Hash(pw)
		if err != nil {
			logger.Error("register: hash password: %v", err)
			writeEnvelope(w, http.StatusInternalServerError, "An error occurred while Registration", nil)
			return
		}
	}

	person := &mb.Person{
		ID:           uuid.NewString(),
		NIM:          nim,
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Phone:        field("no_telp"),
		Gender:       field("jenis_kelamin"),
		Religion:     field("agama"),
		Faculty:      field("fakultas"),
		StudyProgram: field("program_studi"),
		ImageURL:     imageURL,
		Role:         mb.RoleCandidate,
		Status:       mb.StatusActive,
	}
	if err := h.repo.CreatePerson(r.Context(), person); err != nil {
		if errors.Is(err, mb.ErrConflict) {
			writeEnvelope(w, http.StatusConflict, "Username, email or NIM is already in use", nil)
			return
		}
		logger.Error("register: create person: %v", err)
		writeEnvelope(w, http.StatusInternalServerError, "An error occurred while Registration", nil)
		return
	}
	logger.Info("register: created person id=%s nim=%s", person.ID, person.NIM)

	writeEnvelope(w, http.StatusCreated, "Registration Successfully", map[string]string{
		"id":   person.ID,
		"nama": person.Name,
		"nim":  person.NIM,
	})
}

func (h *Handler) listRegistrations(w http.ResponseWriter, r *http.Request) {
	people, err := h.repo.ListApplicants(r.Context())
	if err != nil {
		logger.Error("list registrations: %v", err)
		writeEnvelope(w, http.StatusInternalServerError, "Server Error, cannot get data", nil)
		return
	}
	type row struct {
		ID           string `json:"id"`
		NIM          string `json:"nim"`
		Name         string `json:"nama"`
		Gender       string `json:"jenis_kelamin,omitempty"`
		StudyProgram string `json:"program_studi,omitempty"`
	}
	out := make([]row, 0, len(people))
	for _, p := range people {
		out = append(out, row{ID: p.ID, NIM: p.NIM, Name: p.Name, Gender: p.Gender, StudyProgram: p.StudyProgram})
	}
	writeEnvelope(w, http.StatusOK, "Successfully", out)
}

func (h *Handler) getRegistration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	person, err := h.repo.GetPersonByID(r.Context(), id)
	if err != nil {
		logger.Error("get registration %s: %v", id, err)
		writeEnvelope(w, http.StatusInternalServerError, "Server Error, cannot get data", nil)
		return
	}
	if person == nil {
		writeEnvelope(w, http.StatusNotFound, "User not found", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, "Successfully", person)
}

func (h *Handler) updateRegistration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Name         *string `json:"nama"`
		Phone        *string `json:"no_telp"`
		Gender       *string `json:"jenis_kelamin"`
		Religion     *string `json:"agama"`
		Faculty      *string `json:"fakultas"`
		StudyProgram *string `json:"program_studi"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	upd := mb.ProfileUpdate{
		Name:         req.Name,
		Phone:        req.Phone,
		Gender:       req.Gender,
		Religion:     req.Religion,
		Faculty:      req.Faculty,
		StudyProgram: req.StudyProgram,
	}
	if err := h.repo.UpdatePersonProfile(r.Context(), id, upd); err != nil {
		if errors.Is(err, mb.ErrNotFound) {
			writeEnvelope(w, http.StatusNotFound, "User not found", nil)
			return
		}
		logger.Error("update registration %s: %v", id, err)
		writeEnvelope(w, http.StatusInternalServerError, "Server Error, cannot update data", nil)
		return
	}
	person, err := h.repo.GetPersonByID(r.Context(), id)
	if err != nil {
		logger.Error("update registration %s: reload: %v", id, err)
		writeEnvelope(w, http.StatusInternalServerError, "Server Error, cannot update data", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, "User updated successfully", person)
}

func (h *Handler) deleteRegistration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.DeletePerson(r.Context(), id); err != nil {
		if errors.Is(err, mb.ErrNotFound) {
			writeEnvelope(w, http.StatusNotFound, "User not found", nil)
			return
		}
		logger.Error("delete registration %s: %v", id, err)
		writeEnvelope(w, http.StatusInternalServerError, "Server Error, cannot delete data", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, "User deleted successfully", nil)
}
