package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"jollybaba-backend/internal/models"
	"jollybaba-backend/internal/repositories"
	"jollybaba-backend/internal/services"
	"jollybaba-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type TechnicianHandler struct {
	Service *services.TechnicianService
}

func NewTechnicianHandler(s *services.TechnicianService) *TechnicianHandler {
	return &TechnicianHandler{Service: s}
}

// List is admin-only and includes full rows (minus password hashes).
func (h *TechnicianHandler) List(w http.ResponseWriter, r *http.Request) {
	technicians, err := h.Service.List(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list technicians")
		return
	}
	if technicians == nil {
		technicians = []models.Technician{}
	}
	utils.JSON(w, http.StatusOK, technicians)
}

// ListPublic returns the assignment dropdown view for any signed-in user.
func (h *TechnicianHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	technicians, err := h.Service.ListPublic(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list technicians")
		return
	}
	if technicians == nil {
		technicians = []models.PublicTechnician{}
	}
	utils.JSON(w, http.StatusOK, technicians)
}

func (h *TechnicianHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTechnicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailInUse):
			utils.Error(w, http.StatusConflict, "Email already in use")
		case errors.Is(err, services.ErrMissingFields):
			utils.Error(w, http.StatusBadRequest, "Name, email and password are required")
		default:
			utils.Error(w, http.StatusInternalServerError, "Failed to create technician")
		}
		return
	}
	utils.JSON(w, http.StatusCreated, created)
}

func (h *TechnicianHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid technician id")
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Technician not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Failed to delete technician")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
