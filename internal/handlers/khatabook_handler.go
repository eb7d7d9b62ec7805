package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"jollybaba-backend/internal/config"
	"jollybaba-backend/internal/models"
	"jollybaba-backend/internal/repositories"
	"jollybaba-backend/internal/services"
	"jollybaba-backend/internal/timeutil"
	"jollybaba-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type KhatabookHandler struct {
	Service *services.KhatabookService
	Export  *services.ExportService
	Config  *config.Config
}

func NewKhatabookHandler(s *services.KhatabookService, export *services.ExportService, cfg *config.Config) *KhatabookHandler {
	return &KhatabookHandler{Service: s, Export: export, Config: cfg}
}

func (h *KhatabookHandler) fail(w http.ResponseWriter, status int, code string, err error) {
	details := ""
	if err != nil && !h.Config.IsProduction() {
		details = err.Error()
	}
	utils.ErrorWithDetails(w, status, code, details)
}

func (h *KhatabookHandler) entryID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		h.fail(w, http.StatusBadRequest, "INVALID_ID", err)
		return 0, false
	}
	return id, true
}

func (h *KhatabookHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.List(r.Context())
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "LIST_FAILED", err)
		return
	}
	if entries == nil {
		entries = []models.KhatabookEntry{}
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

func (h *KhatabookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateKhatabookEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}

	entry, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNameRequired):
			h.fail(w, http.StatusBadRequest, "NAME_REQUIRED", nil)
		case errors.Is(err, services.ErrAmountInvalid):
			h.fail(w, http.StatusBadRequest, "AMOUNT_INVALID", nil)
		case errors.Is(err, services.ErrPaidInvalid), errors.Is(err, services.ErrBadEntryDate):
			h.fail(w, http.StatusBadRequest, "PAID_INVALID", nil)
		default:
			h.fail(w, http.StatusInternalServerError, "CREATE_FAILED", err)
		}
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]interface{}{"entry": entry})
}

func (h *KhatabookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}

	var patch models.KhatabookPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.fail(w, http.StatusBadRequest, "UPDATE_FAILED", err)
		return
	}

	entry, err := h.Service.Update(r.Context(), id, &patch)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			h.fail(w, http.StatusNotFound, "NOT_FOUND", nil)
		case errors.Is(err, services.ErrNameRequired):
			h.fail(w, http.StatusBadRequest, "NAME_REQUIRED", nil)
		case errors.Is(err, services.ErrAmountInvalid):
			h.fail(w, http.StatusBadRequest, "AMOUNT_INVALID", nil)
		case errors.Is(err, services.ErrPaidInvalid), errors.Is(err, services.ErrBadEntryDate):
			h.fail(w, http.StatusBadRequest, "PAID_INVALID", nil)
		case errors.Is(err, services.ErrPaidTooHigh):
			h.fail(w, http.StatusBadRequest, "PAID_TOO_HIGH", nil)
		default:
			h.fail(w, http.StatusInternalServerError, "UPDATE_FAILED", err)
		}
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"entry": entry})
}

func (h *KhatabookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.fail(w, http.StatusNotFound, "NOT_FOUND", nil)
			return
		}
		h.fail(w, http.StatusInternalServerError, "DELETE_FAILED", err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *KhatabookHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := h.Export.ExportXLSX(r.Context())
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "EXPORT_FAILED", err)
		return
	}

	stamp := timeutil.Now().Format(timeutil.StampLayout)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="khatabook-`+stamp+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *KhatabookHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	data, err := h.Export.ExportPDF(r.Context())
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "EXPORT_FAILED", err)
		return
	}

	stamp := timeutil.Now().Format(timeutil.StampLayout)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="khatabook-statement-`+stamp+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
