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

type InventoryHandler struct {
	Service *services.InventoryService
	Config  *config.Config
}

func NewInventoryHandler(s *services.InventoryService, cfg *config.Config) *InventoryHandler {
	return &InventoryHandler{Service: s, Config: cfg}
}

// fail writes an error code, attaching the cause outside production.
func (h *InventoryHandler) fail(w http.ResponseWriter, status int, code string, err error) {
	details := ""
	if err != nil && !h.Config.IsProduction() {
		details = err.Error()
	}
	utils.ErrorWithDetails(w, status, code, details)
}

func (h *InventoryHandler) srNo(w http.ResponseWriter, r *http.Request) (int, bool) {
	srNo, err := strconv.Atoi(mux.Vars(r)["srNo"])
	if err != nil || srNo <= 0 {
		h.fail(w, http.StatusBadRequest, "INVALID_ID", err)
		return 0, false
	}
	return srNo, true
}

func filterFromQuery(r *http.Request) *models.InventoryFilter {
	q := r.URL.Query()
	return &models.InventoryFilter{
		Query:  q.Get("q"),
		Status: q.Get("status"),
		Vendor: q.Get("vendor"),
		Brand:  q.Get("brand"),
		From:   q.Get("from"),
		To:     q.Get("to"),
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
	}
}

func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context(), filterFromQuery(r))
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "LIST_FAILED", err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, "INVALID_ITEM", err)
		return
	}

	item, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidItem):
			h.fail(w, http.StatusBadRequest, "INVALID_ITEM", nil)
		case errors.Is(err, repositories.ErrDuplicateIMEI):
			h.fail(w, http.StatusConflict, "DUP_IMEI", nil)
		default:
			h.fail(w, http.StatusInternalServerError, "CREATE_FAILED", err)
		}
		return
	}
	utils.JSON(w, http.StatusCreated, item)
}

func (h *InventoryHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req models.CreateItemsBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, "NO_ITEMS_PROVIDED", err)
		return
	}

	srNos, err := h.Service.CreateBatch(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoItems):
			h.fail(w, http.StatusBadRequest, "NO_ITEMS_PROVIDED", nil)
		case errors.Is(err, services.ErrInvalidItem):
			h.fail(w, http.StatusBadRequest, "INVALID_ITEM", nil)
		case errors.Is(err, repositories.ErrDuplicateIMEI):
			h.fail(w, http.StatusConflict, "DUP_IMEI_IN_BATCH", nil)
		default:
			h.fail(w, http.StatusInternalServerError, "CREATE_FAILED", err)
		}
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]interface{}{"srNos": srNos})
}

func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	srNo, ok := h.srNo(w, r)
	if !ok {
		return
	}

	var patch models.InventoryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.fail(w, http.StatusBadRequest, "NO_FIELDS", err)
		return
	}

	item, err := h.Service.Update(r.Context(), srNo, &patch)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNoFields):
			h.fail(w, http.StatusBadRequest, "NO_FIELDS", nil)
		case errors.Is(err, repositories.ErrNotFound):
			h.fail(w, http.StatusNotFound, "NOT_FOUND", nil)
		case errors.Is(err, repositories.ErrDuplicateIMEI):
			h.fail(w, http.StatusConflict, "DUP_IMEI", nil)
		default:
			h.fail(w, http.StatusInternalServerError, "UPDATE_FAILED", err)
		}
		return
	}
	utils.JSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) UpdateRemarks(w http.ResponseWriter, r *http.Request) {
	srNo, ok := h.srNo(w, r)
	if !ok {
		return
	}

	var req struct {
		Remarks string `json:"remarks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, "REMARKS_FAILED", err)
		return
	}

	item, err := h.Service.UpdateRemarks(r.Context(), srNo, req.Remarks)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.fail(w, http.StatusNotFound, "NOT_FOUND", nil)
			return
		}
		h.fail(w, http.StatusInternalServerError, "REMARKS_FAILED", err)
		return
	}
	utils.JSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) Sell(w http.ResponseWriter, r *http.Request) {
	srNo, ok := h.srNo(w, r)
	if !ok {
		return
	}

	var req models.SellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, "SELL_FAILED", err)
		return
	}

	sold, err := h.Service.Sell(r.Context(), srNo, &req)
	if err != nil {
		if errors.Is(err, services.ErrNotAvailable) {
			h.fail(w, http.StatusBadRequest, "NOT_AVAILABLE_OR_NOT_FOUND", nil)
			return
		}
		h.fail(w, http.StatusInternalServerError, "SELL_FAILED", err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"ok": true, "sold": sold})
}

func (h *InventoryHandler) SellMultiple(w http.ResponseWriter, r *http.Request) {
	var req models.SellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, "MULTI_SELL_FAILED", err)
		return
	}

	sold, err := h.Service.SellMultiple(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoSrNos):
			h.fail(w, http.StatusBadRequest, "NO_SR_NOS_PROVIDED", nil)
		case errors.Is(err, services.ErrNotAvailable):
			h.fail(w, http.StatusBadRequest, "NOT_AVAILABLE_OR_NOT_FOUND", nil)
		default:
			h.fail(w, http.StatusInternalServerError, "MULTI_SELL_FAILED", err)
		}
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"ok": true, "sold": sold})
}

func (h *InventoryHandler) MakeAvailable(w http.ResponseWriter, r *http.Request) {
	srNo, ok := h.srNo(w, r)
	if !ok {
		return
	}

	item, err := h.Service.MakeAvailable(r.Context(), srNo)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			h.fail(w, http.StatusNotFound, "NOT_FOUND", nil)
		case errors.Is(err, services.ErrNotSold):
			h.fail(w, http.StatusBadRequest, "NOT_SOLD", nil)
		default:
			h.fail(w, http.StatusInternalServerError, "MAKE_AVAILABLE_FAILED", err)
		}
		return
	}
	utils.JSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.Service.ExportCSV(r.Context(), filterFromQuery(r))
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "EXPORT_FAILED", err)
		return
	}

	stamp := timeutil.Now().Format(timeutil.StampLayout)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory-`+stamp+`.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *InventoryHandler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Service.SearchCustomers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "CUSTOMER_SEARCH_FAILED", err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"customers": customers})
}

func (h *InventoryHandler) SearchVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.Service.SearchVendors(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "VENDOR_SEARCH_FAILED", err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"vendors": vendors})
}
