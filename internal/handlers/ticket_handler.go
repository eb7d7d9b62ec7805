package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"jollybaba-backend/internal/config"
	"jollybaba-backend/internal/middleware"
	"jollybaba-backend/internal/models"
	"jollybaba-backend/internal/repositories"
	"jollybaba-backend/internal/services"
	"jollybaba-backend/internal/storage"
	"jollybaba-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// ticketPhotoLimit caps individual photo uploads attached to tickets.
const ticketPhotoLimit = 6 << 20

type TicketHandler struct {
	Service *services.TicketService
	Store   *storage.LocalStore
	Mirror  *storage.S3Mirror
	Config  *config.Config
}

func NewTicketHandler(s *services.TicketService, store *storage.LocalStore, mirror *storage.S3Mirror, cfg *config.Config) *TicketHandler {
	return &TicketHandler{Service: s, Store: store, Mirror: mirror, Config: cfg}
}

func (h *TicketHandler) fail(w http.ResponseWriter, status int, code string, err error) {
	details := ""
	if err != nil && !h.Config.IsProduction() {
		details = err.Error()
	}
	utils.ErrorWithDetails(w, status, code, details)
}

// callerIdentity reconstructs the technician from the token claims.
func callerIdentity(r *http.Request) *models.WorkerIdentity {
	who := &models.WorkerIdentity{}
	if email, ok := middleware.GetEmailFromContext(r.Context()); ok {
		who.Email = email
	}
	if name, ok := middleware.GetNameFromContext(r.Context()); ok {
		who.Name = name
	}
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		who.ID = &id
	}
	return who
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := &models.TicketListQuery{
		MineOnly: parseBool(q.Get("mineOnly")),
		Status:   q.Get("status"),
	}
	query.Page, _ = strconv.Atoi(q.Get("page"))
	query.PerPage, _ = strconv.Atoi(q.Get("perPage"))
	if parseBool(q.Get("pendingOnly")) {
		query.Status = "pending"
	}

	role, _ := middleware.GetRoleFromContext(r.Context())
	tickets, err := h.Service.List(r.Context(), callerIdentity(r), role, query)
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "LIST_FAILED", err)
		return
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	utils.JSON(w, http.StatusOK, tickets)
}

// Create accepts multipart form data with an optional device photo.
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(ticketPhotoLimit); err != nil {
		h.fail(w, http.StatusBadRequest, "CREATE_FAILED", err)
		return
	}

	req := &models.CreateTicketRequest{
		ReceiveDate:             r.FormValue("receive_date"),
		CustomerName:            r.FormValue("customer_name"),
		MobileNumber:            r.FormValue("mobile_number"),
		DeviceModel:             r.FormValue("device_model"),
		IMEI:                    r.FormValue("imei"),
		IssueDescription:        r.FormValue("issue_description"),
		AssignedTechnician:      r.FormValue("assigned_technician"),
		AssignedTechnicianEmail: r.FormValue("assigned_technician_email"),
		EstimatedCost:           r.FormValue("estimated_cost"),
		LockCode:                r.FormValue("lock_code"),
		RepairDate:              r.FormValue("repair_date"),
		DeliveryDate:            r.FormValue("delivery_date"),
		Status:                  r.FormValue("status"),
	}
	if notes := r.FormValue("notes"); notes != "" {
		req.Notes = json.RawMessage(notes)
	}

	if url, ok := h.saveFormPhoto(w, r, "photo"); !ok {
		return
	} else if url != "" {
		req.DevicePhoto = url
	}

	ticket, err := h.Service.Create(r.Context(), req, callerIdentity(r))
	if err != nil {
		if errors.Is(err, services.ErrNameRequired) {
			h.fail(w, http.StatusBadRequest, "NAME_REQUIRED", nil)
			return
		}
		h.fail(w, http.StatusInternalServerError, "CREATE_FAILED", err)
		return
	}
	utils.JSON(w, http.StatusCreated, ticket)
}

// saveFormPhoto stores an optional uploaded photo and returns its URL.
// The bool result is false when a response was already written.
func (h *TicketHandler) saveFormPhoto(w http.ResponseWriter, r *http.Request, field string) (string, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", true
		}
		h.fail(w, http.StatusBadRequest, "UPLOAD_FAILED", err)
		return "", false
	}
	defer file.Close()

	if err := h.Store.ValidatePhoto(header.Filename, header.Size, ticketPhotoLimit); err != nil {
		h.fail(w, http.StatusBadRequest, "UPLOAD_FAILED", err)
		return "", false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(w, http.StatusBadRequest, "UPLOAD_FAILED", err)
		return "", false
	}

	name := h.Store.GenerateName(header.Filename)
	if err := h.Store.Save(name, data); err != nil {
		h.fail(w, http.StatusInternalServerError, "UPLOAD_FAILED", err)
		return "", false
	}
	if err := h.Mirror.Mirror(r.Context(), name, data, header.Header.Get("Content-Type")); err != nil {
		// Mirroring is best effort; the local copy is authoritative.
		log.Printf("[Uploads] mirror of %s failed: %v", name, err)
	}
	return h.Store.URL(r, name), true
}

type ticketPatchBody struct {
	ReceiveDate             *string         `json:"receive_date"`
	RepairDate              *string         `json:"repair_date"`
	CustomerName            *string         `json:"customer_name"`
	MobileNumber            *string         `json:"mobile_number"`
	DeviceModel             *string         `json:"device_model"`
	IMEI                    *string         `json:"imei"`
	IssueDescription        *string         `json:"issue_description"`
	EstimatedCost           *string         `json:"estimated_cost"`
	LockCode                *string         `json:"lock_code"`
	Status                  *string         `json:"status"`
	Notes                   json.RawMessage `json:"notes"`
	DeliveryPhoto1          *string         `json:"delivery_photo_1"`
	DeliveryPhoto2          *string         `json:"delivery_photo_2"`
	AssignedTechnician      *string         `json:"assigned_technician"`
	AssignedTechnicianEmail *string         `json:"assigned_technician_email"`
	AssignedTo              *string         `json:"assigned_to"`
	AssignedToEmail         *string         `json:"assigned_to_email"`

	WorkedByEmail *string `json:"worked_by_email"`
	WorkedByName  *string `json:"worked_by_name"`
	WorkedByID    *int    `json:"worked_by_id"`
	WorkAction    string  `json:"work_action"`
	WorkNotes     string  `json:"work_notes"`
}

func (b *ticketPatchBody) toPatch() *models.TicketPatch {
	return &models.TicketPatch{
		ReceiveDate:             b.ReceiveDate,
		RepairDate:              b.RepairDate,
		CustomerName:            b.CustomerName,
		MobileNumber:            b.MobileNumber,
		DeviceModel:             b.DeviceModel,
		IMEI:                    b.IMEI,
		IssueDescription:        b.IssueDescription,
		EstimatedCost:           b.EstimatedCost,
		LockCode:                b.LockCode,
		Status:                  b.Status,
		Notes:                   b.Notes,
		DeliveryPhoto1:          b.DeliveryPhoto1,
		DeliveryPhoto2:          b.DeliveryPhoto2,
		AssignedTechnician:      b.AssignedTechnician,
		AssignedTechnicianEmail: b.AssignedTechnicianEmail,
		AssignedTo:              b.AssignedTo,
		AssignedToEmail:         b.AssignedToEmail,
	}
}

// actor picks the worker identity: explicit worked_by_* fields from the
// body win, otherwise the authenticated caller.
func (b *ticketPatchBody) actor(r *http.Request) *models.WorkerIdentity {
	if b.WorkedByEmail != nil || b.WorkedByName != nil || b.WorkedByID != nil {
		who := &models.WorkerIdentity{ID: b.WorkedByID}
		if b.WorkedByEmail != nil {
			who.Email = *b.WorkedByEmail
		}
		if b.WorkedByName != nil {
			who.Name = *b.WorkedByName
		}
		return who
	}
	return callerIdentity(r)
}

func (h *TicketHandler) ticketID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		h.fail(w, http.StatusBadRequest, "INVALID_ID", err)
		return 0, false
	}
	return id, true
}

func (h *TicketHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ticketID(w, r)
	if !ok {
		return
	}

	var body ticketPatchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.fail(w, http.StatusBadRequest, "UPDATE_FAILED", err)
		return
	}

	h.applyUpdate(w, r, id, &body)
}

// UpdateMultipart is the form-data variant used by the technician UI; an
// attached delivery photo is stored and the work action defaults to
// delivery_photo.
func (h *TicketHandler) UpdateMultipart(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ticketID(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(ticketPhotoLimit); err != nil {
		h.fail(w, http.StatusBadRequest, "UPDATE_FAILED", err)
		return
	}

	body := ticketPatchBody{
		WorkAction: r.FormValue("work_action"),
		WorkNotes:  r.FormValue("work_notes"),
	}
	formString := func(dst **string, field string) {
		if _, present := r.MultipartForm.Value[field]; present {
			v := r.FormValue(field)
			*dst = &v
		}
	}
	formString(&body.ReceiveDate, "receive_date")
	formString(&body.RepairDate, "repair_date")
	formString(&body.CustomerName, "customer_name")
	formString(&body.MobileNumber, "mobile_number")
	formString(&body.DeviceModel, "device_model")
	formString(&body.IMEI, "imei")
	formString(&body.IssueDescription, "issue_description")
	formString(&body.EstimatedCost, "estimated_cost")
	formString(&body.LockCode, "lock_code")
	formString(&body.Status, "status")
	formString(&body.AssignedTechnician, "assigned_technician")
	formString(&body.AssignedTechnicianEmail, "assigned_technician_email")
	formString(&body.AssignedTo, "assigned_to")
	formString(&body.AssignedToEmail, "assigned_to_email")
	if notes := r.FormValue("notes"); notes != "" {
		body.Notes = json.RawMessage(notes)
	}

	if url, ok := h.saveFormPhoto(w, r, "delivery_photo_2"); !ok {
		return
	} else if url != "" {
		body.DeliveryPhoto2 = &url
		if body.WorkAction == "" {
			body.WorkAction = "delivery_photo"
		}
	}

	h.applyUpdate(w, r, id, &body)
}

func (h *TicketHandler) applyUpdate(w http.ResponseWriter, r *http.Request, id int, body *ticketPatchBody) {
	if body.Notes != nil && !json.Valid(body.Notes) {
		body.Notes = json.RawMessage("[]")
	}

	ticket, err := h.Service.Update(r.Context(), id, body.toPatch(), body.actor(r), body.WorkAction, body.WorkNotes)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.fail(w, http.StatusNotFound, "NOT_FOUND", nil)
			return
		}
		h.fail(w, http.StatusInternalServerError, "UPDATE_FAILED", err)
		return
	}
	utils.JSON(w, http.StatusOK, ticket)
}

// RepairedPhoto processes and uploads the after-repair photo; the ticket
// is only touched once both renditions are stored.
func (h *TicketHandler) RepairedPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ticketID(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(ticketPhotoLimit); err != nil {
		h.fail(w, http.StatusBadRequest, "UPLOAD_FAILED", err)
		return
	}

	file, header, err := r.FormFile("repaired_photo")
	if err != nil {
		h.fail(w, http.StatusBadRequest, "UPLOAD_FAILED", err)
		return
	}
	defer file.Close()

	if err := h.Store.ValidatePhoto(header.Filename, header.Size, ticketPhotoLimit); err != nil {
		h.fail(w, http.StatusBadRequest, "UPLOAD_FAILED", err)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(w, http.StatusBadRequest, "UPLOAD_FAILED", err)
		return
	}

	ticket, err := h.Service.UploadRepairedPhoto(r.Context(), id, data, callerIdentity(r))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.fail(w, http.StatusNotFound, "NOT_FOUND", nil)
			return
		}
		h.fail(w, http.StatusInternalServerError, "UPLOAD_FAILED", err)
		return
	}
	utils.JSON(w, http.StatusOK, ticket)
}
