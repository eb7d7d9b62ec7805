package models

import (
	"encoding/json"
	"time"
)

// Ticket is a repair job. Most columns are nullable because tickets are
// created incrementally from the counter and filled in as work progresses.
type Ticket struct {
	ID                      int             `json:"id"`
	ReceiveDate             *time.Time      `json:"receive_date"`
	CustomerName            *string         `json:"customer_name"`
	MobileNumber            *string         `json:"mobile_number"`
	DeviceModel             *string         `json:"device_model"`
	IMEI                    *string         `json:"imei"`
	IssueDescription        *string         `json:"issue_description"`
	AssignedTechnician      *string         `json:"assigned_technician"`
	AssignedTechnicianEmail *string         `json:"assigned_technician_email"`
	AssignedTo              *string         `json:"assigned_to"`
	AssignedToEmail         *string         `json:"assigned_to_email"`
	EstimatedCost           *string         `json:"estimated_cost"`
	DevicePhoto             *string         `json:"device_photo"`
	LockCode                *string         `json:"lock_code"`
	RepairDate              *time.Time      `json:"repair_date"`
	DeliveryDate            *time.Time      `json:"delivery_date"`
	Status                  *string         `json:"status"`
	Notes                   json.RawMessage `json:"notes"`
	DeliveryPhoto1          *string         `json:"delivery_photo_1"`
	DeliveryPhoto2          *string         `json:"delivery_photo_2"`
	RepairedPhoto           *string         `json:"repaired_photo"`
	RepairedPhotoThumb      *string         `json:"repaired_photo_thumb"`
	RepairedPhotoUploadedAt *time.Time      `json:"repaired_photo_uploaded_at"`
	RepairedPhotoUploadedBy *string         `json:"repaired_photo_uploaded_by"`
	CreatedByEmail          *string         `json:"created_by_email"`
	CreatedByName           *string         `json:"created_by_name"`
	CreatedByID             *int            `json:"created_by_id"`
	LastWorkedByEmail       *string         `json:"last_worked_by_email"`
	LastWorkedByName        *string         `json:"last_worked_by_name"`
	LastWorkedByID          *int            `json:"last_worked_by_id"`
	LastWorkedAt            *time.Time      `json:"last_worked_at"`
	WorkLog                 json.RawMessage `json:"work_log"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// WorkerIdentity identifies who performed an action on a ticket.
// At least one of Email, Name or ID is set.
type WorkerIdentity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	ID    *int   `json:"id"`
}

// WorkLogEntry is one element of the append-only tickets.work_log array.
type WorkLogEntry struct {
	Action string           `json:"action"`
	At     string           `json:"at"`
	User   WorkLogEntryUser `json:"user"`
	Notes  string           `json:"notes,omitempty"`
}

type WorkLogEntryUser struct {
	Email *string `json:"email"`
	Name  *string `json:"name"`
	ID    *int    `json:"id"`
}

// TicketPatch collects the updatable ticket fields. Nil pointers mean
// "leave unchanged"; the repository folds them into a single COALESCE
// update so concurrent partial updates never clobber each other's fields.
type TicketPatch struct {
	ReceiveDate             *string
	RepairDate              *string
	CustomerName            *string
	MobileNumber            *string
	DeviceModel             *string
	IMEI                    *string
	IssueDescription        *string
	EstimatedCost           *string
	LockCode                *string
	Status                  *string
	Notes                   json.RawMessage // nil means not provided
	DeliveryPhoto1          *string
	DeliveryPhoto2          *string
	AssignedTechnician      *string
	AssignedTechnicianEmail *string
	AssignedTo              *string
	AssignedToEmail         *string

	// Computed by the service when the update represents actual work:
	// last-worked stamps plus a marshaled one-element array to append
	// to the work log.
	LastWorkedByEmail *string
	LastWorkedByName  *string
	LastWorkedByID    *int
	LastWorkedAt      *time.Time
	WorkLogAppend     json.RawMessage
}

// CreateTicketRequest carries the multipart form fields for ticket creation.
type CreateTicketRequest struct {
	ReceiveDate             string
	CustomerName            string
	MobileNumber            string
	DeviceModel             string
	IMEI                    string
	IssueDescription        string
	AssignedTechnician      string
	AssignedTechnicianEmail string
	EstimatedCost           string
	DevicePhoto             string
	LockCode                string
	RepairDate              string
	DeliveryDate            string
	Status                  string
	Notes                   json.RawMessage
}

// TicketListQuery captures list filters after parsing.
type TicketListQuery struct {
	Page     int
	PerPage  int
	MineOnly bool
	Status   string
}
