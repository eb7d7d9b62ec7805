package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"jollybaba-backend/internal/models"
	"jollybaba-backend/internal/photos"
	"jollybaba-backend/internal/repositories"
	"jollybaba-backend/internal/timeutil"
)

const (
	defaultPerPage = 100
	minPerPage     = 10
	maxPerPage     = 200
)

type TicketService struct {
	Repo      *repositories.TicketRepository
	Processor *photos.Processor
	Photos    *photos.CloudinaryStore
}

func NewTicketService(repo *repositories.TicketRepository, processor *photos.Processor, store *photos.CloudinaryStore) *TicketService {
	return &TicketService{Repo: repo, Processor: processor, Photos: store}
}

func clampPerPage(perPage int) int {
	if perPage == 0 {
		return defaultPerPage
	}
	if perPage < minPerPage {
		return minPerPage
	}
	if perPage > maxPerPage {
		return maxPerPage
	}
	return perPage
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// List dispatches on the caller's role. Admins see everything;
// technicians see either the shared queue or, with mineOnly, tickets
// matched to their identity. All three views paginate.
func (s *TicketService) List(ctx context.Context, who *models.WorkerIdentity, role string, q *models.TicketListQuery) ([]models.Ticket, error) {
	page := clampPage(q.Page)
	perPage := clampPerPage(q.PerPage)
	if role == "admin" {
		return s.Repo.ListAll(ctx, page, perPage)
	}
	if q.MineOnly {
		return s.Repo.ListMine(ctx, who, page, perPage)
	}
	return s.Repo.ListQueue(ctx, q.Status, page, perPage)
}

func (s *TicketService) Get(ctx context.Context, id int) (*models.Ticket, error) {
	return s.Repo.Get(ctx, id)
}

// Create opens a ticket. The creator becomes the assignee when none was
// given, and their identity is stamped on the row afterwards so a stamp
// failure never loses the ticket.
func (s *TicketService) Create(ctx context.Context, req *models.CreateTicketRequest, who *models.WorkerIdentity) (*models.Ticket, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, ErrNameRequired
	}
	if req.Notes == nil || !json.Valid(req.Notes) {
		req.Notes = json.RawMessage("[]")
	}
	if req.AssignedTechnician == "" && req.AssignedTechnicianEmail == "" {
		req.AssignedTechnician = who.Name
		req.AssignedTechnicianEmail = who.Email
	}

	id, err := s.Repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SetCreator(ctx, id, who); err != nil {
		log.Printf("[Tickets] creator stamp on #%d failed: %v", id, err)
	}
	return s.Repo.Get(ctx, id)
}

// Update applies a partial update. When an actor is identifiable the
// update also appends a work-log entry and stamps the last-worked fields.
func (s *TicketService) Update(ctx context.Context, id int, patch *models.TicketPatch, actor *models.WorkerIdentity, action, workNotes string) (*models.Ticket, error) {
	if actor != nil && (actor.Email != "" || actor.Name != "" || actor.ID != nil) {
		stampWork(patch, actor, action, workNotes)
	}
	return s.Repo.Update(ctx, id, patch)
}

// stampWork fills the computed work fields on a patch: the last-worked
// columns plus a single-entry array appended to the work log.
func stampWork(patch *models.TicketPatch, actor *models.WorkerIdentity, action, workNotes string) {
	now := timeutil.Now()

	entry := models.WorkLogEntry{
		Action: workAction(action, patch.Status),
		At:     now.Format(time.RFC3339),
		Notes:  workNotes,
		User: models.WorkLogEntryUser{
			Email: optional(actor.Email),
			Name:  optional(actor.Name),
			ID:    actor.ID,
		},
	}
	appended, err := json.Marshal([]models.WorkLogEntry{entry})
	if err != nil {
		log.Printf("[Tickets] work log entry marshal failed: %v", err)
		return
	}

	patch.WorkLogAppend = appended
	patch.LastWorkedAt = &now
	if actor.Email != "" {
		patch.LastWorkedByEmail = optional(actor.Email)
	}
	if actor.Name != "" {
		patch.LastWorkedByName = optional(actor.Name)
	}
	patch.LastWorkedByID = actor.ID
}

// workAction picks the log label: an explicit action wins, a status change
// becomes "status:<s>", anything else is a plain update.
func workAction(action string, status *string) string {
	if action = strings.TrimSpace(action); action != "" {
		return action
	}
	if status != nil && strings.TrimSpace(*status) != "" {
		return "status:" + strings.TrimSpace(*status)
	}
	return "update"
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// UploadRepairedPhoto processes the raw upload into both renditions,
// pushes them to Cloudinary and only then touches the ticket. Any failure
// along the way leaves the ticket exactly as it was.
func (s *TicketService) UploadRepairedPhoto(ctx context.Context, id int, file []byte, actor *models.WorkerIdentity) (*models.Ticket, error) {
	exists, err := s.Repo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, repositories.ErrNotFound
	}

	derived, err := s.Processor.Derive(file)
	if err != nil {
		return nil, err
	}

	publicID := fmt.Sprintf("ticket_%d_%d", id, timeutil.Now().UnixMilli())
	mainURL, err := s.Photos.Upload(ctx, derived.Main, publicID)
	if err != nil {
		return nil, err
	}
	thumbURL, err := s.Photos.Upload(ctx, derived.Thumb, publicID+"_thumb")
	if err != nil {
		return nil, err
	}

	return s.Repo.SetRepairedPhoto(ctx, id, mainURL, thumbURL, uploaderLabel(actor))
}

// uploaderLabel names who uploaded: email, else name, else "id:<n>".
func uploaderLabel(actor *models.WorkerIdentity) string {
	if actor == nil {
		return ""
	}
	if actor.Email != "" {
		return actor.Email
	}
	if actor.Name != "" {
		return actor.Name
	}
	if actor.ID != nil {
		return fmt.Sprintf("id:%d", *actor.ID)
	}
	return ""
}
