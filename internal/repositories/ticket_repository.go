package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jollybaba-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ticketColumns = `id, receive_date, customer_name, mobile_number, device_model, imei,
	issue_description, assigned_technician, assigned_technician_email, assigned_to,
	assigned_to_email, estimated_cost, device_photo, lock_code, repair_date,
	delivery_date, status, notes, delivery_photo_1, delivery_photo_2,
	repaired_photo, repaired_photo_thumb, repaired_photo_uploaded_at,
	repaired_photo_uploaded_by, created_by_email, created_by_name, created_by_id,
	last_worked_by_email, last_worked_by_name, last_worked_by_id, last_worked_at,
	work_log, created_at, updated_at`

// ownershipColumns are the legacy free-text columns a ticket may carry its
// assignee or creator in. Older deployments miss some of them, so presence
// is checked through the column cache before they appear in a query.
var ownershipColumns = []string{
	"assigned_technician",
	"assigned_technician_email",
	"assigned_to",
	"created_by_email",
	"created_by_name",
}

type TicketRepository struct {
	DB      *pgxpool.Pool
	columns *ColumnCache
}

func NewTicketRepository(db *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{
		DB:      db,
		columns: NewColumnCache(db, "tickets", 60*time.Second),
	}
}

func scanTicket(row pgx.Row) (*models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(
		&t.ID, &t.ReceiveDate, &t.CustomerName, &t.MobileNumber, &t.DeviceModel,
		&t.IMEI, &t.IssueDescription, &t.AssignedTechnician, &t.AssignedTechnicianEmail,
		&t.AssignedTo, &t.AssignedToEmail, &t.EstimatedCost, &t.DevicePhoto,
		&t.LockCode, &t.RepairDate, &t.DeliveryDate, &t.Status, &t.Notes,
		&t.DeliveryPhoto1, &t.DeliveryPhoto2, &t.RepairedPhoto, &t.RepairedPhotoThumb,
		&t.RepairedPhotoUploadedAt, &t.RepairedPhotoUploadedBy,
		&t.CreatedByEmail, &t.CreatedByName, &t.CreatedByID,
		&t.LastWorkedByEmail, &t.LastWorkedByName, &t.LastWorkedByID, &t.LastWorkedAt,
		&t.WorkLog, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TicketRepository) queryTickets(ctx context.Context, query string, args ...interface{}) ([]models.Ticket, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

// ListAll returns the admin view: every ticket, newest first, paginated.
func (r *TicketRepository) ListAll(ctx context.Context, page, perPage int) ([]models.Ticket, error) {
	offset := (page - 1) * perPage
	query := fmt.Sprintf(
		"SELECT %s FROM tickets ORDER BY id DESC LIMIT $1 OFFSET $2",
		ticketColumns,
	)
	return r.queryTickets(ctx, query, perPage, offset)
}

// ListQueue returns the shared technician queue: pending tickets surface
// first, then most recently touched.
func (r *TicketRepository) ListQueue(ctx context.Context, status string, page, perPage int) ([]models.Ticket, error) {
	where := ""
	var args []interface{}
	if status != "" {
		where = "WHERE LOWER(COALESCE(status, '')) = $1"
		args = append(args, strings.ToLower(status))
	}
	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`
		SELECT %s FROM tickets
		%s
		ORDER BY (CASE WHEN LOWER(COALESCE(status, '')) = 'pending' THEN 0 ELSE 1 END),
		         updated_at DESC NULLS LAST,
		         id DESC
		LIMIT $%d OFFSET $%d`, ticketColumns, where, len(args)-1, len(args))
	return r.queryTickets(ctx, query, args...)
}

// ListMine matches tickets against every identity fragment a technician
// might appear under in the legacy free-text ownership columns, plus the
// structured creator id. An empty identity matches nothing.
func (r *TicketRepository) ListMine(ctx context.Context, who *models.WorkerIdentity, page, perPage int) ([]models.Ticket, error) {
	needles := identityNeedles(who)
	if len(needles) == 0 && who.ID == nil {
		return []models.Ticket{}, nil
	}

	var conditions []string
	var args []interface{}

	if len(needles) > 0 {
		for _, col := range ownershipColumns {
			if !r.columns.Has(ctx, col) {
				continue
			}
			for _, needle := range needles {
				args = append(args, needle)
				conditions = append(conditions,
					fmt.Sprintf("LOWER(COALESCE(%s, '')) LIKE $%d", col, len(args)))
			}
		}
	}
	if who.ID != nil {
		if r.columns.Has(ctx, "created_by_id") {
			args = append(args, *who.ID)
			conditions = append(conditions, fmt.Sprintf("created_by_id = $%d", len(args)))
		}
	}
	if len(conditions) == 0 {
		return []models.Ticket{}, nil
	}

	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(
		"SELECT %s FROM tickets WHERE %s ORDER BY id DESC LIMIT $%d OFFSET $%d",
		ticketColumns, strings.Join(conditions, " OR "), len(args)-1, len(args),
	)
	return r.queryTickets(ctx, query, args...)
}

// identityNeedles builds the lowercase LIKE patterns for a technician:
// full email, email local part, full name, and each name fragment.
func identityNeedles(who *models.WorkerIdentity) []string {
	seen := map[string]bool{}
	var needles []string
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		needles = append(needles, "%"+s+"%")
	}

	add(who.Email)
	if at := strings.Index(who.Email, "@"); at > 0 {
		add(who.Email[:at])
	}
	add(who.Name)
	for _, part := range strings.Fields(who.Name) {
		add(part)
	}
	return needles
}

// Create inserts a new ticket and returns its id.
func (r *TicketRepository) Create(ctx context.Context, req *models.CreateTicketRequest) (int, error) {
	var id int
	err := r.DB.QueryRow(ctx, `
		INSERT INTO tickets (
			receive_date, customer_name, mobile_number, device_model, imei,
			issue_description, assigned_technician, assigned_technician_email,
			estimated_cost, device_photo, lock_code, repair_date, delivery_date,
			status, notes, created_at, updated_at
		) VALUES (
			NULLIF($1, '')::timestamp, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''),
			NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''),
			NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''),
			NULLIF($12, '')::timestamp, NULLIF($13, '')::timestamp,
			COALESCE(NULLIF($14, ''), 'Pending'), $15::jsonb, now(), now()
		) RETURNING id`,
		req.ReceiveDate, req.CustomerName, req.MobileNumber, req.DeviceModel,
		req.IMEI, req.IssueDescription, req.AssignedTechnician,
		req.AssignedTechnicianEmail, req.EstimatedCost, req.DevicePhoto,
		req.LockCode, req.RepairDate, req.DeliveryDate, req.Status,
		string(req.Notes),
	).Scan(&id)
	return id, err
}

// SetCreator stamps who opened the ticket. Kept separate from the insert so
// a failure here never loses the ticket itself.
func (r *TicketRepository) SetCreator(ctx context.Context, id int, who *models.WorkerIdentity) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE tickets
		   SET created_by_email = NULLIF($1, ''),
		       created_by_name = NULLIF($2, ''),
		       created_by_id = $3
		 WHERE id = $4`,
		who.Email, who.Name, who.ID, id,
	)
	return err
}

func (r *TicketRepository) Get(ctx context.Context, id int) (*models.Ticket, error) {
	query := fmt.Sprintf("SELECT %s FROM tickets WHERE id = $1", ticketColumns)
	t, err := scanTicket(r.DB.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Update folds every provided field into one COALESCE statement so fields
// the caller left out are never rewritten. Work log entries are appended,
// never replaced.
func (r *TicketRepository) Update(ctx context.Context, id int, patch *models.TicketPatch) (*models.Ticket, error) {
	var notes interface{}
	if patch.Notes != nil {
		notes = string(patch.Notes)
	}
	var workLog interface{}
	if patch.WorkLogAppend != nil {
		workLog = string(patch.WorkLogAppend)
	}

	query := fmt.Sprintf(`
		UPDATE tickets SET
			receive_date = COALESCE($1::timestamp, receive_date),
			repair_date = COALESCE($2::timestamp, repair_date),
			customer_name = COALESCE($3, customer_name),
			mobile_number = COALESCE($4, mobile_number),
			device_model = COALESCE($5, device_model),
			imei = COALESCE($6, imei),
			issue_description = COALESCE($7, issue_description),
			estimated_cost = COALESCE($8, estimated_cost),
			lock_code = COALESCE($9, lock_code),
			status = COALESCE($10, status),
			notes = COALESCE($11::jsonb, notes),
			delivery_photo_1 = COALESCE($12, delivery_photo_1),
			delivery_photo_2 = COALESCE($13, delivery_photo_2),
			assigned_technician = COALESCE($14, assigned_technician),
			assigned_technician_email = COALESCE($15, assigned_technician_email),
			assigned_to = COALESCE($16, assigned_to),
			assigned_to_email = COALESCE($17, assigned_to_email),
			last_worked_by_email = COALESCE($18, last_worked_by_email),
			last_worked_by_name = COALESCE($19, last_worked_by_name),
			last_worked_by_id = COALESCE($20, last_worked_by_id),
			last_worked_at = COALESCE($21, last_worked_at),
			work_log = CASE WHEN $22::jsonb IS NULL THEN work_log
			                ELSE COALESCE(work_log, '[]'::jsonb) || $22::jsonb END,
			updated_at = now()
		WHERE id = $23
		RETURNING %s`, ticketColumns)

	t, err := scanTicket(r.DB.QueryRow(ctx, query,
		patch.ReceiveDate, patch.RepairDate, patch.CustomerName, patch.MobileNumber,
		patch.DeviceModel, patch.IMEI, patch.IssueDescription, patch.EstimatedCost,
		patch.LockCode, patch.Status, notes, patch.DeliveryPhoto1, patch.DeliveryPhoto2,
		patch.AssignedTechnician, patch.AssignedTechnicianEmail,
		patch.AssignedTo, patch.AssignedToEmail,
		patch.LastWorkedByEmail, patch.LastWorkedByName, patch.LastWorkedByID,
		patch.LastWorkedAt, workLog, id,
	))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// SetRepairedPhoto stores both processed photo URLs and forces the status
// to Repaired in the same statement, so a ticket never ends up with a
// photo but a stale status.
func (r *TicketRepository) SetRepairedPhoto(ctx context.Context, id int, mainURL, thumbURL, uploadedBy string) (*models.Ticket, error) {
	query := fmt.Sprintf(`
		UPDATE tickets SET
			repaired_photo = $1,
			repaired_photo_thumb = $2,
			repaired_photo_uploaded_at = now(),
			repaired_photo_uploaded_by = $3,
			status = 'Repaired',
			updated_at = now()
		WHERE id = $4
		RETURNING %s`, ticketColumns)

	t, err := scanTicket(r.DB.QueryRow(ctx, query, mainURL, thumbURL, uploadedBy, id))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Exists reports whether a ticket id is present.
func (r *TicketRepository) Exists(ctx context.Context, id int) (bool, error) {
	var ok bool
	err := r.DB.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM tickets WHERE id = $1)", id).Scan(&ok)
	return ok, err
}
