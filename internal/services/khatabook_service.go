package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"jollybaba-backend/internal/models"
	"jollybaba-backend/internal/repositories"
	"jollybaba-backend/internal/timeutil"
)

// Validation errors mapped to 400 responses by the handler.
var (
	ErrNameRequired  = errors.New("name is required")
	ErrAmountInvalid = errors.New("amount must be a non-negative number")
	ErrPaidInvalid   = errors.New("paid must be between 0 and amount")
	ErrPaidTooHigh   = errors.New("paid cannot exceed amount")
	ErrBadEntryDate  = errors.New("entry date must be YYYY-MM-DD")
)

type KhatabookService struct {
	Repo *repositories.KhatabookRepository
}

func NewKhatabookService(repo *repositories.KhatabookRepository) *KhatabookService {
	return &KhatabookService{Repo: repo}
}

func (s *KhatabookService) List(ctx context.Context) ([]models.KhatabookEntry, error) {
	return s.Repo.List(ctx)
}

func (s *KhatabookService) Create(ctx context.Context, req *models.CreateKhatabookEntryRequest) (*models.KhatabookEntry, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	amount := 0.0
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount < 0 {
		return nil, ErrAmountInvalid
	}

	paid := 0.0
	if req.Paid != nil {
		paid = *req.Paid
	}
	if paid < 0 || paid > amount {
		return nil, ErrPaidInvalid
	}

	if req.EntryDate != "" {
		if _, err := time.Parse(timeutil.DateLayout, req.EntryDate); err != nil {
			return nil, ErrBadEntryDate
		}
	}

	return s.Repo.Create(ctx, name, strings.TrimSpace(req.Mobile), amount, paid,
		strings.TrimSpace(req.Description), strings.TrimSpace(req.Note), req.EntryDate)
}

// Update folds the patch into the stored row, re-validates the merged
// result and writes it back. A body with no recognized fields returns the
// current row untouched.
func (s *KhatabookService) Update(ctx context.Context, id int, patch *models.KhatabookPatch) (*models.KhatabookEntry, error) {
	current, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changed, err := mergeEntryPatch(current, patch)
	if err != nil {
		return nil, err
	}
	if !changed {
		return current, nil
	}

	return s.Repo.Update(ctx, id, current)
}

// mergeEntryPatch applies the present patch fields onto the entry and
// validates the merged result. paid <= amount must hold for the pair
// after the merge, whichever side the patch touched.
func mergeEntryPatch(current *models.KhatabookEntry, patch *models.KhatabookPatch) (bool, error) {
	changed := false
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return false, ErrNameRequired
		}
		current.Name = name
		changed = true
	}
	if patch.Mobile != nil {
		current.Mobile = strings.TrimSpace(*patch.Mobile)
		changed = true
	}
	if patch.Amount != nil {
		if *patch.Amount < 0 {
			return false, ErrAmountInvalid
		}
		current.Amount = *patch.Amount
		changed = true
	}
	if patch.Paid != nil {
		if *patch.Paid < 0 {
			return false, ErrPaidInvalid
		}
		current.Paid = *patch.Paid
		changed = true
	}
	if patch.Description != nil {
		current.Description = strings.TrimSpace(*patch.Description)
		changed = true
	}
	if patch.Note != nil {
		current.Note = strings.TrimSpace(*patch.Note)
		changed = true
	}
	if patch.EntryDate != nil {
		d, err := time.Parse(timeutil.DateLayout, *patch.EntryDate)
		if err != nil {
			return false, ErrBadEntryDate
		}
		current.EntryDate = d
		changed = true
	}

	if changed && current.Paid > current.Amount {
		return false, ErrPaidTooHigh
	}
	return changed, nil
}

func (s *KhatabookService) Delete(ctx context.Context, id int) error {
	return s.Repo.Delete(ctx, id)
}

// CombinedLedger merges stored manual entries with sale entries synthesized
// from every SOLD inventory item. Shared by the XLSX and PDF exports.
func (s *KhatabookService) CombinedLedger(ctx context.Context) ([]models.LedgerEntry, error) {
	manual, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sold, err := s.Repo.ListSoldRows(ctx)
	if err != nil {
		return nil, err
	}
	return CombineEntries(manual, sold), nil
}
