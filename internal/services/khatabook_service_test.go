package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"jollybaba-backend/internal/models"
)

func f64(v float64) *float64 { return &v }

func TestCreateEntryValidation(t *testing.T) {
	s := NewKhatabookService(nil)
	ctx := context.Background()

	_, err := s.Create(ctx, &models.CreateKhatabookEntryRequest{Name: "  "})
	require.ErrorIs(t, err, ErrNameRequired)

	_, err = s.Create(ctx, &models.CreateKhatabookEntryRequest{Name: "A", Amount: f64(-1)})
	require.ErrorIs(t, err, ErrAmountInvalid)

	_, err = s.Create(ctx, &models.CreateKhatabookEntryRequest{Name: "A", Amount: f64(100), Paid: f64(-1)})
	require.ErrorIs(t, err, ErrPaidInvalid)

	_, err = s.Create(ctx, &models.CreateKhatabookEntryRequest{Name: "A", Amount: f64(100), Paid: f64(150)})
	require.ErrorIs(t, err, ErrPaidInvalid)

	_, err = s.Create(ctx, &models.CreateKhatabookEntryRequest{Name: "A", Amount: f64(100), EntryDate: "03/05/2026"})
	require.ErrorIs(t, err, ErrBadEntryDate)
}

func strp(s string) *string { return &s }

func TestMergeEntryPatch(t *testing.T) {
	current := &models.KhatabookEntry{Name: "Ramesh", Amount: 100, Paid: 40}

	changed, err := mergeEntryPatch(current, &models.KhatabookPatch{Paid: f64(90)})
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, 90.0, current.Paid)

	changed, err = mergeEntryPatch(current, &models.KhatabookPatch{})
	require.NoError(t, err)
	require.False(t, changed)
}

func TestMergeEntryPatchPaidCannotExceedAmount(t *testing.T) {
	// raising paid past the stored amount
	current := &models.KhatabookEntry{Name: "A", Amount: 100, Paid: 40}
	_, err := mergeEntryPatch(current, &models.KhatabookPatch{Paid: f64(150)})
	require.ErrorIs(t, err, ErrPaidTooHigh)

	// lowering amount under the stored paid
	current = &models.KhatabookEntry{Name: "A", Amount: 100, Paid: 80}
	_, err = mergeEntryPatch(current, &models.KhatabookPatch{Amount: f64(50)})
	require.ErrorIs(t, err, ErrPaidTooHigh)
}

func TestMergeEntryPatchValidation(t *testing.T) {
	current := &models.KhatabookEntry{Name: "A", Amount: 100}

	_, err := mergeEntryPatch(current, &models.KhatabookPatch{Name: strp("  ")})
	require.ErrorIs(t, err, ErrNameRequired)

	_, err = mergeEntryPatch(current, &models.KhatabookPatch{Amount: f64(-1)})
	require.ErrorIs(t, err, ErrAmountInvalid)

	_, err = mergeEntryPatch(current, &models.KhatabookPatch{Paid: f64(-1)})
	require.ErrorIs(t, err, ErrPaidInvalid)

	_, err = mergeEntryPatch(current, &models.KhatabookPatch{EntryDate: strp("31/12/2026")})
	require.ErrorIs(t, err, ErrBadEntryDate)
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "exactly10c", truncate("exactly10c", 10))
	require.Equal(t, "abcdefg...", truncate("abcdefghijk", 10))
	// multi-byte text cuts on rune boundaries
	require.Equal(t, "मोबाइल...", truncate("मोबाइल रिपेयर शॉप", 9))
}
