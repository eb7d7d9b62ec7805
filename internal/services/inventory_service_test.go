package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"jollybaba-backend/internal/models"
)

func TestNormalizeItem(t *testing.T) {
	req := &models.CreateItemRequest{
		Model: "  iPhone 12  ",
		IMEI:  " 356938035643809 ",
		Brand: " Apple ",
		Date:  "2026-03-01",
	}
	require.NoError(t, normalizeItem(req))
	require.Equal(t, "iPhone 12", req.Model)
	require.Equal(t, "356938035643809", req.IMEI)
	require.Equal(t, "Apple", req.Brand)
	require.Equal(t, "2026-03-01", req.Date)
}

func TestNormalizeItemDefaultsDate(t *testing.T) {
	req := &models.CreateItemRequest{Model: "A1", IMEI: "1"}
	require.NoError(t, normalizeItem(req))
	require.NotEmpty(t, req.Date)
}

func TestNormalizeItemRejectsMissingFields(t *testing.T) {
	require.ErrorIs(t, normalizeItem(&models.CreateItemRequest{IMEI: "1"}), ErrInvalidItem)
	require.ErrorIs(t, normalizeItem(&models.CreateItemRequest{Model: "A1"}), ErrInvalidItem)
	require.ErrorIs(t, normalizeItem(&models.CreateItemRequest{Model: "  ", IMEI: " "}), ErrInvalidItem)
}

func TestPerItemAmount(t *testing.T) {
	require.Equal(t, 30000.0, perItemAmount(30000, 1))
	require.Equal(t, 10000.0, perItemAmount(30000, 3))
	require.Equal(t, 25.0, perItemAmount(100, 4))
	// degenerate counts keep the total untouched
	require.Equal(t, 500.0, perItemAmount(500, 0))
}

func TestDeref(t *testing.T) {
	s := "x"
	require.Equal(t, "x", deref(&s))
	require.Equal(t, "", deref(nil))
}

func TestFormatAmount(t *testing.T) {
	v := 1234.5
	require.Equal(t, "1234.50", formatAmount(&v))
	require.Equal(t, "", formatAmount(nil))
}
