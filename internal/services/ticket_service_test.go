package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"jollybaba-backend/internal/models"
)

func TestClampPerPage(t *testing.T) {
	require.Equal(t, defaultPerPage, clampPerPage(0))
	require.Equal(t, minPerPage, clampPerPage(1))
	require.Equal(t, 50, clampPerPage(50))
	require.Equal(t, maxPerPage, clampPerPage(1000))
}

func TestClampPage(t *testing.T) {
	require.Equal(t, 1, clampPage(0))
	require.Equal(t, 1, clampPage(-9))
	require.Equal(t, 7, clampPage(7))
}

func TestWorkAction(t *testing.T) {
	repaired := "Repaired"
	blank := "  "
	require.Equal(t, "delivery_photo", workAction("delivery_photo", &repaired))
	require.Equal(t, "status:Repaired", workAction("", &repaired))
	require.Equal(t, "status:Repaired", workAction("  ", &repaired))
	require.Equal(t, "update", workAction("", &blank))
	require.Equal(t, "update", workAction("", nil))
}

func TestStampWork(t *testing.T) {
	id := 4
	status := "Delivered"
	patch := &models.TicketPatch{Status: &status}
	actor := &models.WorkerIdentity{Email: "tech@shop.in", Name: "Tech One", ID: &id}

	stampWork(patch, actor, "", "handed over")

	require.NotNil(t, patch.LastWorkedAt)
	require.Equal(t, "tech@shop.in", *patch.LastWorkedByEmail)
	require.Equal(t, "Tech One", *patch.LastWorkedByName)
	require.Equal(t, 4, *patch.LastWorkedByID)

	var entries []models.WorkLogEntry
	require.NoError(t, json.Unmarshal(patch.WorkLogAppend, &entries))
	require.Len(t, entries, 1)
	require.Equal(t, "status:Delivered", entries[0].Action)
	require.Equal(t, "handed over", entries[0].Notes)
	require.Equal(t, "tech@shop.in", *entries[0].User.Email)
	require.NotEmpty(t, entries[0].At)
}

func TestStampWorkAnonymousFieldsStayNil(t *testing.T) {
	patch := &models.TicketPatch{}
	stampWork(patch, &models.WorkerIdentity{}, "note", "")

	require.Nil(t, patch.LastWorkedByEmail)
	require.Nil(t, patch.LastWorkedByName)
	require.Nil(t, patch.LastWorkedByID)
	require.NotNil(t, patch.WorkLogAppend)
}

func TestUploaderLabel(t *testing.T) {
	id := 9
	require.Equal(t, "a@b.c", uploaderLabel(&models.WorkerIdentity{Email: "a@b.c", Name: "N", ID: &id}))
	require.Equal(t, "N", uploaderLabel(&models.WorkerIdentity{Name: "N", ID: &id}))
	require.Equal(t, "id:9", uploaderLabel(&models.WorkerIdentity{ID: &id}))
	require.Equal(t, "", uploaderLabel(&models.WorkerIdentity{}))
	require.Equal(t, "", uploaderLabel(nil))
}
