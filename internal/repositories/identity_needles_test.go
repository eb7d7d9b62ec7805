package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"

	"jollybaba-backend/internal/models"
)

func TestIdentityNeedles(t *testing.T) {
	who := &models.WorkerIdentity{Email: "Ravi.K@Shop.in", Name: "Ravi Kumar"}
	needles := identityNeedles(who)
	require.Equal(t, []string{
		"%ravi.k@shop.in%",
		"%ravi.k%",
		"%ravi kumar%",
		"%ravi%",
		"%kumar%",
	}, needles)
}

func TestIdentityNeedlesDeduplicates(t *testing.T) {
	// local part equals the single-word name once lowercased
	who := &models.WorkerIdentity{Email: "ravi@shop.in", Name: "Ravi"}
	needles := identityNeedles(who)
	require.Equal(t, []string{"%ravi@shop.in%", "%ravi%"}, needles)
}

func TestIdentityNeedlesEmptyIdentity(t *testing.T) {
	require.Empty(t, identityNeedles(&models.WorkerIdentity{}))
	require.Empty(t, identityNeedles(&models.WorkerIdentity{Email: "   ", Name: " "}))
}
