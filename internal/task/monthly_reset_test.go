package task

import (
	"context"
	"testing"

	"github.com/coldline-crm/coldline/internal/models"
	"github.com/coldline-crm/coldline/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartMonthlyResetValidatesSchedule(t *testing.T) {
	s := store.New(models.SetupTestDB(t), nil)

	c, err := StartMonthlyReset(s, "0 0 1 * *", nil)
	require.NoError(t, err)
	c.Stop()

	_, err = StartMonthlyReset(s, "not a schedule", nil)
	assert.Error(t, err)
}

func TestResetJobClearsCounters(t *testing.T) {
	s := store.New(models.SetupTestDB(t), nil)
	ctx := context.Background()

	client := &models.Client{Name: "Acme", CallsThisMonth: 9}
	require.NoError(t, s.CreateClient(ctx, client))

	affected, err := s.ResetMonthlyCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	got, err := s.GetClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CallsThisMonth)
}
