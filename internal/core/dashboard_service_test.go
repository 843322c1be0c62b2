package core

import (
	"context"
	"errors"
	"testing"

	"fieldops.service/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	stats, err := NewDashboardService(store, 0).Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalWorkers)
	assert.Equal(t, 4, stats.TotalCustomers)
	assert.Equal(t, 1, stats.ActiveSurveys)
	assert.Equal(t, 3, stats.ActiveWorkers)
	assert.False(t, stats.ActiveApproximate)
	require.Len(t, stats.RecentCheckIns, 5)
	assert.Equal(t, model.TypeCheckOut, stats.RecentCheckIns[0].Type)

	small, err := NewDashboardService(store, 2).Stats(ctx)
	require.NoError(t, err)
	assert.True(t, small.ActiveApproximate)
	assert.Zero(t, small.ActiveWorkers, "the two newest records are check-outs")
	assert.Len(t, small.RecentCheckIns, 2)
}

func TestDashboardFailureIsGeneric(t *testing.T) {
	store := seededStore(t)
	store.SetFailure(errors.New("dial tcp: timeout"))

	_, err := NewDashboardService(store, 0).Stats(context.Background())
	assert.Equal(t, "Failed to load dashboard. Please try again.", UserMessage(err))
}
