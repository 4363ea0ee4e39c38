package reports

import (
	"context"
	"testing"
	"time"

	"github.com/pothole-patrol/api-go/backend"
	"github.com/pothole-patrol/api-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentReturnsSixNewest(t *testing.T) {
	mem := backend.NewMemory()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 9; i++ {
		r := seedReport(t, mem, models.StatusReported, base.Add(time.Duration(i)*time.Hour))
		ids = append(ids, r.ID)
	}

	got, err := NewLister(mem).Recent(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 6)
	for i, r := range got {
		assert.Equal(t, ids[8-i], r.ID)
	}
}

func TestFilter(t *testing.T) {
	mem := backend.NewMemory()
	now := time.Now()
	seedReport(t, mem, models.StatusReported, now)
	seedReport(t, mem, models.StatusInProgress, now.Add(time.Second))
	seedReport(t, mem, models.StatusResolved, now.Add(2*time.Second))
	seedReport(t, mem, models.StatusResolved, now.Add(3*time.Second))
	lister := NewLister(mem)
	ctx := context.Background()

	all, err := lister.Filter(ctx, "all")
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.True(t, all[0].CreatedAt.After(all[3].CreatedAt))

	resolved, err := lister.Filter(ctx, "resolved")
	require.NoError(t, err)
	assert.Len(t, resolved, 2)

	inProgress, err := lister.Filter(ctx, "in-progress")
	require.NoError(t, err)
	assert.Len(t, inProgress, 1)

	_, err = lister.Filter(ctx, "closed")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestAll(t *testing.T) {
	mem := backend.NewMemory()
	for i := 0; i < 8; i++ {
		seedReport(t, mem, models.StatusReported, time.Now().Add(time.Duration(i)*time.Minute))
	}
	got, err := NewLister(mem).All(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 8)
}
