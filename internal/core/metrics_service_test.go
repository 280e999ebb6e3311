package core_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/core"
	"github.com/luminher/luminher-api/internal/identity"
	"github.com/luminher/luminher-api/internal/models"
)

func fixedClock(s string) func() time.Time {
	t := *ts(s)
	return func() time.Time { return t }
}

func TestUserMetrics(t *testing.T) {
	idp := identity.NewMemoryProvider()
	for i := 0; i < 2503; i++ {
		idp.Add(models.UserRecord{UID: fmt.Sprintf("u%04d", i), Admin: i%100 == 0}, nil)
	}
	svc := core.NewMetricsService(idp, nil, zap.NewNop())

	m, err := svc.UserMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2503, m.TotalUsers)
	assert.Equal(t, 26, m.AdminUsers)
}

func TestDailySignups(t *testing.T) {
	idp := identity.NewMemoryProvider()
	add := func(uid, created string) {
		idp.Add(models.UserRecord{UID: uid, CreatedAt: ts(created)}, nil)
	}
	add("late-jan1", "2024-01-01T23:59:59Z")
	add("early-jan2", "2024-01-02T00:00:01Z")
	add("today", "2024-01-20T08:00:00Z")
	add("first-day", "2023-12-22T00:00:00Z")
	add("too-old", "2023-12-21T23:59:59Z")
	add("future", "2024-01-21T00:00:00Z")
	idp.Add(models.UserRecord{UID: "no-metadata"}, nil)

	svc := core.NewMetricsService(idp, fixedClock("2024-01-20T15:04:05Z"), zap.NewNop())
	got, err := svc.DailySignups(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.DateRange{Start: "2023-12-22", End: "2024-01-20"}, got.Range)
	require.Len(t, got.Series, 30)
	assert.Equal(t, "2023-12-22", got.Series[0].Date)
	assert.Equal(t, "2024-01-20", got.Series[29].Date)
	for i := 1; i < len(got.Series); i++ {
		assert.Less(t, got.Series[i-1].Date, got.Series[i].Date)
	}

	counts := map[string]int{}
	total := 0
	for _, d := range got.Series {
		counts[d.Date] = d.Count
		total += d.Count
	}
	assert.Equal(t, 1, counts["2024-01-01"])
	assert.Equal(t, 1, counts["2024-01-02"])
	assert.Equal(t, 1, counts["2024-01-20"])
	assert.Equal(t, 1, counts["2023-12-22"])
	assert.Equal(t, 4, total, "out-of-range signups are ignored")
}

func TestDailySignups_BucketsInUTC(t *testing.T) {
	idp := identity.NewMemoryProvider()
	// 23:30 in New York on Jan 1 is already Jan 2 in UTC.
	ny := time.FixedZone("EST", -5*3600)
	created := time.Date(2024, 1, 1, 23, 30, 0, 0, ny)
	idp.Add(models.UserRecord{UID: "ny", CreatedAt: &created}, nil)

	svc := core.NewMetricsService(idp, fixedClock("2024-01-10T00:00:00Z"), zap.NewNop())
	got, err := svc.DailySignups(context.Background())
	require.NoError(t, err)
	for _, d := range got.Series {
		if d.Date == "2024-01-02" {
			assert.Equal(t, 1, d.Count)
		} else {
			assert.Zero(t, d.Count, d.Date)
		}
	}
}

func TestMetrics_AbortOnProviderError(t *testing.T) {
	idp := identity.NewMemoryProvider()
	for i := 0; i < core.MaxPageSize+1; i++ {
		idp.Add(models.UserRecord{UID: fmt.Sprintf("u%04d", i)}, nil)
	}
	idp.ListErr = errors.New("quota exceeded")
	svc := core.NewMetricsService(idp, nil, zap.NewNop())

	_, err := svc.UserMetrics(context.Background())
	var up *core.UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Equal(t, 503, up.Status)

	_, err = svc.DailySignups(context.Background())
	assert.Error(t, err)
}
