package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/models"
)

const (
	signupWindowDays = 30
	dayLayout        = "2006-01-02"
)

// metricsService implements the MetricsService interface.
type metricsService struct {
	identity IdentityProvider
	now      func() time.Time
	logger   *zap.Logger
}

// NewMetricsService creates a new MetricsService. A nil clock defaults to time.Now.
func NewMetricsService(identity IdentityProvider, clock func() time.Time, logger *zap.Logger) MetricsService {
	if clock == nil {
		clock = time.Now
	}
	return &metricsService{identity: identity, now: clock, logger: logger}
}

// UserMetrics counts every identity and the ones holding the admin flag.
func (s *metricsService) UserMetrics(ctx context.Context) (*models.UserMetrics, error) {
	metrics := &models.UserMetrics{}
	err := s.forEachUser(ctx, func(u *models.UserRecord) {
		metrics.TotalUsers++
		if u.Admin {
			metrics.AdminUsers++
		}
	})
	if err != nil {
		return nil, err
	}
	return metrics, nil
}

// DailySignups buckets creation times into the last 30 UTC days, today included.
func (s *metricsService) DailySignups(ctx context.Context) (*models.DailySignups, error) {
	today := truncateUTCDay(s.now())
	start := today.AddDate(0, 0, -(signupWindowDays - 1))

	series := make([]models.DayCount, signupWindowDays)
	index := make(map[string]int, signupWindowDays)
	for i := range series {
		day := start.AddDate(0, 0, i).Format(dayLayout)
		series[i] = models.DayCount{Date: day}
		index[day] = i
	}

	err := s.forEachUser(ctx, func(u *models.UserRecord) {
		if u.CreatedAt == nil {
			return
		}
		if i, ok := index[truncateUTCDay(*u.CreatedAt).Format(dayLayout)]; ok {
			series[i].Count++
		}
	})
	if err != nil {
		return nil, err
	}

	return &models.DailySignups{
		Range:  models.DateRange{Start: start.Format(dayLayout), End: today.Format(dayLayout)},
		Series: series,
	}, nil
}

// forEachUser pages sequentially through every identity. Any page error aborts the walk.
func (s *metricsService) forEachUser(ctx context.Context, fn func(*models.UserRecord)) error {
	token := ""
	pages := 0
	for {
		page, err := s.identity.ListUsers(ctx, MaxPageSize, token)
		if err != nil {
			s.logger.Warn("User listing aborted", zap.Int("pages_read", pages), zap.Error(err))
			return err
		}
		pages++
		for _, u := range page.Users {
			fn(u)
		}
		if page.NextPageToken == "" {
			return nil
		}
		token = page.NextPageToken
	}
}

func truncateUTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
