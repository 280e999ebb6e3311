package models

import (
	"errors"
	"math"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5

	DefaultPlanTitle = "Untitled plan"
)

// ErrInvalidRating is returned for ratings that cannot be clamped (NaN, ±Inf).
var ErrInvalidRating = errors.New("rating must be a finite number")

// SharedPlan is a plan a user has published for others to rate.
type SharedPlan struct {
	ID         string                 `json:"id" firestore:"-"`
	OwnerID    string                 `json:"ownerId" firestore:"ownerId"`
	OwnerName  string                 `json:"ownerName,omitempty" firestore:"ownerName,omitempty"`
	OwnerEmail string                 `json:"ownerEmail,omitempty" firestore:"ownerEmail,omitempty"`
	Title      string                 `json:"title" firestore:"title"`
	Payload    map[string]interface{} `json:"payload,omitempty" firestore:"payload,omitempty"`
	Ratings    map[string]int         `json:"ratings" firestore:"ratings"`
	CreatedAt  time.Time              `json:"createdAt" firestore:"createdAt"`
}

// PlanStats is a shared plan together with the figures derived from its ratings.
type PlanStats struct {
	*SharedPlan
	Average float64 `json:"avg"`
	Count   int     `json:"count"`
}

// ClampRating rounds a raw rating half away from zero and clamps it into [MinRating, MaxRating].
func ClampRating(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidRating
	}
	r := math.Round(v)
	if r < MinRating {
		r = MinRating
	}
	if r > MaxRating {
		r = MaxRating
	}
	return int(r), nil
}

// Stats recomputes the average and count from the ratings currently stored on the plan.
func (p *SharedPlan) Stats() PlanStats {
	stats := PlanStats{SharedPlan: p}
	for _, v := range p.Ratings {
		stats.Average += float64(v)
		stats.Count++
	}
	if stats.Count > 0 {
		stats.Average /= float64(stats.Count)
	}
	return stats
}
