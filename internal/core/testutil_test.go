package core_test

import (
	"time"

	"github.com/luminher/luminher-api/internal/identity"
	"github.com/luminher/luminher-api/internal/models"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func caller(uid string) *models.Caller {
	return &models.Caller{UID: uid, Claims: map[string]interface{}{}}
}

// seeded returns a provider holding one admin ("root") and one regular user ("alice").
func seeded() *identity.MemoryProvider {
	p := identity.NewMemoryProvider()
	p.Add(models.UserRecord{UID: "root", Email: "root@admin.com", Admin: true}, nil)
	p.Add(models.UserRecord{UID: "alice", Email: "alice@example.com"}, nil)
	return p
}
