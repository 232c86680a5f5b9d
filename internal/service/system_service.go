package service

import (
	"database/sql"

	"github.com/ameyrk/wealthledger/internal/database"
	"github.com/ameyrk/wealthledger/internal/version"
)

// SystemService answers liveness and build questions for the system
// endpoints.
type SystemService struct {
	db *sql.DB
}

func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{db: db}
}

// CheckHealth reports whether the database is reachable.
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns the build version string.
func (s *SystemService) CheckVersion() string {
	return version.Version
}
