// Package audit appends and lists the audit trail of mutating operations
// against roles, permissions and associations. Entries are written exactly
// once and never updated or deleted; a failed write must never roll back or
// mask the business mutation that triggered it, so callers log the returned
// error and continue.
package audit

import (
	"encoding/json"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"github.com/accessd/accessd/internal/db/models"
)

// Actions recorded by the policy mutations.
const (
	ActionCreateRole        = "CREATE_ROLE"
	ActionUpdateRole        = "UPDATE_ROLE"
	ActionDeleteRole        = "DELETE_ROLE"
	ActionCreatePermission  = "CREATE_PERMISSION"
	ActionDeletePermission  = "DELETE_PERMISSION"
	ActionAssignPermissions = "ASSIGN_PERMISSIONS"
	ActionAssignUserRoles   = "ASSIGN_USER_ROLES"
)

// Entity types referenced by audit entries.
const (
	EntityRole       = "role"
	EntityPermission = "permission"
	EntityUser       = "user"
)

// DefaultLimit caps list queries when the caller passes no limit.
const DefaultLimit = 50

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")

	// failures counts audit entries that could not be written.
	failures prometheus.Counter //nolint:gochecknoglobals
)

func failureCounter() prometheus.Counter {
	if failures == nil {
		failures = promauto.NewCounter(prometheus.CounterOpts{
			Name: "audit_log_failures_total",
			Help: "Number of audit log entries that could not be written.",
		})
	}

	return failures
}

// Entry describes one mutation to record.
type Entry struct {
	ActorID     *uint64
	Action      string
	EntityType  string
	EntityID    string
	Description string
	Changes     any // serialized to JSON when non-nil
	IPAddress   string
	UserAgent   string
}

// Record appends one audit row. On failure the prometheus failure counter is
// incremented and the error returned; the caller reports it and moves on.
func Record(db *gorm.DB, e Entry) (*models.AuditLog, error) {
	if db == nil {
		failureCounter().Inc()
		return nil, ErrDBNil
	}

	var changes string

	if e.Changes != nil {
		out, err := json.Marshal(e.Changes)
		if err != nil {
			failureCounter().Inc()
			return nil, err
		}

		changes = string(out)
	}

	row := &models.AuditLog{
		UserID:      e.ActorID,
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Description: e.Description,
		Changes:     changes,
		IPAddress:   e.IPAddress,
		UserAgent:   e.UserAgent,
	}

	if err := db.Create(row).Error; err != nil {
		failureCounter().Inc()
		return nil, err
	}

	return row, nil
}

// ListRecent returns audit entries ordered by creation time descending.
func ListRecent(db *gorm.DB, limit, offset int) ([]models.AuditLog, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	var rows []models.AuditLog
	result := db.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

// ListForUser returns the acting user's audit entries, newest first.
func ListForUser(db *gorm.DB, userID uint64, limit int) ([]models.AuditLog, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	var rows []models.AuditLog
	result := db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Limit(limit).Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

// ListForEntity returns all audit entries touching one entity, newest first.
func ListForEntity(db *gorm.DB, entityType, entityID string) ([]models.AuditLog, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rows []models.AuditLog
	result := db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC, id DESC").Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}
