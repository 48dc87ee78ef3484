package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// OracleAuditStorage persists a record of every oracle call for later review
type OracleAuditStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewOracleAuditStorage creates a new OracleAuditStorage instance
func NewOracleAuditStorage(db *BadgerDB, logger arbor.ILogger) *OracleAuditStorage {
	return &OracleAuditStorage{
		db:     db,
		logger: logger,
	}
}

// SaveAudit stores one audit record. Failures are logged, not propagated:
// auditing must never break a fill.
func (s *OracleAuditStorage) SaveAudit(audit *models.OracleAudit) {
	if audit.ID == "" {
		s.logger.Warn().Msg("Oracle audit record missing ID, skipped")
		return
	}
	if err := s.db.Store().Upsert(audit.ID, audit); err != nil {
		s.logger.Warn().Err(err).Str("id", audit.ID).Msg("Failed to save oracle audit record")
	}
}

// ListAudits returns audit records newest first, optionally filtered by session
func (s *OracleAuditStorage) ListAudits(sessionID string, limit int) ([]models.OracleAudit, error) {
	query := badgerhold.Where("ID").Ne("")
	if sessionID != "" {
		query = query.And("SessionID").Eq(sessionID)
	}
	query = query.SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var audits []models.OracleAudit
	if err := s.db.Store().Find(&audits, query); err != nil {
		return nil, fmt.Errorf("failed to list oracle audits: %w", err)
	}
	return audits, nil
}
