package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SessionStorage persists autofill session audit records
type SessionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSessionStorage creates a new SessionStorage instance
func NewSessionStorage(db *BadgerDB, logger arbor.ILogger) *SessionStorage {
	return &SessionStorage{
		db:     db,
		logger: logger,
	}
}

// SaveSession upserts a session record
func (s *SessionStorage) SaveSession(session *models.AutofillSession) error {
	if session.ID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.db.Store().Upsert(session.ID, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession returns one session by ID
func (s *SessionStorage) GetSession(id string) (*models.AutofillSession, error) {
	var session models.AutofillSession
	if err := s.db.Store().Get(id, &session); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// ListSessions returns sessions newest first, optionally limited
func (s *SessionStorage) ListSessions(limit int) ([]models.AutofillSession, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("StartedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var sessions []models.AutofillSession
	if err := s.db.Store().Find(&sessions, query); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}
