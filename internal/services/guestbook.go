package services

import (
	"context"

	"gator-commons/internal/database"
	"gator-commons/internal/models"

	"go.uber.org/zap"
)

const (
	DefaultGuestbookLimit = 20
	MaxGuestbookLimit     = 100
)

// GuestbookService is an append-only board open to anonymous callers.
type GuestbookService struct {
	store        database.ContentStore
	defaultLimit int
	logger       *zap.Logger
}

func NewGuestbookService(store database.ContentStore, defaultLimit int, logger *zap.Logger) *GuestbookService {
	if defaultLimit < 1 || defaultLimit > MaxGuestbookLimit {
		defaultLimit = DefaultGuestbookLimit
	}
	return &GuestbookService{
		store:        store,
		defaultLimit: defaultLimit,
		logger:       logger.Named("guestbook"),
	}
}

func (s *GuestbookService) AddEntry(ctx context.Context, authorName, message, organization, email string, isEmailPublic bool) (*models.GuestbookEntry, error) {
	entry, err := models.NewGuestbookEntry(authorName, message, organization, email, isEmailPublic)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateGuestbookEntry(ctx, entry); err != nil {
		return nil, err
	}
	s.logger.Info("guestbook entry added", zap.Stringer("entry_id", entry.ID))
	return entry, nil
}

// ListEntries returns the newest entries with emails as stored. Callers that display
// entries must use GuestbookEntry.Masked.
func (s *GuestbookService) ListEntries(ctx context.Context, limit int) ([]*models.GuestbookEntry, error) {
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > MaxGuestbookLimit {
		limit = MaxGuestbookLimit
	}
	return s.store.ListGuestbookEntries(ctx, limit)
}

func (s *GuestbookService) CountEntries(ctx context.Context) (int, error) {
	return s.store.CountGuestbookEntries(ctx)
}
