package database

import (
	"context"

	"gator-commons/internal/models"
	"gator-commons/internal/utils"
)

func (s *Store) CreateGuestbookEntry(ctx context.Context, entry *models.GuestbookEntry) error {
	query := `
		INSERT INTO guestbook_entries (id, author_name, message, organization, email, is_email_public, created_at)
		VALUES (:id, :author_name, :message, :organization, :email, :is_email_public, :created_at)`

	if _, err := s.DB.NamedExecContext(ctx, query, entry); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to save guestbook entry", err)
	}
	return nil
}

// ListGuestbookEntries returns the most recent entries, newest first. Emails are returned
// as stored; masking is up to the caller.
func (s *Store) ListGuestbookEntries(ctx context.Context, limit int) ([]*models.GuestbookEntry, error) {
	query := s.DB.Rebind(`
		SELECT id, author_name, message, organization, email, is_email_public, created_at
		FROM guestbook_entries
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)

	entries := make([]*models.GuestbookEntry, 0, limit)
	if err := s.DB.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query guestbook entries", err)
	}
	return entries, nil
}

func (s *Store) CountGuestbookEntries(ctx context.Context) (int, error) {
	var count int
	if err := s.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM guestbook_entries`); err != nil {
		return 0, utils.NewAppError(utils.ErrDatabase, "failed to count guestbook entries", err)
	}
	return count, nil
}
