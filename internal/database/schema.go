package database

import (
	"context"
	"fmt"
)

type tableDDL struct {
	name     string
	postgres string
	sqlite   string
}

var tables = []tableDDL{
	{
		name: "users",
		postgres: `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			secret_hash VARCHAR(100) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`,
		sqlite: `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			secret_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
	},
	{
		name: "posts",
		postgres: `
		CREATE TABLE IF NOT EXISTS posts (
			id UUID PRIMARY KEY,
			title VARCHAR(300) NOT NULL,
			content TEXT NOT NULL,
			author_id UUID NOT NULL REFERENCES users(id),
			author_name VARCHAR(50) NOT NULL,
			likes_count INTEGER NOT NULL DEFAULT 0 CHECK (likes_count >= 0),
			comments_count INTEGER NOT NULL DEFAULT 0 CHECK (comments_count >= 0),
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`,
		sqlite: `
		CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			author_id TEXT NOT NULL,
			author_name TEXT NOT NULL,
			likes_count INTEGER NOT NULL DEFAULT 0 CHECK (likes_count >= 0),
			comments_count INTEGER NOT NULL DEFAULT 0 CHECK (comments_count >= 0),
			created_at TIMESTAMP NOT NULL
		)`,
	},
	{
		name: "comments",
		postgres: `
		CREATE TABLE IF NOT EXISTS comments (
			id UUID PRIMARY KEY,
			post_id UUID NOT NULL REFERENCES posts(id),
			author_id UUID NOT NULL REFERENCES users(id),
			author_name VARCHAR(50) NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`,
		sqlite: `
		CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			post_id TEXT NOT NULL REFERENCES posts(id),
			author_id TEXT NOT NULL,
			author_name TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
	},
	{
		name: "likes",
		postgres: `
		CREATE TABLE IF NOT EXISTS likes (
			id UUID PRIMARY KEY,
			post_id UUID NOT NULL REFERENCES posts(id),
			user_id UUID NOT NULL REFERENCES users(id),
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			UNIQUE(post_id, user_id)
		)`,
		sqlite: `
		CREATE TABLE IF NOT EXISTS likes (
			id TEXT PRIMARY KEY,
			post_id TEXT NOT NULL REFERENCES posts(id),
			user_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE(post_id, user_id)
		)`,
	},
	{
		name: "guestbook_entries",
		postgres: `
		CREATE TABLE IF NOT EXISTS guestbook_entries (
			id UUID PRIMARY KEY,
			author_name VARCHAR(100) NOT NULL,
			message TEXT NOT NULL,
			organization TEXT,
			email TEXT,
			is_email_public BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`,
		sqlite: `
		CREATE TABLE IF NOT EXISTS guestbook_entries (
			id TEXT PRIMARY KEY,
			author_name TEXT NOT NULL,
			message TEXT NOT NULL,
			organization TEXT,
			email TEXT,
			is_email_public BOOLEAN NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
	},
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments (post_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_guestbook_created_at ON guestbook_entries (created_at DESC, id DESC)`,
}

// InitializeTables creates all necessary tables if they don't exist
func (s *Store) InitializeTables(ctx context.Context) error {
	for _, table := range tables {
		ddl := table.postgres
		if s.driver == DriverSQLite {
			ddl = table.sqlite
		}
		if _, err := s.DB.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for _, index := range indexes {
		if _, err := s.DB.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	s.logger.Info("database tables initialized")
	return nil
}
