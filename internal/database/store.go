package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gator-commons/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// CredentialStore holds user records for sign-up and login.
type CredentialStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// ContentStore holds posts, comments, likes and guestbook entries. Operations that touch
// a relation row and a post counter commit both in one transaction.
type ContentStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, postID uuid.UUID) (*models.Post, error)
	CountPosts(ctx context.Context) (int, error)
	ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, error)
	AdjustCounter(ctx context.Context, postID uuid.UUID, field models.CounterField, delta int) (*models.Post, error)

	AddComment(ctx context.Context, comment *models.Comment) (*models.Post, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error)

	ToggleLike(ctx context.Context, postID, userID uuid.UUID) (*models.LikeState, error)
	HasLike(ctx context.Context, postID, userID uuid.UUID) (bool, error)

	CreateGuestbookEntry(ctx context.Context, entry *models.GuestbookEntry) error
	ListGuestbookEntries(ctx context.Context, limit int) ([]*models.GuestbookEntry, error)
	CountGuestbookEntries(ctx context.Context) (int, error)
}

// DBAdapter is everything the engine needs from the relational store.
type DBAdapter interface {
	CredentialStore
	ContentStore

	Ping(ctx context.Context) error
	InitializeTables(ctx context.Context) error
	RecountCounters(ctx context.Context) (int, error)
	Close(ctx context.Context) error
}

// Store implements DBAdapter on sqlx for both postgres and sqlite.
type Store struct {
	DB     *sqlx.DB
	driver string
	logger *zap.Logger
}

var _ DBAdapter = (*Store)(nil)

// NewStore connects with the given driver ("postgres" or "sqlite") and verifies the connection.
func NewStore(driver, dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// One connection: sqlite has a single writer, and an in-memory
		// database only lives as long as its connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	logger.Info("connected to database", zap.String("driver", driver))

	return &Store{
		DB:     db,
		driver: driver,
		logger: logger.Named("store"),
	}, nil
}

// NewPostgresDB creates a store backed by PostgreSQL.
func NewPostgresDB(connectionString string, logger *zap.Logger) (*Store, error) {
	return NewStore(DriverPostgres, connectionString, logger)
}

// NewSQLiteDB creates a store backed by an sqlite file, or ":memory:". Times are written
// in a fixed layout so created_at sorts correctly as text.
func NewSQLiteDB(path string, logger *zap.Logger) (*Store, error) {
	if !strings.Contains(path, "_time_format=") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + "_time_format=sqlite"
	}
	return NewStore(DriverSQLite, path, logger)
}

func (s *Store) Driver() string {
	return s.driver
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close closes the database connection
func (s *Store) Close(ctx context.Context) error {
	s.logger.Info("closing database connection")
	return s.DB.Close()
}

// forUpdate is appended to row reads that must lock the row for the rest of the transaction.
// sqlite serializes writers on its own and has no row locks.
func (s *Store) forUpdate() string {
	if s.driver == DriverPostgres {
		return " FOR UPDATE"
	}
	return ""
}
