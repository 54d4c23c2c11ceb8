package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"social-api/internal/repository"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Open opens (or creates) a sqlite database at the given path and ensures directories exist.
func Open(path string) (*sql.DB, error) {
	if path != MemoryPath && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// a single connection serializes writers and keeps :memory: databases alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return db, nil
}

// Store groups the repositories sharing one database handle.
type Store struct {
	Users    repository.UserRepository
	Posts    repository.PostRepository
	Comments repository.CommentRepository
	Likes    repository.LikeRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		Users:    NewUserRepository(db),
		Posts:    NewPostRepository(db),
		Comments: NewCommentRepository(db),
		Likes:    NewLikeRepository(db),
	}
}

// Init creates all tables. Users and posts come first so foreign keys resolve.
func (s *Store) Init(ctx context.Context) error {
	if err := s.Users.Init(ctx); err != nil {
		return fmt.Errorf("init user repository: %w", err)
	}
	if err := s.Posts.Init(ctx); err != nil {
		return fmt.Errorf("init post repository: %w", err)
	}
	if err := s.Comments.Init(ctx); err != nil {
		return fmt.Errorf("init comment repository: %w", err)
	}
	if err := s.Likes.Init(ctx); err != nil {
		return fmt.Errorf("init like repository: %w", err)
	}
	return nil
}
