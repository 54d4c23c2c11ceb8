package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"social-api/internal/domain"
	"social-api/internal/repository"
)

// No uniqueness on (post_id, user_id): repeated likes are separate rows.
const createLikesTable = `
CREATE TABLE IF NOT EXISTS likes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	FOREIGN KEY(post_id) REFERENCES posts(id),
	FOREIGN KEY(user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_likes_post_id ON likes(post_id);
`

type LikeRepository struct {
	db *sql.DB
}

func NewLikeRepository(db *sql.DB) repository.LikeRepository {
	return &LikeRepository{db: db}
}

func (r *LikeRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createLikesTable); err != nil {
		return fmt.Errorf("create likes table: %w", err)
	}
	return nil
}

func (r *LikeRepository) Create(ctx context.Context, like *domain.Like) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO likes (post_id, user_id)
VALUES (?, ?)`,
		like.PostID,
		like.UserID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert like: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("like last insert id: %w", err)
	}
	like.ID = id
	return id, nil
}
