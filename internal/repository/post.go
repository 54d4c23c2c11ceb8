package repository

import (
	"context"
	"errors"

	"social-api/internal/domain"
)

// ErrUnsupportedSorting is returned for a sort policy the store does not know.
var ErrUnsupportedSorting = errors.New("unsupported sorting")

// PostRepository persists posts and answers ranked listing queries.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	GetWithLikes(ctx context.Context, id int64) (*domain.PostWithLikes, error)
	ListWithLikes(ctx context.Context, sorting domain.PostSorting) ([]domain.PostWithLikes, error)
}

// CommentRepository persists comments on posts.
type CommentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, comment *domain.Comment) (int64, error)
	ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error)
}

// LikeRepository persists post likes.
type LikeRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, like *domain.Like) (int64, error)
}
