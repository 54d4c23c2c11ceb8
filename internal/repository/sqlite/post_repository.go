package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"social-api/internal/domain"
	"social-api/internal/repository"
)

const createPostsTable = `
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	body TEXT NOT NULL,
	user_id INTEGER NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
);
`

// selectPostsWithLikes counts likes per post. The outer join keeps posts
// without likes in the result with a count of zero.
const selectPostsWithLikes = `
SELECT p.id, p.body, p.user_id, COUNT(l.id) AS likes
FROM posts p
LEFT JOIN likes l ON l.post_id = p.id
`

// Ids are assigned monotonically, so id order is creation order. Equal like
// counts fall back to the oldest post first.
var postOrderings = map[domain.PostSorting]string{
	domain.SortNew:       `ORDER BY p.id DESC`,
	domain.SortOld:       `ORDER BY p.id ASC`,
	domain.SortMostLikes: `ORDER BY likes DESC, p.id ASC`,
}

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) repository.PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPostsTable); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO posts (body, user_id)
VALUES (?, ?)`,
		post.Body,
		post.UserID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("post last insert id: %w", err)
	}
	post.ID = id
	return id, nil
}

func (r *PostRepository) Get(ctx context.Context, id int64) (*domain.Post, error) {
	var post domain.Post
	err := r.db.QueryRowContext(ctx, `
SELECT id, body, user_id
FROM posts
WHERE id = ?`, id).Scan(&post.ID, &post.Body, &post.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %d %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return &post, nil
}

func (r *PostRepository) GetWithLikes(ctx context.Context, id int64) (*domain.PostWithLikes, error) {
	row := r.db.QueryRowContext(ctx, selectPostsWithLikes+`
WHERE p.id = ?
GROUP BY p.id`, id)

	post, err := scanPostWithLikes(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %d %w", id, repository.ErrNotFound)
		}
		return nil, err
	}
	return post, nil
}

// ListWithLikes returns every post with its like count in the order selected
// by sorting.
func (r *PostRepository) ListWithLikes(ctx context.Context, sorting domain.PostSorting) ([]domain.PostWithLikes, error) {
	orderBy, ok := postOrderings[sorting]
	if !ok {
		return nil, fmt.Errorf("%w: %q", repository.ErrUnsupportedSorting, sorting)
	}

	rows, err := r.db.QueryContext(ctx, selectPostsWithLikes+`
GROUP BY p.id
`+orderBy)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]domain.PostWithLikes, 0)
	for rows.Next() {
		post, err := scanPostWithLikes(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

func scanPostWithLikes(row interface {
	Scan(dest ...any) error
}) (*domain.PostWithLikes, error) {
	var post domain.PostWithLikes
	if err := row.Scan(&post.ID, &post.Body, &post.UserID, &post.Likes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return &post, nil
}
