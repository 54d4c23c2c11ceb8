package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-api/internal/domain"
	"social-api/internal/repository"
	"social-api/internal/repository/sqlite"
)

type mockPostRepository struct {
	mock.Mock
}

func (m *mockPostRepository) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockPostRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	args := m.Called(ctx, post)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPostRepository) Get(ctx context.Context, id int64) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if post := args.Get(0); post != nil {
		return post.(*domain.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPostRepository) GetWithLikes(ctx context.Context, id int64) (*domain.PostWithLikes, error) {
	args := m.Called(ctx, id)
	if post := args.Get(0); post != nil {
		return post.(*domain.PostWithLikes), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPostRepository) ListWithLikes(ctx context.Context, sorting domain.PostSorting) ([]domain.PostWithLikes, error) {
	args := m.Called(ctx, sorting)
	if posts := args.Get(0); posts != nil {
		return posts.([]domain.PostWithLikes), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCommentRepository struct {
	mock.Mock
}

func (m *mockCommentRepository) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *domain.Comment) (int64, error) {
	args := m.Called(ctx, comment)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCommentRepository) ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error) {
	args := m.Called(ctx, postID)
	if comments := args.Get(0); comments != nil {
		return comments.([]domain.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLikeRepository struct {
	mock.Mock
}

func (m *mockLikeRepository) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockLikeRepository) Create(ctx context.Context, like *domain.Like) (int64, error) {
	args := m.Called(ctx, like)
	return args.Get(0).(int64), args.Error(1)
}

var (
	_ repository.PostRepository    = (*mockPostRepository)(nil)
	_ repository.CommentRepository = (*mockCommentRepository)(nil)
	_ repository.LikeRepository    = (*mockLikeRepository)(nil)
)

func postNotFound(id int64) error {
	return fmt.Errorf("post %d %w", id, repository.ErrNotFound)
}

func TestPostService_WritesRequireExistingPost(t *testing.T) {
	ctx := context.Background()
	caller := &domain.User{ID: 3, Email: "u@x.com"}

	t.Run("comment on missing post", func(t *testing.T) {
		posts, comments, likes := new(mockPostRepository), new(mockCommentRepository), new(mockLikeRepository)
		svc := NewPostService(posts, comments, likes, testLogger())
		posts.On("Get", mock.Anything, int64(42)).Return(nil, postNotFound(42))

		_, err := svc.CreateComment(ctx, caller, 42, "hi")
		assert.ErrorIs(t, err, ErrPostNotFound)
		comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("like on missing post", func(t *testing.T) {
		posts, comments, likes := new(mockPostRepository), new(mockCommentRepository), new(mockLikeRepository)
		svc := NewPostService(posts, comments, likes, testLogger())
		posts.On("Get", mock.Anything, int64(42)).Return(nil, postNotFound(42))

		_, err := svc.LikePost(ctx, caller, 42)
		assert.ErrorIs(t, err, ErrPostNotFound)
		likes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure is not reported as not found", func(t *testing.T) {
		posts, comments, likes := new(mockPostRepository), new(mockCommentRepository), new(mockLikeRepository)
		svc := NewPostService(posts, comments, likes, testLogger())
		posts.On("Get", mock.Anything, int64(42)).Return(nil, assert.AnError)

		_, err := svc.CreateComment(ctx, caller, 42, "hi")
		assert.ErrorIs(t, err, assert.AnError)
		assert.NotErrorIs(t, err, ErrPostNotFound)
	})

	t.Run("comment attributed to caller", func(t *testing.T) {
		posts, comments, likes := new(mockPostRepository), new(mockCommentRepository), new(mockLikeRepository)
		svc := NewPostService(posts, comments, likes, testLogger())
		posts.On("Get", mock.Anything, int64(1)).Return(&domain.Post{ID: 1, UserID: 9}, nil)
		comments.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Comment) bool {
			return c.UserID == caller.ID && c.PostID == 1 && c.Body == "hi"
		})).Return(int64(5), nil)

		_, err := svc.CreateComment(ctx, caller, 1, "hi")
		require.NoError(t, err)
		comments.AssertExpectations(t)
	})
}

func TestPostService_RequiresCaller(t *testing.T) {
	ctx := context.Background()
	posts, comments, likes := new(mockPostRepository), new(mockCommentRepository), new(mockLikeRepository)
	svc := NewPostService(posts, comments, likes, testLogger())

	_, err := svc.CreatePost(ctx, nil, "x")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.CreateComment(ctx, nil, 1, "x")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.LikePost(ctx, nil, 1)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPostService_ListPosts_UnknownSorting(t *testing.T) {
	posts := new(mockPostRepository)
	svc := NewPostService(posts, new(mockCommentRepository), new(mockLikeRepository), testLogger())

	for _, sorting := range []domain.PostSorting{"", "random", "NEW"} {
		_, err := svc.ListPosts(context.Background(), sorting)
		assert.ErrorIs(t, err, ErrUnsupportedSorting)
	}
	posts.AssertNotCalled(t, "ListWithLikes", mock.Anything, mock.Anything)
}

func TestPostService_Ranking(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := sqlite.NewStore(db)
	require.NoError(t, store.Init(ctx))

	caller := &domain.User{Email: "u@x.com", PasswordHash: "hash"}
	_, err = store.Users.Create(ctx, caller)
	require.NoError(t, err)

	svc := NewPostService(store.Posts, store.Comments, store.Likes, testLogger())

	a, err := svc.CreatePost(ctx, caller, "A")
	require.NoError(t, err)
	b, err := svc.CreatePost(ctx, caller, "B")
	require.NoError(t, err)
	assert.Equal(t, caller.ID, a.UserID)

	order := func(sorting domain.PostSorting) []int64 {
		posts, err := svc.ListPosts(ctx, sorting)
		require.NoError(t, err)
		ids := make([]int64, len(posts))
		for i := range posts {
			ids[i] = posts[i].ID
		}
		return ids
	}

	assert.Equal(t, []int64{b.ID, a.ID}, order(domain.SortNew))
	assert.Equal(t, []int64{a.ID, b.ID}, order(domain.SortOld))

	_, err = svc.LikePost(ctx, caller, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, a.ID}, order(domain.SortMostLikes))

	posts, err := svc.ListPosts(ctx, domain.SortMostLikes)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, int64(1), posts[0].Likes)
	assert.Equal(t, int64(0), posts[1].Likes)

	_, err = svc.CreateComment(ctx, caller, a.ID, "nice")
	require.NoError(t, err)

	details, err := svc.GetPostWithComments(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", details.Post.Body)
	require.Len(t, details.Comments, 1)
	assert.Equal(t, caller.ID, details.Comments[0].UserID)

	_, err = svc.GetPostWithComments(ctx, b.ID+10)
	assert.ErrorIs(t, err, ErrPostNotFound)

	comments, err := svc.ListComments(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
