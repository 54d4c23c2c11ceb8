package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"social-api/internal/domain"
	"social-api/internal/repository"
)

// PostService coordinates posts, comments and likes. Every write is
// attributed to the authenticated caller.
type PostService interface {
	CreatePost(ctx context.Context, caller *domain.User, body string) (*domain.Post, error)
	ListPosts(ctx context.Context, sorting domain.PostSorting) ([]domain.PostWithLikes, error)
	GetPostWithComments(ctx context.Context, postID int64) (*domain.PostWithComments, error)
	CreateComment(ctx context.Context, caller *domain.User, postID int64, body string) (*domain.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]domain.Comment, error)
	LikePost(ctx context.Context, caller *domain.User, postID int64) (*domain.Like, error)
}

type postService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	likes    repository.LikeRepository
	log      logrus.FieldLogger
}

func NewPostService(posts repository.PostRepository, comments repository.CommentRepository, likes repository.LikeRepository, log logrus.FieldLogger) PostService {
	return &postService{
		posts:    posts,
		comments: comments,
		likes:    likes,
		log:      log,
	}
}

func (s *postService) CreatePost(ctx context.Context, caller *domain.User, body string) (*domain.Post, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	s.log.WithField("user_id", caller.ID).Debug("creating post")

	post := &domain.Post{Body: body, UserID: caller.ID}
	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) ListPosts(ctx context.Context, sorting domain.PostSorting) ([]domain.PostWithLikes, error) {
	if !sorting.Valid() {
		return nil, ErrUnsupportedSorting
	}
	s.log.WithField("sorting", sorting).Debug("listing posts")

	posts, err := s.posts.ListWithLikes(ctx, sorting)
	if err != nil {
		if errors.Is(err, repository.ErrUnsupportedSorting) {
			return nil, ErrUnsupportedSorting
		}
		return nil, err
	}
	return posts, nil
}

func (s *postService) GetPostWithComments(ctx context.Context, postID int64) (*domain.PostWithComments, error) {
	s.log.WithField("post_id", postID).Debug("getting post and its comments")

	post, err := s.posts.GetWithLikes(ctx, postID)
	if err != nil {
		return nil, mapPostErr(err)
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &domain.PostWithComments{Post: *post, Comments: comments}, nil
}

func (s *postService) CreateComment(ctx context.Context, caller *domain.User, postID int64, body string) (*domain.Comment, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	s.log.WithFields(logrus.Fields{"user_id": caller.ID, "post_id": postID}).Debug("creating comment")

	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, mapPostErr(err)
	}

	comment := &domain.Comment{Body: body, PostID: postID, UserID: caller.ID}
	if _, err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *postService) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	s.log.WithField("post_id", postID).Debug("getting comments on post")
	return s.comments.ListByPost(ctx, postID)
}

func (s *postService) LikePost(ctx context.Context, caller *domain.User, postID int64) (*domain.Like, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	s.log.WithFields(logrus.Fields{"user_id": caller.ID, "post_id": postID}).Debug("liking post")

	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, mapPostErr(err)
	}

	like := &domain.Like{PostID: postID, UserID: caller.ID}
	if _, err := s.likes.Create(ctx, like); err != nil {
		return nil, err
	}
	return like, nil
}

func mapPostErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPostNotFound
	}
	return err
}
