package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"social-api/internal/domain"
	"social-api/internal/metrics"
	"social-api/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users service.UserService
	posts service.PostService
	log   logrus.FieldLogger
}

func NewHandler(users service.UserService, posts service.PostService, log logrus.FieldLogger) *Handler {
	return &Handler{
		users: users,
		posts: posts,
		log:   log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), requestIDMiddleware(), accessLogMiddleware(h.log))

	router.POST("/register", h.register)
	router.POST("/token", h.login)

	router.GET("/post", h.listPosts)
	router.GET("/post/:id", h.getPostWithComments)
	router.GET("/post/:id/comment", h.listComments)

	authed := router.Group("/", h.requireAuth())
	{
		authed.POST("/post", h.createPost)
		authed.POST("/comment", h.createComment)
		authed.POST("/like", h.likePost)
	}

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createPostRequest struct {
	Body string `json:"body" binding:"required"`
}

type createCommentRequest struct {
	Body   string `json:"body" binding:"required"`
	PostID int64  `json:"post_id" binding:"required"`
}

type likeRequest struct {
	PostID int64 `json:"post_id" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type PostResponse struct {
	ID     int64  `json:"id"`
	Body   string `json:"body"`
	UserID int64  `json:"user_id"`
}

type PostWithLikesResponse struct {
	PostResponse
	Likes int64 `json:"likes"`
}

type CommentResponse struct {
	ID     int64  `json:"id"`
	Body   string `json:"body"`
	PostID int64  `json:"post_id"`
	UserID int64  `json:"user_id"`
}

type LikeResponse struct {
	ID     int64 `json:"id"`
	PostID int64 `json:"post_id"`
	UserID int64 `json:"user_id"`
}

type PostWithCommentsResponse struct {
	Post     PostWithLikesResponse `json:"post"`
	Comments []CommentResponse     `json:"comments"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeValidationError(c, err)
		return
	}

	if _, err := h.users.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"detail": "User created."})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeValidationError(c, err)
		return
	}

	token, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metrics.IncrementAuthFailures("login")
		}
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeValidationError(c, err)
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), currentUser(c), req.Body)
	metrics.IncrementPostOperations("create_post", err == nil)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, postToResponse(*post))
}

func (h *Handler) listPosts(c *gin.Context) {
	sorting := domain.PostSorting(c.DefaultQuery("sorting", string(domain.SortNew)))

	posts, err := h.posts.ListPosts(c.Request.Context(), sorting)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]PostWithLikesResponse, len(posts))
	for i := range posts {
		resp[i] = postWithLikesToResponse(posts[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getPostWithComments(c *gin.Context) {
	id, ok := h.postIDParam(c)
	if !ok {
		return
	}

	details, err := h.posts.GetPostWithComments(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, PostWithCommentsResponse{
		Post:     postWithLikesToResponse(details.Post),
		Comments: commentsToResponse(details.Comments),
	})
}

func (h *Handler) listComments(c *gin.Context) {
	id, ok := h.postIDParam(c)
	if !ok {
		return
	}

	comments, err := h.posts.ListComments(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, commentsToResponse(comments))
}

func (h *Handler) createComment(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeValidationError(c, err)
		return
	}

	comment, err := h.posts.CreateComment(c.Request.Context(), currentUser(c), req.PostID, req.Body)
	metrics.IncrementPostOperations("create_comment", err == nil)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CommentResponse{
		ID:     comment.ID,
		Body:   comment.Body,
		PostID: comment.PostID,
		UserID: comment.UserID,
	})
}

func (h *Handler) likePost(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeValidationError(c, err)
		return
	}

	like, err := h.posts.LikePost(c.Request.Context(), currentUser(c), req.PostID)
	metrics.IncrementPostOperations("like_post", err == nil)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, LikeResponse{ID: like.ID, PostID: like.PostID, UserID: like.UserID})
}

func (h *Handler) postIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid post id"})
		return 0, false
	}
	return id, true
}

const invalidPayloadMessage = "invalid request payload"

// writeValidationError never echoes binder errors to the client.
func (h *Handler) writeValidationError(c *gin.Context, err error) {
	h.log.WithError(err).WithField(requestIDKey, c.GetString(requestIDKey)).Debug("invalid payload")
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": invalidPayloadMessage})
}

// writeError maps service errors to a status and a stable message. Unknown
// errors are logged and reported without detail.
func (h *Handler) writeError(c *gin.Context, err error) {
	status, msg := errorStatus(err)
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).WithField(requestIDKey, c.GetString(requestIDKey)).Error("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, "Token has expired"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Could not validate credentials"
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "Not authenticated"
	case errors.Is(err, service.ErrUserAlreadyExists):
		return http.StatusBadRequest, "A user with that email already exists"
	case errors.Is(err, service.ErrPostNotFound):
		return http.StatusNotFound, "Post not found"
	case errors.Is(err, service.ErrUnsupportedSorting), errors.Is(err, service.ErrValidation):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func postToResponse(post domain.Post) PostResponse {
	return PostResponse{
		ID:     post.ID,
		Body:   post.Body,
		UserID: post.UserID,
	}
}

func postWithLikesToResponse(post domain.PostWithLikes) PostWithLikesResponse {
	return PostWithLikesResponse{
		PostResponse: postToResponse(post.Post),
		Likes:        post.Likes,
	}
}

func commentsToResponse(comments []domain.Comment) []CommentResponse {
	resp := make([]CommentResponse, len(comments))
	for i := range comments {
		resp[i] = CommentResponse{
			ID:     comments[i].ID,
			Body:   comments[i].Body,
			PostID: comments[i].PostID,
			UserID: comments[i].UserID,
		}
	}
	return resp
}
