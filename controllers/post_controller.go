package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minglehq/mingle/services"
	"github.com/minglehq/mingle/utils"
)

// PostController exposes the post workflows over HTTP.
type PostController struct {
	posts *services.PostService
}

// NewPostController creates a new PostController instance.
func NewPostController(posts *services.PostService) *PostController {
	return &PostController{posts: posts}
}

// CreatePost accepts a multipart body with title, content and optional photos
// and videos, uploads the media and creates the post.
func (p *PostController) CreatePost(ctx *gin.Context) {
	userID, ok := requesterID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	title := utils.SanitizeStrict(strings.TrimSpace(ctx.PostForm("title")))
	content := utils.Sanitize(ctx.PostForm("content"))

	photoPaths, err := saveTempFiles(ctx, "photos", 10)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "failed to accept photo uploads")
		return
	}
	videoPaths, err := saveTempFiles(ctx, "videos", 4)
	if err != nil {
		removeTempFiles(photoPaths)
		utils.Error(ctx, http.StatusBadRequest, 40031, "failed to accept video uploads")
		return
	}
	defer removeTempFiles(photoPaths)
	defer removeTempFiles(videoPaths)

	post, err := p.posts.Create(ctx.Request.Context(), userID, title, content, photoPaths, videoPaths)
	if err != nil {
		respondWorkflowError(ctx, err, "post", 50020)
		return
	}

	utils.InvalidateByPrefix("cache:posts:list")
	utils.InvalidateByPrefix("cache:user:" + userID.Hex() + ":posts")

	utils.Success(ctx, gin.H{"post": post})
}

// ListPosts returns the most recent posts.
func (p *PostController) ListPosts(ctx *gin.Context) {
	limit := parseLimit(ctx.Query("limit"), 20, 100)

	cacheKey := "cache:posts:list"
	if limit == 20 {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	posts, err := p.posts.List(ctx.Request.Context(), limit)
	if err != nil {
		respondWorkflowError(ctx, err, "post", 50021)
		return
	}

	payload := gin.H{"items": posts}
	if limit == 20 {
		wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
		utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	}
	utils.Success(ctx, payload)
}

// GetPost returns a single post.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid post id")
		return
	}

	cacheKey := "cache:post:detail:" + postID.Hex()
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	post, err := p.posts.Get(ctx.Request.Context(), postID)
	if err != nil {
		respondWorkflowError(ctx, err, "post", 50022)
		return
	}

	payload := gin.H{"post": post}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// UpdatePost applies an owner-only edit. Supplied photos or videos replace the
// existing list of that kind entirely.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	userID, ok := requesterID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}
	postID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid post id")
		return
	}

	photoPaths, err := saveTempFiles(ctx, "photos", 10)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "failed to accept photo uploads")
		return
	}
	videoPaths, err := saveTempFiles(ctx, "videos", 4)
	if err != nil {
		removeTempFiles(photoPaths)
		utils.Error(ctx, http.StatusBadRequest, 40031, "failed to accept video uploads")
		return
	}
	defer removeTempFiles(photoPaths)
	defer removeTempFiles(videoPaths)

	req := services.EditPostRequest{
		Title:      utils.SanitizeStrict(strings.TrimSpace(ctx.PostForm("title"))),
		Content:    utils.Sanitize(ctx.PostForm("content")),
		PhotoPaths: photoPaths,
		VideoPaths: videoPaths,
	}

	post, err := p.posts.Edit(ctx.Request.Context(), postID, userID, req)
	if err != nil {
		respondWorkflowError(ctx, err, "post", 50023)
		return
	}

	utils.InvalidateByPrefix("cache:posts:list")
	utils.InvalidateByPrefix("cache:post:detail:" + postID.Hex())
	utils.InvalidateByPrefix("cache:user:" + userID.Hex() + ":posts")

	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes a post along with its media, comments and
// back-references.
func (p *PostController) DeletePost(ctx *gin.Context) {
	userID, ok := requesterID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}
	postID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid post id")
		return
	}

	if err := p.posts.Delete(ctx.Request.Context(), postID, userID); err != nil {
		respondWorkflowError(ctx, err, "post", 50024)
		return
	}

	utils.InvalidateByPrefix("cache:posts:list")
	utils.InvalidateByPrefix("cache:post:detail:" + postID.Hex())
	utils.InvalidateByPrefix("cache:user:" + userID.Hex() + ":posts")

	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// LikePost records a like. Liking a post twice is a success no-op.
func (p *PostController) LikePost(ctx *gin.Context) {
	userID, ok := requesterID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}
	postID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid post id")
		return
	}

	post, already, err := p.posts.Like(ctx.Request.Context(), postID, userID)
	if err != nil {
		respondWorkflowError(ctx, err, "post", 50025)
		return
	}
	if already {
		utils.Success(ctx, gin.H{"message": "you have already liked this post"})
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + postID.Hex())
	utils.Success(ctx, gin.H{"post": post})
}

// UnlikePost removes a like unconditionally.
func (p *PostController) UnlikePost(ctx *gin.Context) {
	userID, ok := requesterID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40114, "unauthorized")
		return
	}
	postID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid post id")
		return
	}

	if err := p.posts.Unlike(ctx.Request.Context(), postID, userID); err != nil {
		respondWorkflowError(ctx, err, "post", 50026)
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + postID.Hex())
	utils.Success(ctx, gin.H{"message": "post disliked successfully"})
}

// IsLiked reports whether the requester already liked the post.
func (p *PostController) IsLiked(ctx *gin.Context) {
	userID, ok := requesterID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40115, "unauthorized")
		return
	}
	postID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid post id")
		return
	}

	liked, err := p.posts.IsLiked(ctx.Request.Context(), postID, userID)
	if err != nil {
		respondWorkflowError(ctx, err, "post", 50027)
		return
	}
	utils.Success(ctx, gin.H{"liked": liked})
}

// ListUserPosts returns posts created by a specific user.
func (p *PostController) ListUserPosts(ctx *gin.Context) {
	targetID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid user id")
		return
	}

	cacheKey := "cache:user:" + targetID.Hex() + ":posts"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	posts, err := p.posts.ListByUser(ctx.Request.Context(), targetID)
	if err != nil {
		respondWorkflowError(ctx, err, "user", 50028)
		return
	}

	payload := gin.H{"items": posts}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// ListLikedPosts returns the posts a user has liked.
func (p *PostController) ListLikedPosts(ctx *gin.Context) {
	targetID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid user id")
		return
	}

	posts, err := p.posts.ListLiked(ctx.Request.Context(), targetID)
	if err != nil {
		respondWorkflowError(ctx, err, "user", 50029)
		return
	}
	utils.Success(ctx, gin.H{"items": posts})
}
