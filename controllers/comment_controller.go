package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minglehq/mingle/services"
	"github.com/minglehq/mingle/utils"
)

// CommentController exposes the comment workflows over HTTP.
type CommentController struct {
	comments *services.CommentService
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(comments *services.CommentService) *CommentController {
	return &CommentController{comments: comments}
}

// CreateComment adds a comment under a post.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	userID, ok := requesterID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}
	postID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid post id")
		return
	}

	comment, err := c.comments.Create(ctx.Request.Context(), postID, userID, utils.Sanitize(req.Content))
	if err != nil {
		respondWorkflowError(ctx, err, "post", 50040)
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + postID.Hex())
	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment removes a comment; only its author may do so.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	userID, ok := requesterID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40121, "unauthorized")
		return
	}
	commentID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid comment id")
		return
	}

	if err := c.comments.Delete(ctx.Request.Context(), commentID, userID); err != nil {
		respondWorkflowError(ctx, err, "comment", 50041)
		return
	}

	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// EditComment updates comment content; only its author may do so.
func (c *CommentController) EditComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40043, "invalid request payload")
		return
	}

	userID, ok := requesterID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40122, "unauthorized")
		return
	}
	commentID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid comment id")
		return
	}

	comment, err := c.comments.Edit(ctx.Request.Context(), commentID, userID, utils.Sanitize(req.Content))
	if err != nil {
		respondWorkflowError(ctx, err, "comment", 50042)
		return
	}
	utils.Success(ctx, gin.H{"comment": comment})
}

// LikeComment records a like. Liking a comment twice is a success no-op.
func (c *CommentController) LikeComment(ctx *gin.Context) {
	userID, ok := requesterID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40123, "unauthorized")
		return
	}
	commentID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid comment id")
		return
	}

	comment, already, err := c.comments.Like(ctx.Request.Context(), commentID, userID)
	if err != nil {
		respondWorkflowError(ctx, err, "comment", 50043)
		return
	}
	if already {
		utils.Success(ctx, gin.H{"message": "you have already liked this comment"})
		return
	}
	utils.Success(ctx, gin.H{"comment": comment})
}

// UnlikeComment removes a like unconditionally.
func (c *CommentController) UnlikeComment(ctx *gin.Context) {
	userID, ok := requesterID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40124, "unauthorized")
		return
	}
	commentID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid comment id")
		return
	}

	if err := c.comments.Unlike(ctx.Request.Context(), commentID, userID); err != nil {
		respondWorkflowError(ctx, err, "comment", 50044)
		return
	}
	utils.Success(ctx, gin.H{"message": "comment disliked successfully"})
}

// ListPostComments returns every comment under a post.
func (c *CommentController) ListPostComments(ctx *gin.Context) {
	postID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid post id")
		return
	}

	comments, err := c.comments.ListByPost(ctx.Request.Context(), postID)
	if err != nil {
		respondWorkflowError(ctx, err, "post", 50045)
		return
	}
	utils.Success(ctx, gin.H{"items": comments})
}

// ListUserComments returns every comment authored by a user.
func (c *CommentController) ListUserComments(ctx *gin.Context) {
	targetID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40044, "invalid user id")
		return
	}

	comments, err := c.comments.ListByUser(ctx.Request.Context(), targetID)
	if err != nil {
		respondWorkflowError(ctx, err, "user", 50046)
		return
	}
	utils.Success(ctx, gin.H{"items": comments})
}
