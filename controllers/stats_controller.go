package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minglehq/mingle/store"
	"github.com/minglehq/mingle/utils"
)

// StatsController provides aggregate statistics such as collection counts.
type StatsController struct {
	users    store.UserStore
	posts    store.PostStore
	comments store.CommentStore
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(users store.UserStore, posts store.PostStore, comments store.CommentStore) *StatsController {
	return &StatsController{users: users, posts: posts, comments: comments}
}

// GetStats returns aggregate counts for the network.
func (s *StatsController) GetStats(ctx *gin.Context) {
	cacheKey := "cache:stats"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	rc := ctx.Request.Context()

	userCount, err := s.users.Count(rc)
	if err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}

	postCount, err := s.posts.Count(rc)
	if err != nil {
		postCount = 0
	}

	commentCount, err := s.comments.Count(rc)
	if err != nil {
		commentCount = 0
	}

	payload := gin.H{
		"user_count":    userCount,
		"post_count":    postCount,
		"comment_count": commentCount,
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Minute)
	utils.Success(ctx, payload)
}
