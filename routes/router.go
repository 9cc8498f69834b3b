package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/minglehq/mingle/config"
	"github.com/minglehq/mingle/controllers"
	"github.com/minglehq/mingle/middleware"
	"github.com/minglehq/mingle/services"
	"github.com/minglehq/mingle/store"
	"github.com/minglehq/mingle/utils"
)

// Deps carries the wired services and stores the router needs.
type Deps struct {
	Users    *services.UserService
	Posts    *services.PostService
	Comments *services.CommentService
	Store    *store.Mongo
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Deps) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	// Uploaded media is served straight from disk
	r.Static("/media", cfg.UploadDir)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	userController := controllers.NewUserController(deps.Users)
	postController := controllers.NewPostController(deps.Posts)
	commentController := controllers.NewCommentController(deps.Comments)
	statsController := controllers.NewStatsController(deps.Store.Users, deps.Store.Posts, deps.Store.Comments)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", userController.Register)
	authGroup.POST("/login", userController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), userController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), userController.Me)

	// Public read endpoints
	api.GET("/stats", statsController.GetStats)
	api.GET("/posts", postController.ListPosts)
	api.GET("/posts/:id", postController.GetPost)
	api.GET("/posts/:id/comments", commentController.ListPostComments)
	api.GET("/users/search", userController.SearchUsers)
	api.GET("/users/:id", userController.GetUser)
	api.GET("/users/:id/posts", postController.ListUserPosts)
	api.GET("/users/:id/comments", commentController.ListUserComments)
	api.GET("/users/:id/followers", userController.GetFollowers)
	api.GET("/users/:id/following", userController.GetFollowing)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.DELETE("/users/me", userController.DeleteAccount)
	protected.POST("/users/:id/follow", userController.Follow)
	protected.DELETE("/users/:id/follow", userController.Unfollow)
	protected.GET("/users/:id/follow", userController.IsFollowing)

	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/like", postController.LikePost)
	protected.DELETE("/posts/:id/like", postController.UnlikePost)
	protected.GET("/posts/:id/like", postController.IsLiked)
	protected.GET("/users/:id/liked-posts", postController.ListLikedPosts)

	protected.POST("/posts/:id/comments", commentController.CreateComment)
	protected.PUT("/comments/:id", commentController.EditComment)
	protected.DELETE("/comments/:id", commentController.DeleteComment)
	protected.POST("/comments/:id/like", commentController.LikeComment)
	protected.DELETE("/comments/:id/like", commentController.UnlikeComment)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
