package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minglehq/mingle/config"
	"github.com/minglehq/mingle/models"
	"github.com/minglehq/mingle/services"
	"github.com/minglehq/mingle/utils"
)

// UserController exposes account, profile and follow workflows over HTTP.
type UserController struct {
	users *services.UserService
}

// NewUserController creates a new UserController instance.
func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// Register handles account registration. The body is multipart: profile
// fields plus an avatar file (required) and a cover_image file (optional).
func (u *UserController) Register(ctx *gin.Context) {
	avatarPaths, err := saveTempFiles(ctx, "avatar", 1)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "failed to accept avatar upload")
		return
	}
	coverPaths, err := saveTempFiles(ctx, "cover_image", 1)
	if err != nil {
		removeTempFiles(avatarPaths)
		utils.Error(ctx, http.StatusBadRequest, 40011, "failed to accept cover image upload")
		return
	}
	defer removeTempFiles(avatarPaths)
	defer removeTempFiles(coverPaths)

	req := services.RegisterRequest{
		FirstName: ctx.PostForm("firstname"),
		LastName:  ctx.PostForm("lastname"),
		Username:  ctx.PostForm("username"),
		Email:     ctx.PostForm("email"),
		Password:  ctx.PostForm("password"),
	}
	if len(avatarPaths) > 0 {
		req.AvatarPath = avatarPaths[0]
	}
	if len(coverPaths) > 0 {
		req.CoverPath = coverPaths[0]
	}

	user, err := u.users.Register(ctx.Request.Context(), req)
	if err != nil {
		respondWorkflowError(ctx, err, "user", 50010)
		return
	}

	utils.Success(ctx, gin.H{"user": user.Public()})
}

// Login verifies credentials and issues a JWT.
func (u *UserController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request payload")
		return
	}

	user, err := u.users.Authenticate(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondWorkflowError(ctx, err, "user", 50011)
		return
	}

	ttl := time.Duration(config.Get().TokenTTLHours) * time.Hour
	token, err := utils.GenerateToken(user.ID.Hex(), user.Username, ttl)
	if err != nil {
		utils.Sugar.Errorw("token generation failed", "user_id", user.ID.Hex(), "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50012, "internal server error")
		return
	}

	utils.Success(ctx, gin.H{"access_token": token, "user": user.Public()})
}

// Logout revokes the presented token until its natural expiration.
func (u *UserController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(time.Duration(config.Get().TokenTTLHours) * time.Hour)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's own record.
func (u *UserController) Me(ctx *gin.Context) {
	userID, ok := requesterID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40130, "unauthorized")
		return
	}

	user, err := u.users.Get(ctx.Request.Context(), userID)
	if err != nil {
		respondWorkflowError(ctx, err, "user", 50013)
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// DeleteAccount removes the authenticated user along with their posts, media
// and comments.
func (u *UserController) DeleteAccount(ctx *gin.Context) {
	userID, ok := requesterID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40131, "unauthorized")
		return
	}

	if err := u.users.Delete(ctx.Request.Context(), userID); err != nil {
		respondWorkflowError(ctx, err, "user", 50014)
		return
	}

	utils.InvalidateByPrefix("cache:posts:list")
	utils.InvalidateByPrefix("cache:user:" + userID.Hex())
	utils.Success(ctx, gin.H{"message": "user deleted"})
}

// GetUser returns a user's public profile.
func (u *UserController) GetUser(ctx *gin.Context) {
	targetID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid user id")
		return
	}

	cacheKey := "cache:user:" + targetID.Hex() + ":public"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	user, err := u.users.Get(ctx.Request.Context(), targetID)
	if err != nil {
		respondWorkflowError(ctx, err, "user", 50015)
		return
	}

	payload := gin.H{"user": user.Public()}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// SearchUsers returns users whose username matches the query fragment.
func (u *UserController) SearchUsers(ctx *gin.Context) {
	fragment := strings.TrimSpace(ctx.Query("username"))
	if fragment == "" {
		utils.Error(ctx, http.StatusBadRequest, 40051, "missing username query")
		return
	}
	limit := parseLimit(ctx.Query("limit"), 20, 100)

	users, err := u.users.Search(ctx.Request.Context(), fragment, limit)
	if err != nil {
		respondWorkflowError(ctx, err, "user", 50016)
		return
	}

	utils.Success(ctx, gin.H{"items": publicUsers(users)})
}

// Follow adds the requester to the target's followers. Following twice is a
// success no-op.
func (u *UserController) Follow(ctx *gin.Context) {
	userID, ok := requesterID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40132, "unauthorized")
		return
	}
	targetID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid user id")
		return
	}

	already, err := u.users.Follow(ctx.Request.Context(), targetID, userID)
	if err != nil {
		respondWorkflowError(ctx, err, "user", 50017)
		return
	}
	if already {
		utils.Success(ctx, gin.H{"message": "user is already being followed"})
		return
	}

	utils.InvalidateByPrefix("cache:user:" + targetID.Hex() + ":public")
	utils.InvalidateByPrefix("cache:user:" + userID.Hex() + ":public")
	utils.Success(ctx, gin.H{"message": "user followed successfully"})
}

// Unfollow removes the follow relationship unconditionally.
func (u *UserController) Unfollow(ctx *gin.Context) {
	userID, ok := requesterID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40133, "unauthorized")
		return
	}
	targetID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid user id")
		return
	}

	if err := u.users.Unfollow(ctx.Request.Context(), targetID, userID); err != nil {
		respondWorkflowError(ctx, err, "user", 50018)
		return
	}

	utils.InvalidateByPrefix("cache:user:" + targetID.Hex() + ":public")
	utils.InvalidateByPrefix("cache:user:" + userID.Hex() + ":public")
	utils.Success(ctx, gin.H{"message": "unfollowed user successfully"})
}

// IsFollowing reports whether the requester follows the target user.
func (u *UserController) IsFollowing(ctx *gin.Context) {
	userID, ok := requesterID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40134, "unauthorized")
		return
	}
	targetID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid user id")
		return
	}

	following, err := u.users.IsFollowing(ctx.Request.Context(), targetID, userID)
	if err != nil {
		respondWorkflowError(ctx, err, "user", 50019)
		return
	}
	utils.Success(ctx, gin.H{"following": following})
}

// GetFollowers returns the accounts following the user.
func (u *UserController) GetFollowers(ctx *gin.Context) {
	targetID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid user id")
		return
	}

	followers, err := u.users.Followers(ctx.Request.Context(), targetID)
	if err != nil {
		respondWorkflowError(ctx, err, "user", 50052)
		return
	}
	utils.Success(ctx, gin.H{"items": publicUsers(followers)})
}

// GetFollowing returns the accounts the user follows.
func (u *UserController) GetFollowing(ctx *gin.Context) {
	targetID, ok := pathObjectID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid user id")
		return
	}

	following, err := u.users.Following(ctx.Request.Context(), targetID)
	if err != nil {
		respondWorkflowError(ctx, err, "user", 50053)
		return
	}
	utils.Success(ctx, gin.H{"items": publicUsers(following)})
}

func publicUsers(users []models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}
