package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/minglehq/mingle/media"
	"github.com/minglehq/mingle/models"
	"github.com/minglehq/mingle/store"
	"github.com/minglehq/mingle/utils"
)

// UserService orchestrates account and follow workflows. Post deletion during
// account removal goes through the PostService so its fan-out cleanup applies.
type UserService struct {
	users    store.UserStore
	posts    store.PostStore
	comments store.CommentStore
	media    media.Store
	postSvc  *PostService
}

// NewUserService creates a UserService.
func NewUserService(users store.UserStore, posts store.PostStore, comments store.CommentStore, m media.Store, postSvc *PostService) *UserService {
	return &UserService{users: users, posts: posts, comments: comments, media: m, postSvc: postSvc}
}

// RegisterRequest carries the fields of a registration. AvatarPath is
// required; CoverPath is optional.
type RegisterRequest struct {
	FirstName  string
	LastName   string
	Username   string
	Email      string
	Password   string
	AvatarPath string
	CoverPath  string
}

// Register creates an account after checking username/email uniqueness.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	switch {
	case strings.TrimSpace(req.FirstName) == "":
		return models.User{}, required("firstname")
	case strings.TrimSpace(req.LastName) == "":
		return models.User{}, required("lastname")
	case req.Username == "":
		return models.User{}, required("username")
	case req.Email == "":
		return models.User{}, required("email")
	case req.Password == "":
		return models.User{}, required("password")
	case req.AvatarPath == "":
		return models.User{}, required("avatar")
	}

	if _, err := s.users.FindByUsernameOrEmail(ctx, req.Username, req.Email); err == nil {
		return models.User{}, fmt.Errorf("%w: username or email already registered", ErrConflict)
	} else if !isNotFound(err) {
		return models.User{}, fmt.Errorf("check existing user: %w", err)
	}

	avatarAsset, err := s.media.Upload(ctx, req.AvatarPath)
	if err != nil {
		return models.User{}, fmt.Errorf("upload avatar: %w", err)
	}
	var cover models.Media
	if req.CoverPath != "" {
		coverAsset, err := s.media.Upload(ctx, req.CoverPath)
		if err != nil {
			// The cover image is optional; registration proceeds without it.
			utils.Sugar.Warnw("cover image upload failed", "error", err)
		} else {
			cover = models.Media{URL: coverAsset.URL, MediaID: coverAsset.ID}
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:      req.Username,
		Email:         req.Email,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		PasswordHash:  hash,
		Avatar:        models.Media{URL: avatarAsset.URL, MediaID: avatarAsset.ID},
		CoverImage:    cover,
		Posts:         []primitive.ObjectID{},
		Comments:      []primitive.ObjectID{},
		LikedPosts:    []primitive.ObjectID{},
		LikedComments: []primitive.ObjectID{},
		Followers:     []primitive.ObjectID{},
		Following:     []primitive.ObjectID{},
		CreatedAt:     time.Now(),
	}

	id, err := s.users.Insert(ctx, user)
	if errors.Is(err, store.ErrDuplicate) {
		// A concurrent registration won the unique index between the
		// pre-check and the insert.
		return models.User{}, fmt.Errorf("%w: username or email already registered", ErrConflict)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	user.ID = id
	return user, nil
}

// Authenticate verifies a username/password pair and returns the account.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if isNotFound(err) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, mapStoreErr(err)
	}
	return user, nil
}

// Search returns users whose username matches the fragment, case-insensitive.
func (s *UserService) Search(ctx context.Context, fragment string, limit int64) ([]models.User, error) {
	return s.users.SearchByUsername(ctx, strings.TrimSpace(fragment), limit)
}

// Follow adds the requester to the target's followers and the target to the
// requester's following set: two independent writes. Following a user twice
// is a success no-op reported through the return value; following yourself is
// a validation error.
func (s *UserService) Follow(ctx context.Context, targetID, requesterID primitive.ObjectID) (bool, error) {
	if targetID == requesterID {
		return false, &ValidationError{Field: "user", Reason: "cannot follow yourself"}
	}
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		return false, mapStoreErr(err)
	}

	already, err := s.users.HasInSet(ctx, requesterID, store.FieldFollowing, targetID)
	if err != nil {
		return false, fmt.Errorf("check following: %w", err)
	}
	if already {
		return true, nil
	}

	if err := s.users.Push(ctx, targetID, store.FieldFollowers, requesterID); err != nil {
		return false, fmt.Errorf("push follower: %w", err)
	}
	if err := s.users.Push(ctx, requesterID, store.FieldFollowing, targetID); err != nil {
		utils.Sugar.Errorw("follower recorded but following back-reference update failed",
			"target_id", targetID.Hex(), "user_id", requesterID.Hex(), "error", err)
		return false, fmt.Errorf("push following: %w", err)
	}
	return false, nil
}

// Unfollow pulls both sides unconditionally. Unfollowing a user who was never
// followed is an idempotent no-op.
func (s *UserService) Unfollow(ctx context.Context, targetID, requesterID primitive.ObjectID) error {
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		return mapStoreErr(err)
	}
	if err := s.users.Pull(ctx, requesterID, store.FieldFollowing, targetID); err != nil {
		return fmt.Errorf("pull following: %w", err)
	}
	if err := s.users.Pull(ctx, targetID, store.FieldFollowers, requesterID); err != nil {
		return fmt.Errorf("pull follower: %w", err)
	}
	return nil
}

// IsFollowing reports whether the requester appears in the target's followers.
func (s *UserService) IsFollowing(ctx context.Context, targetID, requesterID primitive.ObjectID) (bool, error) {
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return false, mapStoreErr(err)
	}
	return utils.ContainsObjectID(target.Followers, requesterID), nil
}

// Followers resolves the user's followers set to accounts.
func (s *UserService) Followers(ctx context.Context, id primitive.ObjectID) ([]models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return s.users.FindManyByIDs(ctx, utils.UniqueObjectIDs(user.Followers))
}

// Following resolves the user's following set to accounts.
func (s *UserService) Following(ctx context.Context, id primitive.ObjectID) ([]models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return s.users.FindManyByIDs(ctx, utils.UniqueObjectIDs(user.Following))
}

// Delete removes the account: every owned post goes through the post deletion
// workflow (media, comments, fan-out), the user's remaining comments are
// removed, profile media is released, and finally the user document is
// deleted. Partial failures are logged and do not stop the remaining steps.
func (s *UserService) Delete(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return mapStoreErr(err)
	}

	posts, err := s.posts.FindByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list owned posts: %w", err)
	}
	for _, post := range posts {
		if err := s.postSvc.Delete(ctx, post.ID, userID); err != nil {
			utils.Sugar.Errorw("owned post cleanup failed during account deletion",
				"user_id", userID.Hex(), "post_id", post.ID.Hex(), "error", err)
		}
	}

	if _, err := s.comments.DeleteByUser(ctx, userID); err != nil {
		utils.Sugar.Errorw("comment cleanup failed during account deletion",
			"user_id", userID.Hex(), "error", err)
	}

	var profileAssets []string
	if user.Avatar.MediaID != "" {
		profileAssets = append(profileAssets, user.Avatar.MediaID)
	}
	if user.CoverImage.MediaID != "" {
		profileAssets = append(profileAssets, user.CoverImage.MediaID)
	}
	for _, r := range media.Failures(media.DeleteAll(ctx, s.media, profileAssets)) {
		utils.Sugar.Warnw("profile media delete failed",
			"user_id", userID.Hex(), "media_id", r.ID, "error", r.Err)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound) || errors.Is(err, ErrNotFound)
}
