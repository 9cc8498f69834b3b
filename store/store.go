// Package store provides typed gateways over the users, posts and comments
// collections. The service layer depends on the interfaces here; the Mongo
// implementations live alongside them.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/minglehq/mingle/models"
)

// ErrNotFound is returned when a referenced document is absent.
var ErrNotFound = errors.New("store: document not found")

// ErrDuplicate is returned when an insert violates a unique index.
var ErrDuplicate = errors.New("store: duplicate key")

// Back-reference array fields on user documents.
const (
	FieldPosts         = "posts"
	FieldComments      = "comments"
	FieldLikedPosts    = "liked_posts"
	FieldLikedComments = "liked_comments"
	FieldFollowers     = "followers"
	FieldFollowing     = "following"
)

// Back-reference array fields on post and comment documents.
const (
	FieldLikes = "likes"
)

// PostUpdate carries the full replacement values for an edited post. The
// service layer resolves retained fields before calling the store, so every
// field here is written as-is.
type PostUpdate struct {
	Title   string
	Content string
	Photos  []models.Media
	Videos  []models.Media
}

// UserStore is the gateway over the users collection.
type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error)
	SearchByUsername(ctx context.Context, fragment string, limit int64) ([]models.User, error)
	FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	Insert(ctx context.Context, user models.User) (primitive.ObjectID, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Push(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error
	Pull(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error
	// PullFromAll removes value from the named array of every user document
	// containing it (fan-out cleanup).
	PullFromAll(ctx context.Context, field string, value primitive.ObjectID) error
	// HasInSet reports whether the named array of the user contains value.
	HasInSet(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// PostStore is the gateway over the posts collection.
type PostStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Post, error)
	FindRecent(ctx context.Context, limit int64) ([]models.Post, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error)
	FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error)
	Insert(ctx context.Context, post models.Post) (primitive.ObjectID, error)
	// Update overwrites the mutable fields of a post and returns the updated
	// document.
	Update(ctx context.Context, id primitive.ObjectID, upd PostUpdate) (models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Push(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error
	Pull(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// CommentStore is the gateway over the comments collection.
type CommentStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Comment, error)
	FindByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Comment, error)
	Insert(ctx context.Context, comment models.Comment) (primitive.ObjectID, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (models.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DeleteByPost removes every comment whose post field equals postID and
	// reports how many were removed.
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Push(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error
	Pull(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}
