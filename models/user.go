package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account document in the users collection. Passwords are
// stored as bcrypt hashes only.
//
// The array fields are denormalized back-references maintained by the service
// layer with $push/$pull updates; the store itself enforces nothing about them.
type User struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username      string               `bson:"username" json:"username"`
	Email         string               `bson:"email" json:"email"`
	FirstName     string               `bson:"first_name" json:"first_name"`
	LastName      string               `bson:"last_name" json:"last_name"`
	PasswordHash  string               `bson:"password_hash" json:"-"`
	Avatar        Media                `bson:"avatar,omitempty" json:"avatar"`
	CoverImage    Media                `bson:"cover_image,omitempty" json:"cover_image"`
	Posts         []primitive.ObjectID `bson:"posts" json:"posts"`
	Comments      []primitive.ObjectID `bson:"comments" json:"comments"`
	LikedPosts    []primitive.ObjectID `bson:"liked_posts" json:"liked_posts"`
	LikedComments []primitive.ObjectID `bson:"liked_comments" json:"liked_comments"`
	Followers     []primitive.ObjectID `bson:"followers" json:"followers"`
	Following     []primitive.ObjectID `bson:"following" json:"following"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
}

// PublicUser is the externally visible projection of a User.
type PublicUser struct {
	ID         primitive.ObjectID `json:"id"`
	Username   string             `json:"username"`
	FirstName  string             `json:"first_name"`
	LastName   string             `json:"last_name"`
	Avatar     Media              `json:"avatar"`
	CoverImage Media              `json:"cover_image"`
	Followers  int                `json:"followers"`
	Following  int                `json:"following"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Public strips credentials and back-reference bookkeeping from a user record.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		Followers:  len(u.Followers),
		Following:  len(u.Following),
		CreatedAt:  u.CreatedAt,
	}
}
