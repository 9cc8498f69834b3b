package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a post document in the posts collection. Photos and videos
// keep their upload order; Likes and Comments are back-reference sets.
type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID   `bson:"user" json:"user_id"`
	Title     string               `bson:"title" json:"title"`
	Content   string               `bson:"content" json:"content"`
	Photos    []Media              `bson:"photos" json:"photos"`
	Videos    []Media              `bson:"videos" json:"videos"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments  []primitive.ObjectID `bson:"comments" json:"comments"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updated_at"`
}

// MediaIDs returns the media store identifiers of all attached assets,
// photos first.
func (p Post) MediaIDs() []string {
	ids := make([]string, 0, len(p.Photos)+len(p.Videos))
	for _, m := range p.Photos {
		ids = append(ids, m.MediaID)
	}
	for _, m := range p.Videos {
		ids = append(ids, m.MediaID)
	}
	return ids
}
