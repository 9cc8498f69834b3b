package models

// Media is a single hosted asset attached to a post or profile. MediaID is the
// opaque identifier issued by the media store and is required to delete the
// asset later.
type Media struct {
	URL     string `bson:"url" json:"url"`
	MediaID string `bson:"media_id" json:"media_id"`
}
