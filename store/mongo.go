package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/minglehq/mingle/config"
)

// Mongo bundles the collection gateways backed by a single database handle.
type Mongo struct {
	Users    UserStore
	Posts    PostStore
	Comments CommentStore
}

// NewMongo wires the gateways to the named collections.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		Users:    &mongoUsers{col: db.Collection(config.UsersCollection)},
		Posts:    &mongoPosts{col: db.Collection(config.PostsCollection)},
		Comments: &mongoComments{col: db.Collection(config.CommentsCollection)},
	}
}

func pushID(ctx context.Context, col *mongo.Collection, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("push %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// pullID removes value from the named array. A pull on a document whose array
// does not contain the value is a successful no-op.
func pullID(ctx context.Context, col *mongo.Collection, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$pull": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("pull %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
