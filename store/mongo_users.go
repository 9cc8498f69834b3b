package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/minglehq/mingle/models"
)

type mongoUsers struct {
	col *mongo.Collection
}

func (s *mongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if isNoDocuments(err) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *mongoUsers) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if isNoDocuments(err) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user by username: %w", err)
	}
	return user, nil
}

func (s *mongoUsers) FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}
	var user models.User
	err := s.col.FindOne(ctx, filter).Decode(&user)
	if isNoDocuments(err) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user by username or email: %w", err)
	}
	return user, nil
}

func (s *mongoUsers) SearchByUsername(ctx context.Context, fragment string, limit int64) ([]models.User, error) {
	filter := bson.M{"username": bson.M{
		"$regex": primitive.Regex{Pattern: fragment, Options: "i"},
	}}
	cur, err := s.col.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *mongoUsers) FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find users by ids: %w", err)
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *mongoUsers) Insert(ctx context.Context, user models.User) (primitive.ObjectID, error) {
	res, err := s.col.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		// Racing registrations can pass the existence pre-check and then hit
		// the unique index on username or email.
		return primitive.NilObjectID, ErrDuplicate
	}
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert user: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (s *mongoUsers) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoUsers) Push(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	return pushID(ctx, s.col, id, field, value)
}

func (s *mongoUsers) Pull(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	return pullID(ctx, s.col, id, field, value)
}

func (s *mongoUsers) PullFromAll(ctx context.Context, field string, value primitive.ObjectID) error {
	_, err := s.col.UpdateMany(ctx,
		bson.M{field: value},
		bson.M{"$pull": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("pull %s from all users: %w", field, err)
	}
	return nil
}

func (s *mongoUsers) HasInSet(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) (bool, error) {
	err := s.col.FindOne(ctx,
		bson.M{"_id": id, field: bson.M{"$in": bson.A{value}}},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if isNoDocuments(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check %s membership: %w", field, err)
	}
	return true, nil
}

func (s *mongoUsers) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}
