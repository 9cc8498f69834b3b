package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/minglehq/mingle/models"
)

type mongoPosts struct {
	col *mongo.Collection
}

func (s *mongoPosts) FindByID(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	var post models.Post
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if isNoDocuments(err) {
		return models.Post{}, ErrNotFound
	}
	if err != nil {
		return models.Post{}, fmt.Errorf("find post: %w", err)
	}
	return post, nil
}

func (s *mongoPosts) FindRecent(ctx context.Context, limit int64) ([]models.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find recent posts: %w", err)
	}
	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

func (s *mongoPosts) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find posts by user: %w", err)
	}
	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

func (s *mongoPosts) FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find posts by ids: %w", err)
	}
	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

func (s *mongoPosts) Insert(ctx context.Context, post models.Post) (primitive.ObjectID, error) {
	res, err := s.col.InsertOne(ctx, post)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert post: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (s *mongoPosts) Update(ctx context.Context, id primitive.ObjectID, upd PostUpdate) (models.Post, error) {
	update := bson.M{"$set": bson.M{
		"title":      upd.Title,
		"content":    upd.Content,
		"photos":     upd.Photos,
		"videos":     upd.Videos,
		"updated_at": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&post)
	if isNoDocuments(err) {
		return models.Post{}, ErrNotFound
	}
	if err != nil {
		return models.Post{}, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

func (s *mongoPosts) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoPosts) Push(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	return pushID(ctx, s.col, id, field, value)
}

func (s *mongoPosts) Pull(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	return pullID(ctx, s.col, id, field, value)
}

func (s *mongoPosts) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}
