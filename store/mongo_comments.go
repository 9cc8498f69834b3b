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

type mongoComments struct {
	col *mongo.Collection
}

func (s *mongoComments) FindByID(ctx context.Context, id primitive.ObjectID) (models.Comment, error) {
	var comment models.Comment
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if isNoDocuments(err) {
		return models.Comment{}, ErrNotFound
	}
	if err != nil {
		return models.Comment{}, fmt.Errorf("find comment: %w", err)
	}
	return comment, nil
}

func (s *mongoComments) FindByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	return s.findAll(ctx, bson.M{"post": postID})
}

func (s *mongoComments) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Comment, error) {
	return s.findAll(ctx, bson.M{"user": userID})
}

func (s *mongoComments) findAll(ctx context.Context, filter bson.M) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find comments: %w", err)
	}
	var comments []models.Comment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return comments, nil
}

func (s *mongoComments) Insert(ctx context.Context, comment models.Comment) (primitive.ObjectID, error) {
	res, err := s.col.InsertOne(ctx, comment)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert comment: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (s *mongoComments) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (models.Comment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var comment models.Comment
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"content": content}},
		opts).Decode(&comment)
	if isNoDocuments(err) {
		return models.Comment{}, ErrNotFound
	}
	if err != nil {
		return models.Comment{}, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

func (s *mongoComments) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoComments) DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"post": postID})
	if err != nil {
		return 0, fmt.Errorf("delete comments by post: %w", err)
	}
	return res.DeletedCount, nil
}

func (s *mongoComments) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, fmt.Errorf("delete comments by user: %w", err)
	}
	return res.DeletedCount, nil
}

func (s *mongoComments) Push(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	return pushID(ctx, s.col, id, field, value)
}

func (s *mongoComments) Pull(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	return pullID(ctx, s.col, id, field, value)
}

func (s *mongoComments) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}
