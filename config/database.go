package config

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var client *mongo.Client
var database *mongo.Database

// Collection names used across the application.
const (
	UsersCollection    = "users"
	PostsCollection    = "posts"
	CommentsCollection = "comments"
)

// InitDatabase establishes a connection to MongoDB using configuration values
// and ensures the indexes the application relies on.
func InitDatabase() *mongo.Database {
	if database != nil {
		return database
	}

	c := Get()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	client, err = mongo.Connect(ctx, options.Client().
		ApplyURI(c.MongoURI).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}

	// Ping at startup to surface network/auth problems early instead of at the
	// first query.
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("mongodb ping failed: %v", err)
	}

	database = client.Database(c.MongoDatabase)

	ensureIndexes(ctx, database)

	return database
}

// CloseDatabase disconnects the Mongo client. Used during graceful shutdown.
func CloseDatabase() {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Printf("mongodb disconnect failed: %v", err)
	}
}

func ensureIndexes(ctx context.Context, db *mongo.Database) {
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection(UsersCollection).Indexes().CreateMany(ctx, userIndexes); err != nil {
		log.Printf("failed to ensure user indexes: %v", err)
	}

	postIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := db.Collection(PostsCollection).Indexes().CreateMany(ctx, postIndexes); err != nil {
		log.Printf("failed to ensure post indexes: %v", err)
	}

	commentIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "post", Value: 1}}},
		{Keys: bson.D{{Key: "user", Value: 1}}},
	}
	if _, err := db.Collection(CommentsCollection).Indexes().CreateMany(ctx, commentIndexes); err != nil {
		log.Printf("failed to ensure comment indexes: %v", err)
	}
}
