package mongo

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoInternal is a struct that contains a MongoDB client
type MongoInternal struct {
	client *mongo.Client
	db     *mongo.Database
}

// Config holds the MongoDB connection settings
type Config struct {
	URI      string
	Database string
}

// ConfigFromEnv reads MONGO_URI and MONGO_DATABASE
func ConfigFromEnv() Config {
	cfg := Config{
		URI:      os.Getenv("MONGO_URI"),
		Database: os.Getenv("MONGO_DATABASE"),
	}
	if cfg.Database == "" {
		cfg.Database = "sindicato"
	}
	return cfg
}

// NewMongoInternal is a function that returns a new MongoInternal struct
func NewMongoInternal(cfg Config) (*MongoInternal, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("MONGO_URI is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)

	opts := options.Client().ApplyURI(cfg.URI).SetServerAPIOptions(serverAPI)

	// Create a new client and connect to the server
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}

	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}

	return &MongoInternal{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

// Ping checks the connection
func (m *MongoInternal) Ping(ctx context.Context) error {
	return m.client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

// Close disconnects the client
func (m *MongoInternal) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
