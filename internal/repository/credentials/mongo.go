package credentials

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vehicle_finance/internal/apperr"
	mg "vehicle_finance/internal/config/connections/mongo"
	"vehicle_finance/internal/models"
)

const Collection = "users"

type MongoRepository struct {
	m *mg.Mongo
}

func NewMongoRepository(m *mg.Mongo) *MongoRepository {
	return &MongoRepository{m: m}
}

func (r *MongoRepository) coll() (*mongo.Collection, error) {
	if r.m == nil || r.m.Database == nil {
		return nil, mongo.ErrClientDisconnected
	}
	return r.m.Database.Collection(Collection), nil
}

func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	coll, err := r.coll()
	if err != nil {
		return err
	}
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *MongoRepository) FindByUsername(ctx context.Context, username string) (*models.Credential, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	var out models.Credential
	err = coll.FindOne(ctx, bson.M{"username": username}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return &out, nil
}

func (r *MongoRepository) Create(ctx context.Context, c models.Credential) error {
	coll, err := r.coll()
	if err != nil {
		return apperr.Upstream(err)
	}
	doc := bson.D{
		{Key: "username", Value: c.Username},
		{Key: "hashed_password", Value: c.HashedPassword},
		{Key: "created_at", Value: c.CreatedAt},
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return apperr.Upstream(err)
	}
	return nil
}
