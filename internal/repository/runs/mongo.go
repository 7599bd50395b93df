package runs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mg "vehicle_finance/internal/config/connections/mongo"
	"vehicle_finance/internal/models"
)

const Collection = "mapper_runs"

// MaxWarnings caps the warnings stored per run document.
const MaxWarnings = 200

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

func (r *MongoRepository) Record(ctx context.Context, run models.MapperRun) error {
	coll, err := r.coll()
	if err != nil {
		return err
	}
	_, err = coll.InsertOne(ctx, prepare(run, time.Now().UTC()))
	return err
}

func prepare(run models.MapperRun, now time.Time) models.MapperRun {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = now
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = now
	}
	if run.Status == "" {
		run.Status = models.RunStatusDone
	}
	if len(run.Warnings) > MaxWarnings {
		run.Warnings = append(run.Warnings[:MaxWarnings:MaxWarnings], "...")
	}
	return run
}

// List returns the latest runs, newest first, optionally for one profile.
func (r *MongoRepository) List(ctx context.Context, profile string, limit int64) ([]models.MapperRun, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}
	filter := bson.M{}
	if profile != "" {
		filter["profile"] = profile
	}
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.MapperRun, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
