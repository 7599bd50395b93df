package contracts

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vehicle_finance/internal/apperr"
	mg "vehicle_finance/internal/config/connections/mongo"
	"vehicle_finance/internal/models"
	"vehicle_finance/internal/ports"
)

const (
	Collection   = "contracts"
	DefaultLimit = 1000
)

var searchFields = []string{"customer.name", "contract_number", "vehicle.make", "vehicle.model"}

// listProjection keeps list reads small: photos and schedules stay on disk.
var listProjection = bson.M{
	"_id":                         0,
	"id":                          1,
	"contract_number":             1,
	"contract_date":               1,
	"status":                      1,
	"company_name":                1,
	"customer.name":               1,
	"vehicle.make":                1,
	"vehicle.model":               1,
	"vehicle.registration_number": 1,
	"loan.outstanding_amount":     1,
	"loan.emi_amount":             1,
}

type MongoRepository struct {
	m     *mg.Mongo
	limit int64
}

func NewMongoRepository(m *mg.Mongo, limit int64) *MongoRepository {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &MongoRepository{m: m, limit: limit}
}

func (r *MongoRepository) coll() (*mongo.Collection, error) {
	if r.m == nil || r.m.Database == nil {
		return nil, mongo.ErrClientDisconnected
	}
	return r.m.Database.Collection(Collection), nil
}

// EnsureIndexes creates the unique indexes on id and contract_number.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	coll, err := r.coll()
	if err != nil {
		return err
	}
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "contract_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}

// Find returns list-projected contracts in insertion order, capped at the
// configured limit.
func (r *MongoRepository) Find(ctx context.Context, f ports.ContractFilter) ([]models.Contract, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, apperr.Upstream(err)
	}

	opts := options.Find().
		SetProjection(listProjection).
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(r.limit)

	cur, err := coll.Find(ctx, BuildFilter(f), opts)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	defer cur.Close(ctx)

	out := make([]models.Contract, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Upstream(err)
	}
	return out, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.Contract, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, apperr.Upstream(err)
	}

	var out models.Contract
	err = coll.FindOne(ctx, bson.M{"id": id}, options.FindOne().SetProjection(bson.M{"_id": 0})).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Contract not found")
	}
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return &out, nil
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	coll, err := r.coll()
	if err != nil {
		return 0, apperr.Upstream(err)
	}
	n, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, apperr.Upstream(err)
	}
	return n, nil
}

func (r *MongoRepository) InsertMany(ctx context.Context, items []models.Contract) error {
	if len(items) == 0 {
		return nil
	}
	coll, err := r.coll()
	if err != nil {
		return apperr.Upstream(err)
	}
	docs := make([]any, 0, len(items))
	for _, c := range items {
		docs = append(docs, c)
	}
	if _, err := coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

// BuildFilter translates a ContractFilter into a Mongo query. The search
// term is quoted so it always matches as a literal substring.
func BuildFilter(f ports.ContractFilter) bson.M {
	q := bson.M{}
	if f.Search != "" {
		pattern := regexp.QuoteMeta(f.Search)
		or := make(bson.A, 0, len(searchFields))
		for _, field := range searchFields {
			or = append(or, bson.M{field: primitive.Regex{Pattern: pattern, Options: "i"}})
		}
		q["$or"] = or
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	return q
}
