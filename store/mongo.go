package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"publicpulse/models"
)

const (
	dbName            = "publicpulse"
	reportsCollection = "reports"
)

// Mongo is the MongoDB-backed Source.
type Mongo struct {
	mc  *mongo.Client
	mdb *mongo.Database
}

// NewMongo connects to MongoDB, verifies the connection, and ensures the
// indices the query patterns rely on.
func NewMongo(ctx context.Context, uri string) (*Mongo, error) {
	clientOpts := options.Client().ApplyURI(uri)
	mc, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("store: mongo connect: %w", err)
	}
	if err := mc.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("store: mongo ping: %w", err)
	}

	m := &Mongo{mc: mc, mdb: mc.Database(dbName)}
	if err := m.ensureIndices(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Close cleanly disconnects from MongoDB.
func (m *Mongo) Close(ctx context.Context) error {
	return m.mc.Disconnect(ctx)
}

// ensureIndices creates the lookup indices if missing. created_at is stored
// as text and the ordering index matches the query sort exactly.
func (m *Mongo) ensureIndices(ctx context.Context) error {
	rc := m.mdb.Collection(reportsCollection)
	if _, err := rc.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "region", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}); err != nil {
		return fmt.Errorf("store: reports indices: %w", err)
	}
	return nil
}

// predicates translates the equality constraints of q into a bson filter.
// The pagination cursor is handled separately.
func predicates(q Query) bson.M {
	filter := bson.M{}
	if regionConstrained(q) {
		filter["region"] = q.Region
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.Agency != "" {
		filter["agency"] = q.Agency
	}
	if q.Importance != "" {
		filter["importance"] = q.Importance
	}
	return filter
}

// Query returns matching complaints, newest first. When q.StartAfter is set
// the result continues strictly after that record in the sort order.
func (m *Mongo) Query(ctx context.Context, q Query) ([]models.Complaint, error) {
	filter := predicates(q)
	if c := q.StartAfter; c != nil {
		// Continue the (created_at desc, _id desc) walk past the cursor.
		after := bson.A{
			bson.M{"created_at": bson.M{"$lt": c.CreatedAt}},
			bson.M{"created_at": c.CreatedAt, "_id": bson.M{"$lt": c.ID}},
		}
		if len(filter) == 0 {
			filter = bson.M{"$or": after}
		} else {
			filter = bson.M{"$and": bson.A{filter, bson.M{"$or": after}}}
		}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cursor, err := m.mdb.Collection(reportsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("store: query reports: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Complaint
	for cursor.Next(ctx) {
		var doc models.Complaint
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("store: decode report: %w", err)
		}
		out = append(out, doc)
	}
	return out, cursor.Err()
}

// Count returns the number of records matching the equality predicates.
func (m *Mongo) Count(ctx context.Context, q Query) (int64, error) {
	n, err := m.mdb.Collection(reportsCollection).CountDocuments(ctx, predicates(q))
	if err != nil {
		return 0, fmt.Errorf("store: count reports: %w", err)
	}
	return n, nil
}

// Insert stores a newly submitted complaint.
func (m *Mongo) Insert(ctx context.Context, c *models.Complaint) error {
	if _, err := m.mdb.Collection(reportsCollection).InsertOne(ctx, c); err != nil {
		return fmt.Errorf("store: insert report: %w", err)
	}
	return nil
}
