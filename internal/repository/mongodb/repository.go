package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/msallal/yawmia/internal/domain/models"
)

const (
	identitiesColl = "identities"
	profilesColl   = "user_profiles"
	entriesColl    = "daily_entries"
	advancesColl   = "monthly_advances"
)

// Repository implements repository.Store on top of MongoDB.
type Repository struct {
	client *mongo.Client
	dbName string
}

// New connects to MongoDB, verifies the connection and ensures the unique
// indexes backing the upsert keys.
func New(ctx context.Context, uri, dbName string) (*Repository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &Repository{client: client, dbName: dbName}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	return r, nil
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *Repository) coll(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

func (r *Repository) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		identitiesColl: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		profilesColl: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		},
		entriesColl: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "date", Value: 1}}},
		},
		advancesColl: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "year_month", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
	}

	for name, models := range specs {
		if _, err := r.coll(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("collection %s: %w", name, err)
		}
	}

	return nil
}

// WithTransaction runs fn inside a MongoDB session transaction.
func (r *Repository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

// findOne decodes a single document into out, mapping ErrNoDocuments to a
// nil result.
func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	err := coll.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) ([]T, error) {
	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) InsertIdentity(ctx context.Context, identity models.Identity) (models.Identity, error) {
	identity.ID = newID()
	if _, err := r.coll(identitiesColl).InsertOne(ctx, identity); err != nil {
		return models.Identity{}, fmt.Errorf("insert identity: %w", err)
	}
	return identity, nil
}

func (r *Repository) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	return findOne[models.Identity](ctx, r.coll(identitiesColl), bson.M{"_id": id})
}

func (r *Repository) GetIdentityByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return findOne[models.Identity](ctx, r.coll(identitiesColl), bson.M{"email": email})
}

func (r *Repository) DeleteIdentity(ctx context.Context, id string) error {
	_, err := r.coll(identitiesColl).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *Repository) InsertProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error) {
	profile.ID = newID()
	if _, err := r.coll(profilesColl).InsertOne(ctx, profile); err != nil {
		return models.UserProfile{}, fmt.Errorf("insert profile: %w", err)
	}
	return profile, nil
}

func (r *Repository) GetProfileByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	return findOne[models.UserProfile](ctx, r.coll(profilesColl), bson.M{"user_id": userID})
}

func (r *Repository) GetProfileByUsername(ctx context.Context, username string) (*models.UserProfile, error) {
	return findOne[models.UserProfile](ctx, r.coll(profilesColl), bson.M{"username": username})
}

func (r *Repository) ListProfiles(ctx context.Context) ([]models.UserProfile, error) {
	return findAll[models.UserProfile](ctx, r.coll(profilesColl), bson.M{})
}

func (r *Repository) CountProfiles(ctx context.Context) (int64, error) {
	return r.coll(profilesColl).CountDocuments(ctx, bson.M{})
}

func (r *Repository) UpdateProfile(ctx context.Context, profile models.UserProfile) error {
	res, err := r.coll(profilesColl).ReplaceOne(ctx, bson.M{"_id": profile.ID}, profile)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (r *Repository) DeleteProfile(ctx context.Context, id string) error {
	_, err := r.coll(profilesColl).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *Repository) InsertEntry(ctx context.Context, entry models.DailyEntry) (models.DailyEntry, error) {
	entry.ID = newID()
	if _, err := r.coll(entriesColl).InsertOne(ctx, entry); err != nil {
		return models.DailyEntry{}, fmt.Errorf("insert entry: %w", err)
	}
	return entry, nil
}

func (r *Repository) UpdateEntry(ctx context.Context, entry models.DailyEntry) error {
	res, err := r.coll(entriesColl).ReplaceOne(ctx, bson.M{"_id": entry.ID}, entry)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrEntryNotFound
	}
	return nil
}

func (r *Repository) GetEntryByUserAndDate(ctx context.Context, userID, date string) (*models.DailyEntry, error) {
	return findOne[models.DailyEntry](ctx, r.coll(entriesColl), bson.M{"user_id": userID, "date": date})
}

func (r *Repository) ListEntriesByUser(ctx context.Context, userID string) ([]models.DailyEntry, error) {
	return findAll[models.DailyEntry](ctx, r.coll(entriesColl), bson.M{"user_id": userID})
}

func (r *Repository) ListAllEntries(ctx context.Context) ([]models.DailyEntry, error) {
	return findAll[models.DailyEntry](ctx, r.coll(entriesColl), bson.M{})
}

func (r *Repository) DeleteEntry(ctx context.Context, id string) error {
	_, err := r.coll(entriesColl).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *Repository) DeleteEntriesByUser(ctx context.Context, userID string) error {
	_, err := r.coll(entriesColl).DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}

func (r *Repository) DeleteAllEntries(ctx context.Context) error {
	_, err := r.coll(entriesColl).DeleteMany(ctx, bson.M{})
	return err
}

func (r *Repository) GetAdvance(ctx context.Context, userID, yearMonth string) (*models.MonthlyAdvance, error) {
	return findOne[models.MonthlyAdvance](ctx, r.coll(advancesColl), bson.M{"user_id": userID, "year_month": yearMonth})
}

func (r *Repository) UpsertAdvance(ctx context.Context, advance models.MonthlyAdvance) error {
	filter := bson.M{"user_id": advance.UserID, "year_month": advance.YearMonth}
	update := bson.M{
		"$set": bson.M{
			"total_advances": advance.TotalAdvances,
			"updated_at":     advance.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":        newID(),
			"user_id":    advance.UserID,
			"year_month": advance.YearMonth,
		},
	}
	_, err := r.coll(advancesColl).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert advance: %w", err)
	}
	return nil
}

func (r *Repository) ListAllAdvances(ctx context.Context) ([]models.MonthlyAdvance, error) {
	return findAll[models.MonthlyAdvance](ctx, r.coll(advancesColl), bson.M{})
}

func (r *Repository) DeleteAdvance(ctx context.Context, userID, yearMonth string) error {
	_, err := r.coll(advancesColl).DeleteOne(ctx, bson.M{"user_id": userID, "year_month": yearMonth})
	return err
}

func (r *Repository) DeleteAdvancesByUser(ctx context.Context, userID string) error {
	_, err := r.coll(advancesColl).DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}

func (r *Repository) DeleteAllAdvances(ctx context.Context) error {
	_, err := r.coll(advancesColl).DeleteMany(ctx, bson.M{})
	return err
}
