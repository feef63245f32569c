package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/barkshad/Real-estate/internal/models"
	"github.com/barkshad/Real-estate/internal/store"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	propertiesCollection = "properties"
	settingsCollection   = "settings"
	inquiriesCollection  = "inquiries"
	accountsCollection   = "accounts"
)

// MongoStore keeps each record type in its own collection
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(ctx context.Context, uri, dbname string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoStore{client: client, db: client.Database(dbname)}, nil
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// InitSchema creates the indexes the queries rely on
func (m *MongoStore) InitSchema(ctx context.Context) error {
	indexes := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{propertiesCollection, mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
		{propertiesCollection, mongo.IndexModel{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{inquiriesCollection, mongo.IndexModel{Keys: bson.D{{Key: "created_at", Value: -1}}}},
		{accountsCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
	}

	for _, idx := range indexes {
		if _, err := m.db.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.collection, err)
		}
	}
	return nil
}

func (m *MongoStore) CreateProperty(ctx context.Context, draft models.PropertyDraft, ownerID string) (*models.Property, error) {
	p := draft.ToProperty(ownerID, time.Now().UTC())
	p.ID = uuid.NewString()
	if _, err := m.db.Collection(propertiesCollection).InsertOne(ctx, p); err != nil {
		return nil, translateMongo(err)
	}
	return &p, nil
}

func (m *MongoStore) DeleteProperty(ctx context.Context, id string) error {
	result, err := m.db.Collection(propertiesCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateMongo(err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (m *MongoStore) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	var p models.Property
	if err := m.db.Collection(propertiesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translateMongo(err)
	}
	return &p, nil
}

// ListProperties returns listings newest first, optionally for one owner
func (m *MongoStore) ListProperties(ctx context.Context, ownerID string) ([]models.Property, error) {
	filter := bson.M{}
	if ownerID != "" {
		filter["owner_id"] = ownerID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})

	cursor, err := m.db.Collection(propertiesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, translateMongo(err)
	}
	defer cursor.Close(ctx)

	properties := []models.Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, translateMongo(err)
	}
	return properties, nil
}

func (m *MongoStore) GetSettings(ctx context.Context) (*models.SiteSettings, error) {
	var s models.SiteSettings
	err := m.db.Collection(settingsCollection).FindOne(ctx, bson.M{"_id": models.SettingsDocumentID}).Decode(&s)
	if err != nil {
		return nil, translateMongo(err)
	}
	return &s, nil
}

// MergeSettings $sets the patched fields on the singleton document,
// creating it when missing.
func (m *MongoStore) MergeSettings(ctx context.Context, patch models.SettingsPatch) (*models.SiteSettings, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for key, value := range patch.Fields() {
		set[key] = value
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var merged models.SiteSettings
	err := m.db.Collection(settingsCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": models.SettingsDocumentID}, bson.M{"$set": set}, opts).
		Decode(&merged)
	if err != nil {
		return nil, translateMongo(err)
	}
	return &merged, nil
}

func (m *MongoStore) CreateInquiry(ctx context.Context, draft models.InquiryDraft) (*models.Inquiry, error) {
	inq := draft.ToInquiry(time.Now().UTC())
	inq.ID = uuid.NewString()
	if _, err := m.db.Collection(inquiriesCollection).InsertOne(ctx, inq); err != nil {
		return nil, translateMongo(err)
	}
	return &inq, nil
}

func (m *MongoStore) ListInquiries(ctx context.Context) ([]models.Inquiry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.db.Collection(inquiriesCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translateMongo(err)
	}
	defer cursor.Close(ctx)

	inquiries := []models.Inquiry{}
	if err := cursor.All(ctx, &inquiries); err != nil {
		return nil, translateMongo(err)
	}
	return inquiries, nil
}

func (m *MongoStore) SetInquiryStatus(ctx context.Context, id string, status models.InquiryStatus) error {
	result, err := m.db.Collection(inquiriesCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return translateMongo(err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (m *MongoStore) CreateAccount(ctx context.Context, account *models.Account) error {
	account.Email = strings.ToLower(account.Email)
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	_, err := m.db.Collection(accountsCollection).InsertOne(ctx, account)
	return translateMongo(err)
}

func (m *MongoStore) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := m.db.Collection(accountsCollection).
		FindOne(ctx, bson.M{"email": strings.ToLower(email)}).
		Decode(&a)
	if err != nil {
		return nil, translateMongo(err)
	}
	return &a, nil
}

// Watch follows the properties change stream and calls onChange for every
// insert, update or delete, including ones made by other instances. It
// blocks until ctx is done or the stream fails; change streams need a
// replica set, so callers should treat an early error as "not supported".
func (m *MongoStore) Watch(ctx context.Context, onChange func()) error {
	stream, err := m.db.Collection(propertiesCollection).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return fmt.Errorf("watch properties: %w", err)
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		onChange()
	}
	if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch properties: %w", err)
	}
	return nil
}

// translateMongo maps driver errors onto the store sentinels
func translateMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrConflict
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 13 { // Unauthorized
		return store.ErrPermissionDenied
	}
	return err
}
