// Package mongo implements storage.Storage on a MongoDB collection.
//
// Each user is one document. The _id is the ObjectID MongoDB assigns on
// insert and is exposed to callers as its hex string. On startup the
// collection is created with a $jsonSchema validator so the server itself
// refuses documents that lack name, age or gender.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/aanand-mishra/users-api/internal/config"
	"github.com/aanand-mishra/users-api/internal/storage"
	"github.com/aanand-mishra/users-api/internal/types"
)

// Server error codes this package reacts to.
const (
	codeNamespaceExists          = 48
	codeDocumentValidationFailed = 121
)

// Mongo is the document-store implementation of storage.Storage.
// *mongo.Client is safe for concurrent use and pools its connections.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ storage.Storage = (*Mongo)(nil)

// userDocument is the BSON shape of a stored user.
type userDocument struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Name   string             `bson:"name"`
	Age    int                `bson:"age"`
	Gender string             `bson:"gender"`
}

func (d userDocument) toUser() types.User {
	return types.User{ID: d.ID.Hex(), Name: d.Name, Age: d.Age, Gender: d.Gender}
}

// New connects to cfg.Storage.URI, verifies the connection and makes sure
// the users collection exists with its validator.
func New(ctx context.Context, cfg *config.Config) (*Mongo, error) {
	opts := options.Client().
		ApplyURI(cfg.Storage.URI).
		SetServerSelectionTimeout(cfg.Storage.Timeout).
		SetConnectTimeout(cfg.Storage.Timeout).
		SetTimeout(cfg.Storage.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo.New: connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.New: ping: %w", err)
	}

	db := client.Database(cfg.Storage.Database)
	if err := ensureCollection(ctx, db, cfg.Storage.Collection); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	return &Mongo{client: client, coll: db.Collection(cfg.Storage.Collection)}, nil
}

// ensureCollection creates the collection with its schema validator.
// An existing collection is left as it is.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) error {
	validator := bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "age", "gender"},
			"properties": bson.M{
				"name":   bson.M{"bsonType": "string", "minLength": 1},
				"age":    bson.M{"bsonType": bson.A{"int", "long", "double"}, "minimum": 1},
				"gender": bson.M{"bsonType": "string", "minLength": 1},
			},
		},
	}

	err := db.CreateCollection(ctx, name, options.CreateCollection().SetValidator(validator))
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == codeNamespaceExists {
		return nil
	}
	if err != nil {
		return fmt.Errorf("mongo.New: create collection %s: %w", name, err)
	}
	return nil
}

// ListUsers returns every document ordered by _id. ObjectIDs grow with
// creation time, so this is insertion order.
func (m *Mongo) ListUsers(ctx context.Context) ([]types.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := m.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: find: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("ListUsers: decode: %w", err)
	}

	users := make([]types.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toUser())
	}
	return users, nil
}

// CreateUser inserts a new document and returns it with its ObjectID.
func (m *Mongo) CreateUser(ctx context.Context, in types.UserInput) (types.User, error) {
	doc := userDocument{Name: in.Name, Age: in.Age, Gender: in.Gender}

	res, err := m.coll.InsertOne(ctx, doc)
	if err != nil {
		return types.User{}, fmt.Errorf("CreateUser: insert: %w", mapValidation(err))
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return types.User{}, fmt.Errorf("CreateUser: unexpected id type %T", res.InsertedID)
	}
	doc.ID = id
	return doc.toUser(), nil
}

// GetUserByID fetches one document.
func (m *Mongo) GetUserByID(ctx context.Context, id string) (types.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.User{}, storage.ErrNotFound
	}

	var doc userDocument
	err = m.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return types.User{}, storage.ErrNotFound
	}
	if err != nil {
		return types.User{}, fmt.Errorf("GetUserByID: find: %w", err)
	}
	return doc.toUser(), nil
}

// UpdateUserByID sets the three business fields and returns the document
// after the update. The write is atomic per document.
func (m *Mongo) UpdateUserByID(ctx context.Context, id string, in types.UserInput) (types.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.User{}, storage.ErrNotFound
	}

	update := bson.M{"$set": bson.M{"name": in.Name, "age": in.Age, "gender": in.Gender}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err = m.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return types.User{}, storage.ErrNotFound
	}
	if err != nil {
		return types.User{}, fmt.Errorf("UpdateUserByID: find and update: %w", mapValidation(err))
	}
	return doc.toUser(), nil
}

// DeleteUserByID removes one document.
func (m *Mongo) DeleteUserByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return storage.ErrNotFound
	}

	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("DeleteUserByID: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Ping checks the primary is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client, waiting for in-use connections up to the
// context deadline.
func (m *Mongo) Close(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	return m.client.Disconnect(ctx)
}

// mapValidation turns a DocumentValidationFailure into ErrInvalidUser.
func mapValidation(err error) error {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == codeDocumentValidationFailed {
				return fmt.Errorf("%s: %w", e.Message, storage.ErrInvalidUser)
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == codeDocumentValidationFailed {
		return fmt.Errorf("%s: %w", ce.Message, storage.ErrInvalidUser)
	}
	return err
}
