package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openldn/inbox/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no message exists for a key. Malformed keys
// report the same error so the identifier format is never leaked.
var ErrNotFound = errors.New("message not found")

// ErrUnavailable is returned when the backing store cannot be reached.
var ErrUnavailable = errors.New("message store unavailable")

// StoredMessage pairs a persisted announcement with its storage key.
type StoredMessage struct {
	Key  string
	Data models.Announcement
}

// MessageRepository defines the interface for announcement persistence.
type MessageRepository interface {
	Insert(ctx context.Context, msg models.Announcement, meta models.RequestMeta) (string, error)
	Find(ctx context.Context, q Query) ([]StoredMessage, error)
	FindOne(ctx context.Context, key string) (models.Announcement, error)
	CountRecentByIP(ctx context.Context, ip string, since time.Time) (int64, error)
}

// MongoMessageRepository implements MessageRepository for MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new MongoMessageRepository over the
// named collection.
func NewMongoMessageRepository(db *mongo.Database, collection string) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection(collection)}
}

// Insert persists a new announcement with its request sidecar and returns
// the assigned storage key.
func (r *MongoMessageRepository) Insert(ctx context.Context, msg models.Announcement, meta models.RequestMeta) (string, error) {
	doc := bson.M{}
	for k, v := range msg {
		doc[k] = v
	}
	doc[models.MetaField] = meta

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if errors.Is(err, mongo.ErrClientDisconnected) {
			return "", ErrUnavailable
		}
		return "", fmt.Errorf("inserting message: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted ID type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// Find retrieves all messages matching the query. Every filter, including
// motivation, is pushed into the MongoDB query.
func (r *MongoMessageRepository) Find(ctx context.Context, q Query) ([]StoredMessage, error) {
	cursor, err := r.collection.Find(ctx, q.MongoFilter())
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("reading messages: %w", err)
	}

	messages := make([]StoredMessage, 0, len(docs))
	for _, doc := range docs {
		oid, ok := doc["_id"].(primitive.ObjectID)
		if !ok {
			continue
		}
		messages = append(messages, StoredMessage{Key: oid.Hex(), Data: models.Announcement(doc)})
	}
	return messages, nil
}

// FindOne retrieves a single message by storage key. A key that is not a
// well-formed ObjectID is reported as not found, never queried.
func (r *MongoMessageRepository) FindOne(ctx context.Context, key string) (models.Announcement, error) {
	oid, err := primitive.ObjectIDFromHex(key)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc bson.M
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching message %s: %w", key, err)
	}
	return models.Announcement(doc), nil
}

// CountRecentByIP counts messages accepted from the given client IP since
// the cutoff, using the request sidecar stamped at insert time.
func (r *MongoMessageRepository) CountRecentByIP(ctx context.Context, ip string, since time.Time) (int64, error) {
	filter := bson.M{
		models.MetaField + ".ip":         ip,
		models.MetaField + ".receivedAt": bson.M{"$gte": since},
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("counting recent messages: %w", err)
	}
	return count, nil
}
