package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"firebase.google.com/go/v4/db"
	"github.com/openldn/inbox/internal/models"
)

// FirebaseMessageRepository implements MessageRepository over the Firebase
// Realtime Database REST interface. The database can only filter on one
// indexed field per request, so the remaining filters are applied after the
// fetch.
type FirebaseMessageRepository struct {
	ref *db.Ref
}

// NewFirebaseMessageRepository creates a repository rooted at the given
// database path.
func NewFirebaseMessageRepository(client *db.Client, path string) *FirebaseMessageRepository {
	return &FirebaseMessageRepository{ref: client.NewRef(path)}
}

// Insert appends the announcement as a new child and returns the push key
// generated by the database.
func (r *FirebaseMessageRepository) Insert(ctx context.Context, msg models.Announcement, meta models.RequestMeta) (string, error) {
	doc := map[string]interface{}{}
	for k, v := range msg {
		doc[k] = v
	}
	doc[models.MetaField] = meta

	newRef, err := r.ref.Push(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("pushing message: %w", err)
	}
	return newRef.Key, nil
}

// Find retrieves messages matching the query. One field is filtered
// server-side via orderBy/equalTo; motivation is filtered here.
func (r *FirebaseMessageRepository) Find(ctx context.Context, q Query) ([]StoredMessage, error) {
	field, value := q.IndexedField()
	if field == "" {
		return r.findAll(ctx, q)
	}

	nodes, err := r.ref.OrderByChild(field).EqualTo(value).GetOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying messages by %s: %w", field, err)
	}

	messages := make([]StoredMessage, 0, len(nodes))
	for _, node := range nodes {
		var msg models.Announcement
		if err := node.Unmarshal(&msg); err != nil {
			return nil, fmt.Errorf("decoding message %s: %w", node.Key(), err)
		}
		if !q.MatchMotivation(msg) {
			continue
		}
		messages = append(messages, StoredMessage{Key: node.Key(), Data: msg})
	}
	return messages, nil
}

func (r *FirebaseMessageRepository) findAll(ctx context.Context, q Query) ([]StoredMessage, error) {
	var all map[string]models.Announcement
	if err := r.ref.Get(ctx, &all); err != nil {
		return nil, fmt.Errorf("fetching messages: %w", err)
	}

	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	messages := make([]StoredMessage, 0, len(all))
	for _, key := range keys {
		if !q.MatchMotivation(all[key]) {
			continue
		}
		messages = append(messages, StoredMessage{Key: key, Data: all[key]})
	}
	return messages, nil
}

// FindOne fetches a single child by push key. An explicit null result and a
// key that could never be a valid path segment both report not found.
func (r *FirebaseMessageRepository) FindOne(ctx context.Context, key string) (models.Announcement, error) {
	if key == "" || strings.ContainsAny(key, "/.#$[]") {
		return nil, ErrNotFound
	}

	var msg models.Announcement
	if err := r.ref.Child(key).Get(ctx, &msg); err != nil {
		return nil, fmt.Errorf("fetching message %s: %w", key, err)
	}
	if msg == nil {
		return nil, ErrNotFound
	}
	return msg, nil
}

// CountRecentByIP counts messages accepted from the given client IP since
// the cutoff. Only the IP can be filtered server-side; the timestamp check
// happens here.
func (r *FirebaseMessageRepository) CountRecentByIP(ctx context.Context, ip string, since time.Time) (int64, error) {
	nodes, err := r.ref.OrderByChild(models.MetaField + "/ip").EqualTo(ip).GetOrdered(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting recent messages: %w", err)
	}

	var count int64
	for _, node := range nodes {
		var doc struct {
			Meta models.RequestMeta `json:"__meta"`
		}
		if err := node.Unmarshal(&doc); err != nil {
			continue
		}
		if !doc.Meta.ReceivedAt.Before(since) {
			count++
		}
	}
	return count, nil
}
