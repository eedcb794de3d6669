package repositories

import (
	"regexp"
	"strings"

	"github.com/openldn/inbox/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Query holds the optional listing filters. Empty string means no
// constraint on that field.
type Query struct {
	Target     string
	Type       string
	Motivation string
}

// MongoFilter translates the query into a conjunctive MongoDB filter.
// Motivation is a contains-match, so it is pushed down as an escaped regex.
func (q Query) MongoFilter() bson.M {
	filter := bson.M{}
	if q.Type != "" {
		filter["type"] = q.Type
	}
	if q.Target != "" {
		filter["target"] = q.Target
	}
	if q.Motivation != "" {
		filter["motivation"] = bson.M{"$regex": regexp.QuoteMeta(q.Motivation)}
	}
	return filter
}

// IndexedField picks the single field/value pair to filter server-side on
// stores that only support one orderBy/equalTo per request. `type` wins over
// `target` when both are given; motivation is always filtered after the
// fetch. Returns empty strings when nothing can be pushed down.
func (q Query) IndexedField() (string, string) {
	if q.Type != "" {
		return "type", q.Type
	}
	if q.Target != "" {
		return "target", q.Target
	}
	return "", ""
}

// MatchMotivation reports whether the message passes the motivation filter.
// The match is substring-inclusive; a message without a motivation string
// fails any non-empty filter.
func (q Query) MatchMotivation(msg models.Announcement) bool {
	if q.Motivation == "" {
		return true
	}
	motivation, _ := msg["motivation"].(string)
	return strings.Contains(motivation, q.Motivation)
}
