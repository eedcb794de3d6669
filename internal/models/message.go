package models

import "time"

// LDPContext is the JSON-LD context applied to every announcement that
// arrives without one, per the W3C Linked Data Platform vocabulary.
const LDPContext = "http://www.w3.org/ns/ldp"

// ContainerType is the @type of the listing envelope.
const ContainerType = "ldp:Container"

// MetaField is the document field holding the request sidecar. It is
// persisted with every announcement and stripped before any response.
const MetaField = "__meta"

// Announcement is a JSON-LD notification document. Announcements are
// schemaless beyond the required `motivation` field, so they are kept as
// plain maps rather than a fixed struct.
type Announcement map[string]interface{}

// RequestMeta records where an announcement came from. It is stored under
// MetaField next to the announcement and never leaves the server.
type RequestMeta struct {
	IP         string    `json:"ip" bson:"ip"`
	Referrer   string    `json:"referrer" bson:"referrer"`
	UserAgent  string    `json:"userAgent" bson:"userAgent"`
	ReceivedAt time.Time `json:"receivedAt" bson:"receivedAt"`
}

// Present builds the client-facing form of a stored record: @id is set to
// the given external identifier and the storage key and request sidecar are
// dropped. The input map is not modified.
func Present(record Announcement, id string) Announcement {
	out := Announcement{"@id": id}
	for k, v := range record {
		if k == "_id" || k == MetaField {
			continue
		}
		out[k] = v
	}
	return out
}
