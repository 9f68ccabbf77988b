// Package trails implements the Mariposa Trails dataset: trails holding posts
// with media attachment references, merged and versioned against a versioned
// blob store.
package trails

import (
	"encoding/json"

	"github.com/mariposa-trails/trailhead/errors"
)

// Trail is a named collection of posts with a version stamp. Name is the
// stable identity used for merge matching; it is supplied by callers, never
// generated here.
type Trail struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
	Posts   []Post `json:"posts"`
}

// Post is a single content item within a trail, identified by PostID.
// Images and Audio hold attachment references (store paths). Posts carry
// arbitrary additional fields from the client (title, body, coordinates,
// whatever the frontend sends); those round-trip untouched through Extra.
type Post struct {
	PostID  string   `json:"postID"`
	Version int      `json:"version"`
	Images  []string `json:"images,omitempty"`
	Audio   []string `json:"audio,omitempty"`

	// Extra holds free-form fields not modeled above, keyed by JSON name.
	Extra map[string]json.RawMessage `json:"-"`
}

// VersionDoc is the persisted shape of the global version counter.
type VersionDoc struct {
	Version int `json:"version"`
}

// postKnownFields are the JSON keys owned by the Post struct itself.
var postKnownFields = map[string]bool{
	"postID":  true,
	"version": true,
	"images":  true,
	"audio":   true,
}

// UnmarshalJSON decodes a post, routing unknown keys into Extra.
func (p *Post) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	type fields struct {
		PostID  string   `json:"postID"`
		Version int      `json:"version"`
		Images  []string `json:"images"`
		Audio   []string `json:"audio"`
	}
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	p.PostID = f.PostID
	p.Version = f.Version
	p.Images = f.Images
	p.Audio = f.Audio
	p.Extra = nil
	for k, v := range raw {
		if postKnownFields[k] {
			continue
		}
		if p.Extra == nil {
			p.Extra = map[string]json.RawMessage{}
		}
		p.Extra[k] = v
	}
	return nil
}

// MarshalJSON encodes a post, merging Extra back alongside the known fields.
// Absent attachment slots stay absent rather than becoming empty arrays.
func (p Post) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(p.Extra)+4)
	for k, v := range p.Extra {
		out[k] = v
	}
	out["postID"] = p.PostID
	out["version"] = p.Version
	if p.Images != nil {
		out["images"] = p.Images
	}
	if p.Audio != nil {
		out["audio"] = p.Audio
	}
	return json.Marshal(out)
}

// DecodeTrails parses a JSON array of trails. A JSON value of any other shape
// is an invalid request, not a decode detail the caller has to distinguish.
func DecodeTrails(data []byte) ([]Trail, error) {
	var probe interface{}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errors.NewInvalidRequestError("trails payload is not valid JSON: %v", err)
	}
	if _, ok := probe.([]interface{}); !ok {
		return nil, errors.NewInvalidRequestError("trails payload must be a JSON array")
	}

	var ts []Trail
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, errors.NewInvalidRequestError("trails payload malformed: %v", err)
	}
	return ts, nil
}
