// Package facet flattens Solr JSON facet responses into category bucket lists.
package facet

import "encoding/json"

// countKey is the document count Solr reports beside the named facets.
const countKey = "count"

// Bucket is a single facet value with its hit counts.
type Bucket struct {
	Value       any `json:"value"`
	Count       int `json:"count"`
	ParentCount int `json:"parentCount,omitempty"`
}

// Fields maps a category name to its buckets in engine order.
type Fields map[string][]Bucket

// Response is the client-facing facet payload.
type Response struct {
	Fields Fields `json:"fields"`
}

type rawBucket struct {
	Val      any `json:"val"`
	Count    int `json:"count"`
	ByParent int `json:"by_parent"`
}

type rawCategory struct {
	Buckets []rawBucket `json:"buckets"`
}

// Format converts the "facets" section of a Solr response.
// Categories without buckets map to an empty list, and ParentCount is only
// set when by_parent is present and non-zero.
func Format(facets map[string]json.RawMessage) Response {
	fields := make(Fields, len(facets))
	for category, raw := range facets {
		if category == countKey {
			continue
		}
		var c rawCategory
		if err := json.Unmarshal(raw, &c); err != nil {
			c = rawCategory{}
		}
		buckets := make([]Bucket, 0, len(c.Buckets))
		for _, b := range c.Buckets {
			buckets = append(buckets, Bucket{Value: b.Val, Count: b.Count, ParentCount: b.ByParent})
		}
		fields[category] = buckets
	}
	return Response{Fields: fields}
}
