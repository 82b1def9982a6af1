package mockapi

import (
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is one stored document, shaped as decoded JSON.
type Record = map[string]any

// Collection is an insertion-ordered, concurrency-safe record set.
type Collection struct {
	mu      sync.RWMutex
	order   []string
	records map[string]Record
	now     func() time.Time
}

func newCollection(now func() time.Time) *Collection {
	return &Collection{records: make(map[string]Record), now: now}
}

// All returns copies of every record in insertion order.
func (c *Collection) All() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Record, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, maps.Clone(c.records[id]))
	}
	return out
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func (c *Collection) Get(id string) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[id]
	if !ok {
		return nil, false
	}
	return maps.Clone(rec), true
}

// Insert stores rec, assigning _id when absent and stamping timestamps.
func (c *Collection) Insert(rec Record) Record {
	rec = maps.Clone(rec)
	if rec == nil {
		rec = Record{}
	}
	id, _ := rec["_id"].(string)
	if id == "" {
		id = uuid.NewString()
		rec["_id"] = id
	}
	stamp := c.now().UTC().Format(time.RFC3339)
	if _, ok := rec["createdAt"]; !ok {
		rec["createdAt"] = stamp
	}
	rec["updatedAt"] = stamp

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.records[id]; !exists {
		c.order = append(c.order, id)
	}
	c.records[id] = rec
	return maps.Clone(rec)
}

// Update merges patch into the record. _id and createdAt are immutable.
func (c *Collection) Update(id string, patch Record) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[id]
	if !ok {
		return nil, false
	}
	for k, v := range patch {
		if k == "_id" || k == "createdAt" {
			continue
		}
		rec[k] = v
	}
	rec["updatedAt"] = c.now().UTC().Format(time.RFC3339)
	return maps.Clone(rec), true
}

func (c *Collection) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[id]; !ok {
		return false
	}
	delete(c.records, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Toggle flips field: booleans are negated, published/draft swap. Anything
// else becomes true.
func (c *Collection) Toggle(id, field string) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[id]
	if !ok {
		return nil, false
	}
	switch v := rec[field].(type) {
	case bool:
		rec[field] = !v
	case string:
		if v == "published" {
			rec[field] = "draft"
		} else {
			rec[field] = "published"
		}
	default:
		rec[field] = true
	}
	rec["updatedAt"] = c.now().UTC().Format(time.RFC3339)
	return Record{"_id": id, field: rec[field]}, true
}
