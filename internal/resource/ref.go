package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ref is a reference field that arrives either as a bare id string or, when
// the request asked for population, as the full referenced record.
type Ref[T any] struct {
	ID    string
	Value *T
}

// RefTo builds an unpopulated reference.
func RefTo[T any](id string) Ref[T] {
	return Ref[T]{ID: id}
}

// Populated reports whether the backend expanded the reference inline.
func (r Ref[T]) Populated() bool {
	return r.Value != nil
}

func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*r = Ref[T]{}
		return nil
	case trimmed[0] == '"':
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return err
		}
		*r = Ref[T]{ID: id}
		return nil
	case trimmed[0] == '{':
		var ids struct {
			MongoID string `json:"_id"`
			ID      string `json:"id"`
		}
		if err := json.Unmarshal(trimmed, &ids); err != nil {
			return err
		}
		var value T
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		id := ids.MongoID
		if id == "" {
			id = ids.ID
		}
		*r = Ref[T]{ID: id, Value: &value}
		return nil
	default:
		return fmt.Errorf("resource: reference must be an id string or object, got %s", trimmed)
	}
}

// MarshalJSON always writes the bare id; requests never send populated records.
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}
