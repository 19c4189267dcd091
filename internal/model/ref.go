package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Ref is a foreign-key reference that upstream data may carry either as
// a bare id ("u1") or as a populated object ({"_id": "u1", "name": ...}).
// Ref.Key() is the single normalization point: every id comparison in the
// codebase goes through it instead of ad hoc type switching.
type Ref struct {
	ID   string
	Name string
}

// NewRef returns an unresolved reference.
func NewRef(id string) Ref {
	return Ref{ID: id}
}

// ResolvedRef returns a reference enriched with a display name.
func ResolvedRef(id, name string) Ref {
	return Ref{ID: id, Name: name}
}

// Key returns the normalized identifier for comparisons.
func (r Ref) Key() string {
	return r.ID
}

// IsZero reports whether the reference carries no id.
func (r Ref) IsZero() bool {
	return r.ID == ""
}

// Resolved reports whether a display name has been attached.
func (r Ref) Resolved() bool {
	return r.Name != ""
}

type refObject struct {
	ID    string `json:"_id,omitempty"`
	AltID string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
}

// UnmarshalJSON accepts both representations.
func (r *Ref) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = id
		r.Name = ""
		return nil
	}

	var obj refObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid reference: %s", string(data))
	}
	r.ID = obj.ID
	if r.ID == "" {
		r.ID = obj.AltID
	}
	r.Name = obj.Name
	return nil
}

// MarshalJSON emits the bare id unless a name has been resolved.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.Name == "" {
		return json.Marshal(r.ID)
	}
	return json.Marshal(refObject{ID: r.ID, Name: r.Name})
}

// Value stores only the raw id; resolved names are presentation state.
func (r Ref) Value() (driver.Value, error) {
	return r.ID, nil
}

func (r *Ref) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		r.ID = ""
	case string:
		r.ID = v
	case []byte:
		r.ID = string(v)
	default:
		return fmt.Errorf("unsupported type for ref: %T", src)
	}
	r.Name = ""
	return nil
}
