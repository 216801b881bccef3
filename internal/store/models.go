package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is a stored person.
type Record struct {
	ID   string  `json:"_id"`
	Name string  `json:"name"`
	Age  float64 `json:"age"`
	City string  `json:"city"`
}

// recordStorage is the on-disk form. The ID lives in the bucket key.
type recordStorage struct {
	Name string  `json:"name"`
	Age  float64 `json:"age"`
	City string  `json:"city"`
}

// RecordInput carries the business fields of a create or update request.
// A nil field was not provided.
type RecordInput struct {
	Name *string
	Age  *float64
	City *string
}

// UnmarshalJSON accepts numbers or numeric strings for age and casts
// numbers to text for name and city. Unknown fields, including "_id", are ignored.
func (in *RecordInput) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*in = RecordInput{}

	var err error
	if in.Name, err = castString("name", raw["name"]); err != nil {
		return err
	}
	if in.City, err = castString("city", raw["city"]); err != nil {
		return err
	}
	if in.Age, err = castNumber("age", raw["age"]); err != nil {
		return err
	}
	return nil
}

// MarshalJSON writes only the provided fields.
func (in RecordInput) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 3)
	if in.Name != nil {
		m["name"] = *in.Name
	}
	if in.Age != nil {
		m["age"] = *in.Age
	}
	if in.City != nil {
		m["city"] = *in.City
	}
	return json.Marshal(m)
}

// Validate enforces the required fields of a new record.
func (in RecordInput) Validate() error {
	var missing []string
	if in.Name == nil || *in.Name == "" {
		missing = append(missing, "name")
	}
	if in.Age == nil {
		missing = append(missing, "age")
	}
	if in.City == nil || *in.City == "" {
		missing = append(missing, "city")
	}
	if len(missing) == 0 {
		return nil
	}
	parts := make([]string, len(missing))
	for i, f := range missing {
		parts[i] = fmt.Sprintf("%s: path `%s` is required", f, f)
	}
	return fmt.Errorf("record %w: %s", ErrValidation, strings.Join(parts, ", "))
}

// Apply copies the provided fields onto rec.
func (in RecordInput) Apply(rec *Record) {
	if in.Name != nil {
		rec.Name = *in.Name
	}
	if in.Age != nil {
		rec.Age = *in.Age
	}
	if in.City != nil {
		rec.City = *in.City
	}
}

func castString(field string, raw json.RawMessage) (*string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		s = n.String()
		return &s, nil
	}
	return nil, fmt.Errorf("cast to string failed for value %s at path %q", raw, field)
}

func castNumber(field string, raw json.RawMessage) (*float64, error) {
	if isNull(raw) {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			// An empty form value counts as not provided.
			return nil, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f, nil
		}
	}
	return nil, fmt.Errorf("cast to number failed for value %s at path %q", raw, field)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
