// Package ui holds the record table client: an explicit state value, the
// transitions that change it, and a controller that talks to the API.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"people-crud/internal/store"
)

// Mode tells whether the form creates a new record or edits an existing one.
type Mode struct {
	id      string
	editing bool
}

// Creating is the mode of a form for a new record.
func Creating() Mode { return Mode{} }

// Editing is the mode of a form for the record with the given id.
func Editing(id string) Mode { return Mode{id: id, editing: true} }

// Target returns the id under edit, or false in Creating mode.
func (m Mode) Target() (string, bool) { return m.id, m.editing }

func (m Mode) String() string {
	if m.editing {
		return "editing(" + m.id + ")"
	}
	return "creating"
}

// Field names a form input.
type Field string

const (
	FieldName Field = "name"
	FieldAge  Field = "age"
	FieldCity Field = "city"
)

// Form holds the text of the modal inputs.
type Form struct {
	Name string
	Age  string
	City string
}

func formFrom(rec store.Record) Form {
	return Form{
		Name: rec.Name,
		Age:  strconv.FormatFloat(rec.Age, 'f', -1, 64),
		City: rec.City,
	}
}

// Valid reports whether every field has non-blank text.
func (f Form) Valid() bool {
	return strings.TrimSpace(f.Name) != "" &&
		strings.TrimSpace(f.Age) != "" &&
		strings.TrimSpace(f.City) != ""
}

// Input converts the form into an API request body.
func (f Form) Input() (store.RecordInput, error) {
	age, err := strconv.ParseFloat(strings.TrimSpace(f.Age), 64)
	if err != nil {
		return store.RecordInput{}, fmt.Errorf("age %q is not a number", f.Age)
	}
	name, city := f.Name, f.City
	return store.RecordInput{Name: &name, Age: &age, City: &city}, nil
}

// State is everything the record table shows.
type State struct {
	Records        []store.Record
	Search         string
	ModalOpen      bool
	Form           Form
	ShowValidation bool
	Mode           Mode
}

// Filtered is the part of Records matching Search.
func (s State) Filtered() []store.Record {
	return Filter(s.Records, s.Search)
}

// Filter returns the records whose name or city contains search, ignoring case.
// An empty search matches everything. The input slice is never modified.
func Filter(records []store.Record, search string) []store.Record {
	if search == "" {
		return records
	}
	q := strings.ToUpper(search)
	out := make([]store.Record, 0, len(records))
	for _, rec := range records {
		if strings.Contains(strings.ToUpper(rec.Name), q) || strings.Contains(strings.ToUpper(rec.City), q) {
			out = append(out, rec)
		}
	}
	return out
}
