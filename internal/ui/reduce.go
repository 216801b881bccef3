package ui

import "people-crud/internal/store"

// Action is a state transition.
type Action interface {
	action()
}

type (
	// Loaded replaces the record list with a fresh fetch.
	Loaded struct{ Records []store.Record }
	// SearchChanged sets the filter text.
	SearchChanged struct{ Text string }
	// OpenCreate opens an empty form for a new record.
	OpenCreate struct{}
	// OpenEdit opens the form filled from the record with ID.
	OpenEdit struct{ ID string }
	// FieldChanged sets one form input.
	FieldChanged struct {
		Field Field
		Value string
	}
	// ValidationFailed shows the missing-fields message.
	ValidationFailed struct{}
	// Created appends a record the server just stored.
	Created struct{ Record store.Record }
	// Updated replaces the record with the same ID.
	Updated struct{ Record store.Record }
	// Deleted drops the record with ID.
	Deleted struct{ ID string }
	// CloseModal discards the form.
	CloseModal struct{}
)

func (Loaded) action()           {}
func (SearchChanged) action()    {}
func (OpenCreate) action()       {}
func (OpenEdit) action()         {}
func (FieldChanged) action()     {}
func (ValidationFailed) action() {}
func (Created) action()          {}
func (Updated) action()          {}
func (Deleted) action()          {}
func (CloseModal) action()       {}

// Reduce returns the state after applying a. s is not modified; slices are
// copied before they change.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Loaded:
		s.Records = append([]store.Record(nil), a.Records...)

	case SearchChanged:
		s.Search = a.Text

	case OpenCreate:
		s.ModalOpen = true
		s.Form = Form{}
		s.Mode = Creating()

	case OpenEdit:
		i := indexOf(s.Records, a.ID)
		if i < 0 {
			return s
		}
		s.ModalOpen = true
		s.Form = formFrom(s.Records[i])
		s.Mode = Editing(a.ID)

	case FieldChanged:
		switch a.Field {
		case FieldName:
			s.Form.Name = a.Value
		case FieldAge:
			s.Form.Age = a.Value
		case FieldCity:
			s.Form.City = a.Value
		}

	case ValidationFailed:
		s.ShowValidation = true

	case Created:
		recs := make([]store.Record, 0, len(s.Records)+1)
		s.Records = append(append(recs, s.Records...), a.Record)
		s = closeModal(s)

	case Updated:
		if i := indexOf(s.Records, a.Record.ID); i >= 0 {
			s.Records = append([]store.Record(nil), s.Records...)
			s.Records[i] = a.Record
		}
		s = closeModal(s)

	case Deleted:
		i := indexOf(s.Records, a.ID)
		if i >= 0 {
			recs := make([]store.Record, 0, len(s.Records)-1)
			s.Records = append(append(recs, s.Records[:i]...), s.Records[i+1:]...)
		}
		// The edit target is gone; the open form has nothing left to update.
		if id, ok := s.Mode.Target(); ok && id == a.ID {
			s = closeModal(s)
		}

	case CloseModal:
		s = closeModal(s)
	}
	return s
}

func closeModal(s State) State {
	s.ModalOpen = false
	s.Form = Form{}
	s.ShowValidation = false
	s.Mode = Creating()
	return s
}

func indexOf(recs []store.Record, id string) int {
	for i, rec := range recs {
		if rec.ID == id {
			return i
		}
	}
	return -1
}
