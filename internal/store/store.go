package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a requested record does not exist in the store.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID is returned for identifiers the store could never have assigned.
	ErrInvalidID = errors.New("invalid identifier")
	// ErrValidation is returned when a new record lacks a required field.
	ErrValidation = errors.New("validation failed")
)

// Store defines the persistence interface.
type Store interface {
	// ListRecords returns every record in creation order.
	ListRecords() ([]*Record, error)
	GetRecord(id string) (*Record, error)

	// CreateRecord validates in and stores it under a freshly assigned identifier.
	CreateRecord(in RecordInput) (*Record, error)

	// UpdateRecord atomically applies the provided fields and returns the
	// post-update record. Returns ErrNotFound if the record does not exist.
	UpdateRecord(id string, in RecordInput) (*Record, error)

	// DeleteRecord removes a record. Deleting an absent record is not an error.
	DeleteRecord(id string) error

	Close() error
}

// ParseID converts a record identifier into its 16-byte key form.
func ParseID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}
	return u, nil
}
