// Package records fronts the record store and announces every successful
// mutation on an event bus, so side channels (WebSocket feed, MQTT, hooks)
// observe changes without the HTTP layer knowing about them.
package records

import (
	"errors"
	"log/slog"

	"people-crud/internal/store"
)

// Service is the single entry point for reading and mutating records.
type Service struct {
	store  store.Store
	events *EventBus
	logger *slog.Logger
}

// NewService creates a service over st.
func NewService(st store.Store, events *EventBus, logger *slog.Logger) *Service {
	return &Service{
		store:  st,
		events: events,
		logger: logger.With("component", "records"),
	}
}

// Events returns the bus carrying record events.
func (s *Service) Events() *EventBus { return s.events }

// List returns all records in storage order.
func (s *Service) List() ([]*store.Record, error) {
	return s.store.ListRecords()
}

// Get returns a single record.
func (s *Service) Get(id string) (*store.Record, error) {
	return s.store.GetRecord(id)
}

// Create stores a new record and emits EventRecordCreated.
func (s *Service) Create(in store.RecordInput) (*store.Record, error) {
	rec, err := s.store.CreateRecord(in)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("record created", "id", rec.ID)
	s.events.Emit(Event{Type: EventRecordCreated, Data: recordData(rec)})
	return rec, nil
}

// Update applies in to the record with the given id. A missing record yields
// (nil, nil): callers report it as an empty result, not an error.
func (s *Service) Update(id string, in store.RecordInput) (*store.Record, error) {
	rec, err := s.store.UpdateRecord(id, in)
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Debug("update of unknown record", "id", id)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.logger.Debug("record updated", "id", rec.ID)
	s.events.Emit(Event{Type: EventRecordUpdated, Data: recordData(rec)})
	return rec, nil
}

// Delete removes the record with the given id. Deleting an absent record succeeds.
func (s *Service) Delete(id string) error {
	if err := s.store.DeleteRecord(id); err != nil {
		return err
	}
	s.logger.Debug("record deleted", "id", id)
	s.events.Emit(Event{Type: EventRecordDeleted, Data: map[string]interface{}{"id": id}})
	return nil
}

func recordData(rec *store.Record) map[string]interface{} {
	return map[string]interface{}{
		"id":   rec.ID,
		"name": rec.Name,
		"age":  rec.Age,
		"city": rec.City,
	}
}
