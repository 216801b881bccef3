package ui

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"people-crud/internal/store"
)

const (
	// DeletePrompt is asked before a record is removed.
	DeletePrompt = "Are you sure you want to delete the data?"
	// ValidationMessage is shown while ShowValidation is set.
	ValidationMessage = "Please enter all fields!"
)

// ErrIncompleteForm is returned by Submit when a field is blank. No request is sent.
var ErrIncompleteForm = errors.New("incomplete form")

// API is the record service as seen by the client.
type API interface {
	ListRecords(ctx context.Context) ([]store.Record, error)
	CreateRecord(ctx context.Context, in store.RecordInput) (*store.Record, error)
	UpdateRecord(ctx context.Context, id string, in store.RecordInput) (*store.Record, error)
	DeleteRecord(ctx context.Context, id string) (string, error)
}

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(prompt string) bool

// Controller turns user actions into API calls and state transitions.
// Local state changes only after the API call succeeds; failures are
// logged and leave the state as it was.
type Controller struct {
	api     API
	confirm ConfirmFunc
	logger  *slog.Logger

	mu    sync.Mutex
	state State
}

// NewController creates a controller with an empty state.
func NewController(api API, confirm ConfirmFunc, logger *slog.Logger) *Controller {
	return &Controller{
		api:     api,
		confirm: confirm,
		logger:  logger.With("component", "ui"),
	}
}

// State returns the current state. Callers must not modify its slices.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Filtered returns the records currently shown.
func (c *Controller) Filtered() []store.Record {
	return c.State().Filtered()
}

func (c *Controller) dispatch(a Action) {
	c.mu.Lock()
	c.state = Reduce(c.state, a)
	c.mu.Unlock()
}

// Load fetches every record.
func (c *Controller) Load(ctx context.Context) error {
	recs, err := c.api.ListRecords(ctx)
	if err != nil {
		c.logger.Error("Error fetching data", "err", err)
		return err
	}
	c.dispatch(Loaded{Records: recs})
	return nil
}

// Search sets the filter text. It never calls the API.
func (c *Controller) Search(text string) {
	c.dispatch(SearchChanged{Text: text})
}

// OpenCreate opens an empty form.
func (c *Controller) OpenCreate() {
	c.dispatch(OpenCreate{})
}

// OpenEdit opens the form for the record with id. Unknown ids are ignored.
func (c *Controller) OpenEdit(id string) {
	c.dispatch(OpenEdit{ID: id})
}

// SetField changes one form input.
func (c *Controller) SetField(f Field, value string) {
	c.dispatch(FieldChanged{Field: f, Value: value})
}

// Close dismisses the form without saving.
func (c *Controller) Close() {
	c.dispatch(CloseModal{})
}

// Submit creates or updates a record from the form, depending on the mode.
func (c *Controller) Submit(ctx context.Context) error {
	st := c.State()
	if !st.Form.Valid() {
		c.dispatch(ValidationFailed{})
		return ErrIncompleteForm
	}
	in, err := st.Form.Input()
	if err != nil {
		c.logger.Error("Error submitting record", "err", err)
		return err
	}

	id, editing := st.Mode.Target()
	if !editing {
		rec, err := c.api.CreateRecord(ctx, in)
		if err != nil {
			c.logger.Error("Error adding new record", "err", err)
			return err
		}
		c.dispatch(Created{Record: *rec})
		return nil
	}

	if _, err := c.api.UpdateRecord(ctx, id, in); err != nil {
		c.logger.Error("Error updating record", "id", id, "err", err)
		return err
	}
	// The submitted values are what the server now holds.
	rec := store.Record{ID: id}
	in.Apply(&rec)
	c.dispatch(Updated{Record: rec})
	return nil
}

// Remove deletes the record with id after the user confirms. Without a
// ConfirmFunc nothing is ever deleted. It reports whether the record was deleted.
func (c *Controller) Remove(ctx context.Context, id string) (bool, error) {
	if c.confirm == nil || !c.confirm(DeletePrompt) {
		return false, nil
	}
	if _, err := c.api.DeleteRecord(ctx, id); err != nil {
		c.logger.Error("Error deleting record", "id", id, "err", err)
		return false, err
	}
	c.dispatch(Deleted{ID: id})
	return true, nil
}
