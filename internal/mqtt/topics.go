//go:build !no_mqtt

package mqtt

import (
	"encoding/json"

	"people-crud/internal/records"
	"people-crud/internal/store"
)

// message is one retained publication.
type message struct {
	Topic   string // e.g. "people/records/0192b3a4-..."
	Payload []byte // JSON record, empty clears the topic
}

func bridgeStateTopic(prefix string) string {
	return prefix + "/bridge/state"
}

func recordTopic(prefix, id string) string {
	return prefix + "/records/" + id
}

// buildRecordMessage publishes rec under its own topic.
func buildRecordMessage(prefix string, rec *store.Record) message {
	return message{
		Topic:   recordTopic(prefix, rec.ID),
		Payload: mustJSON(rec),
	}
}

// buildClearMessage removes the retained record stored at id's topic.
func buildClearMessage(prefix, id string) message {
	return message{Topic: recordTopic(prefix, id), Payload: []byte{}}
}

// buildEventMessage maps a record event to the message it publishes.
// It returns false for events that carry no record id.
func buildEventMessage(prefix string, event records.Event) (message, bool) {
	id, _ := event.Data["id"].(string)
	if id == "" {
		return message{}, false
	}

	switch event.Type {
	case records.EventRecordCreated, records.EventRecordUpdated:
		rec := &store.Record{ID: id}
		rec.Name, _ = event.Data["name"].(string)
		rec.Age, _ = event.Data["age"].(float64)
		rec.City, _ = event.Data["city"].(string)
		return buildRecordMessage(prefix, rec), true
	case records.EventRecordDeleted:
		return buildClearMessage(prefix, id), true
	}
	return message{}, false
}

func mustJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
