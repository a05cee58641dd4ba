package service

import (
	"bytes"
	"encoding/json"

	webhookDomain "github.com/allisson/webhook-relay/internal/webhook/domain"
)

// parseEvent decodes a provider event envelope.
// Any syntactically valid JSON is accepted; bodies that are not objects, or that lack
// type/data fields, produce an event with empty values that is later filtered out.
func parseEvent(payload []byte) (*webhookDomain.Event, error) {
	if !json.Valid(payload) {
		return nil, webhookDomain.ErrMalformedPayload
	}

	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()

	var raw any
	if err := decoder.Decode(&raw); err != nil {
		return nil, webhookDomain.ErrMalformedPayload
	}

	envelope, _ := raw.(map[string]any)

	id, _ := lookupString(envelope, lookupPath{"id"})
	eventType, _ := lookupString(envelope, lookupPath{"type"})
	object, _ := lookup(envelope, lookupPath{"data", "object"}).(map[string]any)

	return &webhookDomain.Event{
		ID:     id,
		Type:   webhookDomain.EventType(eventType),
		Object: object,
	}, nil
}
