// Package dto provides data transfer objects for the webhook HTTP responses.
package dto

import (
	webhookDomain "github.com/allisson/webhook-relay/internal/webhook/domain"
)

// RelayResponse is the acknowledgment returned to the payment provider.
// Forwarded is omitted when no forwarding attempt was made.
type RelayResponse struct {
	Received  bool                          `json:"received"`
	Processed bool                          `json:"processed"`
	Forwarded *bool                         `json:"forwarded,omitempty"`
	Error     string                        `json:"error,omitempty"`
	RetryData *webhookDomain.PurchaseRecord `json:"retry_data,omitempty"`
}

// MissingFieldsResponse reports an event whose purchase record is incomplete.
type MissingFieldsResponse struct {
	Error         string                       `json:"error"`
	Message       string                       `json:"message"`
	MissingFields []string                     `json:"missing_fields"`
	Extracted     webhookDomain.PurchaseRecord `json:"extracted"`
}

// MapResultToResponse converts a relay result to the provider acknowledgment.
func MapResultToResponse(result *webhookDomain.RelayResult) RelayResponse {
	return RelayResponse{
		Received:  true,
		Processed: result.Processed,
		Forwarded: result.Forwarded,
		Error:     result.Error,
		RetryData: result.RetryData,
	}
}

// MapMissingFieldsToResponse converts a validation failure to its response body.
func MapMissingFieldsToResponse(err *webhookDomain.MissingFieldsError) MissingFieldsResponse {
	return MissingFieldsResponse{
		Error:         "missing_required_fields",
		Message:       err.Error(),
		MissingFields: err.Fields,
		Extracted:     err.Record,
	}
}
