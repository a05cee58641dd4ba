package domain

// Outcome is the terminal state reached by one inbound webhook request.
type Outcome string

const (
	OutcomeRejected      Outcome = "rejected"
	OutcomeFilteredOut   Outcome = "filtered_out"
	OutcomeInvalid       Outcome = "invalid"
	OutcomeForwarded     Outcome = "forwarded"
	OutcomeForwardFailed Outcome = "forward_failed"
)

// RelayResult describes what happened to an accepted request.
// Forwarded is nil when no forwarding attempt was made.
type RelayResult struct {
	EventID   string
	EventType EventType
	Outcome   Outcome
	Processed bool
	Forwarded *bool
	Error     string
	RetryData *PurchaseRecord
	Record    *PurchaseRecord
}

// NewFilteredResult builds the acknowledgment for an event type that is not relayed.
func NewFilteredResult(event *Event) *RelayResult {
	return &RelayResult{
		EventID:   event.ID,
		EventType: event.Type,
		Outcome:   OutcomeFilteredOut,
		Processed: false,
	}
}

// NewForwardedResult builds the result for a successful delivery.
func NewForwardedResult(event *Event, record PurchaseRecord) *RelayResult {
	forwarded := true
	return &RelayResult{
		EventID:   event.ID,
		EventType: event.Type,
		Outcome:   OutcomeForwarded,
		Processed: true,
		Forwarded: &forwarded,
		Record:    &record,
	}
}

// NewForwardFailedResult builds the result for a failed delivery. The record is returned
// as retry data for manual reprocessing.
func NewForwardFailedResult(event *Event, record PurchaseRecord, cause error) *RelayResult {
	forwarded := false
	return &RelayResult{
		EventID:   event.ID,
		EventType: event.Type,
		Outcome:   OutcomeForwardFailed,
		Processed: true,
		Forwarded: &forwarded,
		Error:     cause.Error(),
		RetryData: &record,
		Record:    &record,
	}
}
