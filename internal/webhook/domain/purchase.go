package domain

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/webhook-relay/internal/validation"
)

// PurchaseRecord is the normalized business payload extracted from an event subject.
// It also serves as the retry payload handed back to operators when forwarding fails.
type PurchaseRecord struct {
	RaceName   string `json:"race_name"`
	RaceSlug   string `json:"race_slug"`
	UserName   string `json:"user_name"`
	UserEmail  string `json:"user_email"`
	GoalTime   string `json:"goal_time"`
	City       string `json:"city"`
	State      string `json:"state"`
	PurchaseID string `json:"purchase_id"`
}

// Validate checks that every required field is present.
// Returns a *MissingFieldsError listing the missing json field names in sorted order.
func (r PurchaseRecord) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.RaceName, validation.Required, customValidation.NotBlank),
		validation.Field(&r.RaceSlug, validation.Required, customValidation.NotBlank),
		validation.Field(&r.UserEmail, validation.Required, customValidation.NotBlank),
		validation.Field(&r.GoalTime, validation.Required, customValidation.NotBlank),
		validation.Field(&r.PurchaseID, validation.Required, customValidation.NotBlank),
	)
	if err == nil {
		return nil
	}

	fields := customValidation.FieldNames(err)
	if len(fields) == 0 {
		// ValidateStruct only returns non-field errors on programming mistakes.
		return err
	}
	return &MissingFieldsError{Fields: fields, Record: r}
}
