package commands

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81/webhook"
)

// SignPayloadOutput is the JSON output of sign-payload.
type SignPayloadOutput struct {
	Header    string `json:"header"`
	Timestamp int64  `json:"timestamp"`
	Bytes     int    `json:"bytes"`
}

// RunSignPayload prints a provider signature header for a payload file so authenticated mode
// can be exercised locally, e.g.:
//
//	curl -H "Stripe-Signature: $(app sign-payload --file event.json)" --data-binary @event.json ...
//
// A zero timestamp means now. The payload is signed byte for byte; do not reformat the file
// after signing.
func RunSignPayload(
	streams IOTuple,
	path, secret string,
	timestamp int64,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if secret == "" {
		return fmt.Errorf("signing secret is required (--secret or STRIPE_WEBHOOK_SECRET)")
	}

	payload, err := readInput(path, streams.Reader)
	if err != nil {
		return err
	}

	signedAt := time.Now()
	if timestamp > 0 {
		signedAt = time.Unix(timestamp, 0)
	}

	signature := webhook.ComputeSignature(signedAt, payload, secret)
	header := fmt.Sprintf("t=%d,v1=%s", signedAt.Unix(), hex.EncodeToString(signature))

	if format == "json" {
		jsonBytes, err := json.MarshalIndent(SignPayloadOutput{
			Header:    header,
			Timestamp: signedAt.Unix(),
			Bytes:     len(payload),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(streams.Writer, string(jsonBytes))
		return err
	}

	_, err = fmt.Fprintln(streams.Writer, header)
	return err
}
