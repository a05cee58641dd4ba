package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	webhookDomain "github.com/allisson/webhook-relay/internal/webhook/domain"
	webhookUseCase "github.com/allisson/webhook-relay/internal/webhook/usecase"
)

// ForwardOutput is the JSON output of forward.
type ForwardOutput struct {
	Forwarded  bool   `json:"forwarded"`
	PurchaseID string `json:"purchase_id"`
	RaceSlug   string `json:"race_slug"`
	Error      string `json:"error,omitempty"`
}

// RunForward replays a purchase record to the gateway with exactly one delivery attempt.
//
// The input may be a bare record, or a whole webhook response body: its retry_data (failed
// delivery) or extracted (missing fields, after manual correction) member is used.
func RunForward(
	ctx context.Context,
	relayUseCase webhookUseCase.RelayUseCase,
	logger *slog.Logger,
	streams IOTuple,
	path, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	data, err := readInput(path, streams.Reader)
	if err != nil {
		return err
	}

	record, err := parseRetryRecord(data)
	if err != nil {
		return err
	}

	logger.Info("forwarding purchase record",
		slog.String("purchase_id", record.PurchaseID),
		slog.String("race_slug", record.RaceSlug),
	)

	_, forwardErr := relayUseCase.Forward(ctx, record)

	var missing *webhookDomain.MissingFieldsError
	if errors.As(forwardErr, &missing) {
		return fmt.Errorf("record is incomplete: %w", forwardErr)
	}

	output := ForwardOutput{
		Forwarded:  forwardErr == nil,
		PurchaseID: record.PurchaseID,
		RaceSlug:   record.RaceSlug,
	}
	if forwardErr != nil {
		output.Error = forwardErr.Error()
	}

	if format == "json" {
		jsonBytes, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		writeLine(streams.Writer, "%s", jsonBytes)
	} else if output.Forwarded {
		writeLine(streams.Writer, "Forwarded purchase %s (%s) to the gateway", output.PurchaseID, output.RaceSlug)
	} else {
		writeLine(streams.Writer, "Failed to forward purchase %s (%s): %s", output.PurchaseID, output.RaceSlug, output.Error)
	}

	if forwardErr != nil {
		return fmt.Errorf("failed to forward record: %w", forwardErr)
	}
	return nil
}

// parseRetryRecord decodes a record or a relay response body carrying one.
func parseRetryRecord(data []byte) (webhookDomain.PurchaseRecord, error) {
	var envelope struct {
		RetryData *webhookDomain.PurchaseRecord `json:"retry_data"`
		Extracted *webhookDomain.PurchaseRecord `json:"extracted"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return webhookDomain.PurchaseRecord{}, fmt.Errorf("invalid record JSON: %w", err)
	}

	switch {
	case envelope.RetryData != nil:
		return *envelope.RetryData, nil
	case envelope.Extracted != nil:
		return *envelope.Extracted, nil
	}

	var record webhookDomain.PurchaseRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return webhookDomain.PurchaseRecord{}, fmt.Errorf("invalid record JSON: %w", err)
	}
	return record, nil
}
