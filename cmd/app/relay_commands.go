package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/webhook-relay/cmd/app/commands"
	"github.com/allisson/webhook-relay/internal/app"
	"github.com/allisson/webhook-relay/internal/config"
)

func getRelayCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "sign-payload",
			Usage: "Print a Stripe-Signature header for a webhook payload",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "file",
					Aliases:  []string{"f"},
					Required: true,
					Usage:    "Payload file to sign ('-' for stdin)",
				},
				&cli.StringFlag{
					Name:    "secret",
					Aliases: []string{"s"},
					Usage:   "Signing secret (defaults to STRIPE_WEBHOOK_SECRET)",
				},
				&cli.Int64Flag{
					Name:    "timestamp",
					Aliases: []string{"t"},
					Usage:   "Unix timestamp to sign with (defaults to now)",
				},
				&cli.StringFlag{
					Name:  "format",
					Value: "text",
					Usage: "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				secret := cmd.String("secret")
				if secret == "" {
					secret = config.Load().StripeWebhookSecret
				}

				return commands.RunSignPayload(
					commands.DefaultIO(),
					cmd.String("file"),
					secret,
					cmd.Int64("timestamp"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "forward",
			Usage: "Deliver a failed event's retry_data to the gateway (one attempt)",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "file",
					Aliases:  []string{"f"},
					Required: true,
					Usage:    "Record or webhook response JSON ('-' for stdin)",
				},
				&cli.StringFlag{
					Name:  "format",
					Value: "text",
					Usage: "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				relayUseCase, err := container.RelayUseCase()
				if err != nil {
					return fmt.Errorf("failed to initialize relay use case: %w", err)
				}

				return commands.RunForward(
					ctx,
					relayUseCase,
					container.Logger(),
					commands.DefaultIO(),
					cmd.String("file"),
					cmd.String("format"),
				)
			},
		},
	}
}
