package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"wine-sommelier-be/internal/config"
	"wine-sommelier-be/pkg/events"
	pkgNats "wine-sommelier-be/pkg/nats"
)

// Tails the sommelier event stream. Handy for watching turn.saved,
// wine.rated and catalogue.ingested events during development.
func main() {
	subject := flag.String("subject", "sommelier.>", "subject pattern to tail")
	durable := flag.String("durable", "event-tail", "durable consumer name")
	flag.Parse()

	cfg := config.Load()

	sub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		color.Red("Failed to connect to NATS: %v", err)
		os.Exit(1)
	}
	defer sub.Close()

	err = sub.Subscribe(*subject, *durable, func(ctx context.Context, event events.Event) error {
		payload, _ := json.Marshal(event.Payload())
		color.Cyan("%s  %s", event.EventType(), payload)
		return nil
	})
	if err != nil {
		color.Red("Subscribe failed: %v", err)
		os.Exit(1)
	}

	color.Green("Tailing %s on %s", *subject, cfg.App.NatsURL)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
}
