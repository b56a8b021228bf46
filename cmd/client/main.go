// Command pokertrack-watch tails the live stream of a table or a game and
// prints every snapshot it receives.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/r3labs/sse/v2"

	"github.com/pokertrack/pokertrack-server/internal/domain/entities"
	"github.com/pokertrack/pokertrack-server/internal/live"
	"github.com/pokertrack/pokertrack-server/internal/logger"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8000", "Server URL")
	prefix := flag.String("prefix", "/api", "API prefix")
	kindFlag := flag.String("kind", "table", "Resource kind (table or game)")
	id := flag.String("id", "", "Resource ID")
	raw := flag.Bool("raw", false, "Print snapshots as received")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	logger.Initialize(*logLevel)

	kind, err := live.ParseKind(*kindFlag)
	if err != nil || *id == "" {
		fmt.Fprintln(os.Stderr, "usage: pokertrack-watch -kind table|game -id <id>")
		os.Exit(2)
	}

	url := fmt.Sprintf("%s%s/events/%s/%s", strings.TrimRight(*serverURL, "/"), *prefix, kind, *id)
	client := sse.NewClient(url)
	client.OnConnect(func(*sse.Client) {
		logger.Info("Connected to %s", url)
	})
	client.OnDisconnect(func(*sse.Client) {
		logger.Warn("Disconnected from %s, reconnecting", url)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = client.SubscribeRawWithContext(ctx, func(msg *sse.Event) {
		if len(msg.Data) == 0 {
			return
		}
		if *raw {
			fmt.Println(string(msg.Data))
			return
		}
		line, err := summarize(kind, msg.Data)
		if err != nil {
			logger.Warn("Unreadable snapshot: %v", err)
			return
		}
		fmt.Println(line)
	})
	if err != nil && ctx.Err() == nil {
		logger.Error("Failed to subscribe to %s: %v", url, err)
		os.Exit(1)
	}
}

// summarize renders a snapshot as a single line
func summarize(kind live.Kind, data []byte) (string, error) {
	switch kind {
	case live.KindTable:
		var t entities.Table
		if err := json.Unmarshal(data, &t); err != nil {
			return "", err
		}
		confirmed := 0
		for _, p := range t.Players {
			if p.Status == entities.PlayerConfirmed {
				confirmed++
			}
		}
		return fmt.Sprintf("[%s] %s %q at %s: %d/%d confirmed",
			t.UpdatedAt.Format("15:04:05"), t.Status, t.Name, t.Venue, confirmed, t.MaximumPlayers), nil
	case live.KindGame:
		var g entities.Game
		if err := json.Unmarshal(data, &g); err != nil {
			return "", err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "[%s] %s pot %.2f, available %.2f", g.UpdatedAt.Format("15:04:05"), g.Status, g.TotalPot, g.AvailableCashOut)
		for _, p := range g.Players {
			fmt.Fprintf(&b, " | %s %+.2f", displayName(p), p.NetProfit)
		}
		return b.String(), nil
	}
	return "", fmt.Errorf("%w: %q", live.ErrUnknownKind, kind)
}

func displayName(p entities.GamePlayer) string {
	if p.Username != "" {
		return p.Username
	}
	return p.UserID
}
