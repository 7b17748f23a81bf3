// Interactive terminal client for the invitation assistant. Drives the
// session reconciler against a running gateway; useful for exercising the
// whole chain without a browser.
//
// Commands: /new, /sessions, /open <n>, /delete <n>, /reset, /quit.
// Everything else is sent as a chat message.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"lekha-gateway/internal/config"
	"lekha-gateway/internal/pkg/logger"
	"lekha-gateway/pkg/assistant"
	"lekha-gateway/pkg/store"

	"github.com/fatih/color"
)

type envTokenSource struct{}

func (envTokenSource) Token(ctx context.Context) (string, error) {
	return os.Getenv("ASSISTANT_BEARER_TOKEN"), nil
}

func main() {
	cfg := config.Load()
	log := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	var envelopes assistant.EnvelopeStore
	switch cfg.Client.StateBackend {
	case "redis":
		envelopes = store.NewRedisStore(cfg.Client.RedisURL, log)
	case "memory":
		envelopes = store.NewMemoryStore()
	default:
		envelopes = store.NewFileStore(cfg.Client.StateDir, log)
	}

	gw := assistant.NewHTTPGateway(cfg.Client.GatewayBaseURL, envTokenSource{}, log)
	rec := assistant.NewReconciler(gw, envelopes, log)

	ui := assistant.NewAppState()
	ui.SetChatOpen(true)

	bot := color.New(color.FgCyan)
	you := color.New(color.FgGreen, color.Bold)
	warn := color.New(color.FgYellow)

	for _, msg := range rec.Current() {
		printMessage(bot, you, msg)
	}

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()
	for ui.ChatOpen() {
		you.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit":
			ui.SetChatOpen(false)
		case line == "/new":
			rec.NewChat()
			for _, msg := range rec.Current() {
				printMessage(bot, you, msg)
			}
		case line == "/reset":
			rec.Reset()
			warn.Println("Local state cleared.")
		case line == "/sessions":
			if err := rec.ReloadSessions(ctx); err != nil {
				warn.Printf("Could not load sessions: %v\n", err)
			}
			printSessions(rec.Sessions())
		case strings.HasPrefix(line, "/open "):
			s, ok := sessionAt(rec.Sessions(), strings.TrimPrefix(line, "/open "))
			if !ok {
				warn.Println("No such session.")
				continue
			}
			messages, err := rec.Open(ctx, s.LocalId)
			if err != nil {
				warn.Printf("Could not open session: %v\n", err)
				continue
			}
			for _, msg := range messages {
				printMessage(bot, you, msg)
			}
		case strings.HasPrefix(line, "/delete "):
			s, ok := sessionAt(rec.Sessions(), strings.TrimPrefix(line, "/delete "))
			if !ok {
				warn.Println("No such session.")
				continue
			}
			if err := rec.Delete(ctx, s.LocalId); err != nil {
				warn.Printf("Delete failed: %v\n", err)
				continue
			}
			fmt.Println("Deleted.")
		default:
			reply, err := rec.Send(ctx, line)
			if err != nil {
				warn.Println(err)
				continue
			}
			printMessage(bot, you, *reply)
		}
	}
}

func printMessage(bot, you *color.Color, msg assistant.Message) {
	if msg.Role == assistant.RoleUser {
		you.Printf("you: %s\n", msg.Content)
		return
	}
	bot.Printf("assistant: %s\n", msg.Content)
	if msg.ImageURL != "" {
		bot.Printf("           image: %s\n", msg.ImageURL)
	}
}

func printSessions(sessions []assistant.ChatSession) {
	if len(sessions) == 0 {
		fmt.Println("No chats yet. Start a conversation and it will appear here.")
		return
	}
	for i, s := range sessions {
		marker := " "
		if s.RemoteId == nil {
			marker = "*" // local draft, not yet synced
		}
		fmt.Printf("%2d%s %s (%s)\n", i+1, marker, s.Title, s.CreatedAt.Format("2 Jan 2006 15:04"))
	}
}

func sessionAt(sessions []assistant.ChatSession, arg string) (assistant.ChatSession, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 || n > len(sessions) {
		return assistant.ChatSession{}, false
	}
	return sessions[n-1], true
}
