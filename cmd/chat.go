package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soren0/counsel/internal/app"
	"github.com/soren0/counsel/internal/config"
	"github.com/soren0/counsel/internal/conversation"
	"github.com/soren0/counsel/internal/log"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := log.New(log.Config{Level: slog.LevelWarn})

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println("Counsel - ask anything about our services.")
	fmt.Println("Type /questions for suggestions, /quit to exit.")
	fmt.Println()

	var sessionID string
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")

		if !scanner.Scan() {
			// EOF (Ctrl+D)
			fmt.Println("\nGoodbye!")
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if quit := handleChatCommand(input); quit {
				break
			}
			continue
		}

		resp, err := a.Service.Answer(ctx, sessionID, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		sessionID = resp.SessionID

		fmt.Println()
		fmt.Println(resp.Message)
		if len(resp.Sources) > 0 {
			fmt.Println()
			for _, src := range resp.Sources {
				fmt.Printf("  [%s] %s\n", src.Type, src.Title)
			}
		}
		fmt.Println()
	}

	return scanner.Err()
}

// handleChatCommand processes slash commands. Returns true to exit the loop.
func handleChatCommand(input string) bool {
	switch input {
	case "/quit", "/exit":
		fmt.Println("Goodbye!")
		return true
	case "/questions":
		fmt.Println()
		for _, q := range conversation.QuickQuestions() {
			fmt.Printf("  %s\n", q.Question)
		}
		fmt.Println()
	case "/help":
		fmt.Println("Commands: /questions, /quit")
	default:
		fmt.Printf("Unknown command %q, try /help\n", input)
	}
	return false
}
