package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soren0/counsel/internal/app"
	"github.com/soren0/counsel/internal/config"
	"github.com/soren0/counsel/internal/log"
)

var askSessionID string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askSessionID, "session", "", "continue an existing session instead of starting a new one")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	question := strings.Join(args, " ")

	resp, err := a.Service.Answer(ctx, askSessionID, question)
	if err != nil {
		return err
	}

	fmt.Println(resp.Message)

	if len(resp.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, src := range resp.Sources {
			fmt.Printf("  [%s] %s (%.2f)\n", src.Type, src.Title, src.Score)
		}
	}
	if resp.Degraded {
		fmt.Println()
		fmt.Println("(answer generated without the language model)")
	}
	fmt.Printf("\nSession: %s\n", resp.SessionID)

	return nil
}
