package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/soren0/counsel/internal/app"
	"github.com/soren0/counsel/internal/config"
	"github.com/soren0/counsel/internal/log"
)

var (
	historyPage     int
	historyPageSize int
)

var historyCmd = &cobra.Command{
	Use:   "history <session-id>",
	Short: "Show the turns of a conversation session",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyPage, "page", 1, "page number")
	historyCmd.Flags().IntVar(&historyPageSize, "page-size", 50, "turns per page")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
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

	page, err := a.Service.History(ctx, args[0], historyPage, historyPageSize)
	if err != nil {
		return err
	}

	if len(page.Turns) == 0 {
		fmt.Println("No turns found.")
		return nil
	}

	for _, t := range page.Turns {
		fmt.Printf("[%s] %s\n", t.Role, t.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Println(t.Content)
		if t.Metadata != nil && t.Metadata.Degraded {
			fmt.Println("(degraded answer)")
		}
		fmt.Println()
	}
	fmt.Printf("Page %d of %d turns total\n", page.Page, page.Total)

	return nil
}
