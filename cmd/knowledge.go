package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soren0/counsel/internal/app"
	"github.com/soren0/counsel/internal/config"
	"github.com/soren0/counsel/internal/knowledge"
	"github.com/soren0/counsel/internal/log"
)

var (
	kbQuestion string
	kbAnswer   string
	kbKeywords []string
	kbCategory string
	kbPriority int
	kbSearch   string
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage knowledge base entries",
}

var knowledgeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a knowledge base entry",
	RunE:  runKnowledgeAdd,
}

var knowledgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge base entries",
	RunE:  runKnowledgeList,
}

var knowledgeDeleteCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete a knowledge base entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runKnowledgeDelete,
}

func init() {
	knowledgeAddCmd.Flags().StringVar(&kbQuestion, "question", "", "entry question (required)")
	knowledgeAddCmd.Flags().StringVar(&kbAnswer, "answer", "", "entry answer (required)")
	knowledgeAddCmd.Flags().StringSliceVar(&kbKeywords, "keywords", nil, "comma separated keywords")
	knowledgeAddCmd.Flags().StringVar(&kbCategory, "category", "", "entry category")
	knowledgeAddCmd.Flags().IntVar(&kbPriority, "priority", 0, "ranking priority")
	_ = knowledgeAddCmd.MarkFlagRequired("question")
	_ = knowledgeAddCmd.MarkFlagRequired("answer")

	knowledgeListCmd.Flags().StringVar(&kbCategory, "category", "", "filter by category")
	knowledgeListCmd.Flags().StringVar(&kbSearch, "search", "", "substring filter over question, answer and keywords")

	knowledgeCmd.AddCommand(knowledgeAddCmd)
	knowledgeCmd.AddCommand(knowledgeListCmd)
	knowledgeCmd.AddCommand(knowledgeDeleteCmd)
	rootCmd.AddCommand(knowledgeCmd)
}

func setupKnowledge(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return app.Setup(ctx, cfg, log.New(log.Config{Level: slog.LevelWarn}))
}

func runKnowledgeAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := setupKnowledge(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	entry := &knowledge.Entry{
		Question: kbQuestion,
		Answer:   kbAnswer,
		Keywords: kbKeywords,
		Category: kbCategory,
		Priority: kbPriority,
		IsActive: true,
	}
	if err := a.Knowledge.Create(ctx, entry); err != nil {
		return err
	}

	fmt.Printf("Created entry %s\n", entry.ID)
	return nil
}

func runKnowledgeList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := setupKnowledge(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, total, err := a.Knowledge.List(ctx, knowledge.ListFilter{
		Category: kbCategory,
		Search:   kbSearch,
	}, 1, config.MaxPageSize)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No entries found.")
		return nil
	}

	for _, e := range entries {
		active := " "
		if e.IsActive {
			active = "*"
		}
		fmt.Printf("%s %s  [%s] p=%d used=%d\n", active, e.ID, e.Category, e.Priority, e.UsageCount)
		fmt.Printf("    Q: %s\n", e.Question)
		if len(e.Keywords) > 0 {
			fmt.Printf("    keywords: %s\n", strings.Join(e.Keywords, ", "))
		}
	}
	fmt.Printf("\n%d entries total\n", total)

	return nil
}

func runKnowledgeDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := setupKnowledge(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Knowledge.Delete(ctx, args[0]); err != nil {
		return err
	}

	fmt.Printf("Deleted entry %s\n", args[0])
	return nil
}
