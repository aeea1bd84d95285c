package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"wikiexplorer/internal/core"
	"wikiexplorer/internal/summarize"
)

// NewNextCmd creates the next command
func NewNextCmd() *cobra.Command {
	var (
		related string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Fetch and summarize one article",
		Long: `Fetch a random article, or one related to --related TITLE, and print it
with its section summaries.

Examples:
  wikiexplorer next
  wikiexplorer next --related Octopus --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			req := core.RandomRequest()
			if strings.TrimSpace(related) != "" {
				req = core.RelatedRequest(related)
			}

			article, err := a.cache.GetNextArticle(ctx, req)
			if err != nil {
				return fmt.Errorf("failed to load article: %w", err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), article)
			}
			printArticle(cmd.OutOrStdout(), article)
			return nil
		},
	}

	cmd.Flags().StringVar(&related, "related", "", "Fetch an article related to this title")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the article as JSON")
	return cmd
}

// NewTopicsCmd creates the topics command
func NewTopicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics TITLE",
		Short: "Suggest topics and linked articles for a title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			article, err := a.loadArticle(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load article: %w", err)
			}

			out := cmd.OutOrStdout()
			topics := summarize.RelatedTopics(ctx, a.summarizer, article, a.log)
			titles := a.parser.ExtractRelatedTitles(article, 0)

			fmt.Fprintf(out, "🔎 %s (%s summarizer)\n\n", article.Title, a.summarizer.Strategy())
			printList(out, "Topics", topics)
			printList(out, "Linked articles", titles)
			return nil
		},
	}
	return cmd
}

func printArticle(w io.Writer, article core.Article) {
	fmt.Fprintf(w, "📖 %s\n", article.Title)
	if url := article.URL(); url != "" {
		fmt.Fprintf(w, "   %s\n", url)
	}
	if article.Extract != "" {
		fmt.Fprintf(w, "\n%s\n", article.Extract)
	}
	for _, s := range article.Sections {
		fmt.Fprintf(w, "\n## %s\n", s.Title)
		if s.Summary != "" {
			fmt.Fprintln(w, s.Summary)
		} else {
			fmt.Fprintln(w, s.Content)
		}
	}
}

func printList(w io.Writer, heading string, items []string) {
	fmt.Fprintf(w, "%s:\n", heading)
	if len(items) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, item := range items {
		fmt.Fprintf(w, "  • %s\n", item)
	}
	fmt.Fprintln(w)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
