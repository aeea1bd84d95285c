package handlers

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wikiexplorer/internal/config"
	"wikiexplorer/internal/core"
	"wikiexplorer/internal/store"
)

// NewCollectionsCmd creates the collections management command
func NewCollectionsCmd() *cobra.Command {
	collectionsCmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"col"},
		Short:   "Manage saved article collections",
		Long:    `Create, inspect and delete collections of saved articles in the local SQLite store.`,
	}

	collectionsCmd.AddCommand(newCollectionsListCmd())
	collectionsCmd.AddCommand(newCollectionsCreateCmd())
	collectionsCmd.AddCommand(newCollectionsShowCmd())
	collectionsCmd.AddCommand(newCollectionsDeleteCmd())
	collectionsCmd.AddCommand(newCollectionsSaveCmd())

	return collectionsCmd
}

// withStore runs fn against the configured collections store.
func withStore(fn func(ctx context.Context, st *store.Store) error) error {
	st, err := store.NewStore(config.GetStore().DataDir)
	if err != nil {
		return fmt.Errorf("failed to open collections store: %w", err)
	}
	defer st.Close()
	return fn(context.Background(), st)
}

func newCollectionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st *store.Store) error {
				collections, err := st.ListCollections(ctx)
				if err != nil {
					return err
				}
				if len(collections) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No collections yet. Create one with 'wikiexplorer collections create NAME'.")
					return nil
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tARTICLES\tCREATED")
				for _, c := range collections {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.ID, c.Name, c.ArticleCount, c.CreatedAt.Format("2006-01-02"))
				}
				if err := tw.Flush(); err != nil {
					return err
				}

				stats, err := st.GetStats(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d collections, %d saved articles, %s on disk (%s)\n",
					stats.CollectionCount, stats.ArticleCount, formatBytes(stats.Size), st.Path())
				return nil
			})
		},
	}
}

func newCollectionsCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st *store.Store) error {
				c, err := st.CreateCollection(ctx, args[0], description)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✅ Created collection %q (%s)\n", c.Name, c.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Collection description")
	return cmd
}

func newCollectionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a collection and its articles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st *store.Store) error {
				c, err := st.GetCollection(ctx, args[0])
				if err != nil {
					return err
				}
				articles, err := st.ListArticles(ctx, c.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "📚 %s (%d articles)\n", c.Name, c.ArticleCount)
				if c.Description != "" {
					fmt.Fprintln(out, c.Description)
				}
				printSaved(out, articles)
				return nil
			})
		},
	}
}

func newCollectionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a collection and its saved articles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st *store.Store) error {
				if err := st.DeleteCollection(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted collection %s\n", args[0])
				return nil
			})
		},
	}
}

func newCollectionsSaveCmd() *cobra.Command {
	var collectionID string

	cmd := &cobra.Command{
		Use:   "save TITLE",
		Short: "Fetch, summarize and save an article",
		Long: `Fetch the article TITLE, summarize its sections and save it to a
collection. Without --collection the article goes to "` + store.DefaultCollectionName + `".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if collectionID == "" {
				c, err := a.store.EnsureCollection(ctx, store.DefaultCollectionName)
				if err != nil {
					return err
				}
				collectionID = c.ID
			}

			article, err := a.loadArticle(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load article: %w", err)
			}

			saved, err := a.store.SaveArticle(ctx, collectionID, article)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Saved %q with %d sections\n", saved.Article.Title, len(saved.Article.Sections))
			return nil
		},
	}

	cmd.Flags().StringVarP(&collectionID, "collection", "c", "", "Collection ID")
	return cmd
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func printSaved(w io.Writer, articles []core.SavedArticle) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	for _, s := range articles {
		fmt.Fprintf(w, "  • %s  %s\n", s.Article.Title, s.SavedAt.Format("2006-01-02 15:04"))
		if url := s.Article.URL(); url != "" {
			fmt.Fprintf(w, "    %s\n", url)
		}
	}
}
