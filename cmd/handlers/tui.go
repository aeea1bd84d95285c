package handlers

import (
	"context"

	"github.com/spf13/cobra"

	"wikiexplorer/internal/config"
	"wikiexplorer/internal/core"
	"wikiexplorer/internal/logger"
	"wikiexplorer/internal/store"
	"wikiexplorer/internal/tui"
)

// NewTUICmd creates the TUI command
func NewTUICmd() *cobra.Command {
	var noStore bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse articles in the terminal",
		Long: `Launch the interactive explorer.

Keys: [n] next random article, [r] article related to the current one,
[b] back, [s] save to the "` + store.DefaultCollectionName + `" collection, [q] quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			// Log lines would tear the alternate screen.
			if cfg := config.Get(); cfg.Logging.Level == "" || cfg.Logging.Level == "info" {
				cfg.Logging.Level = "error"
			}

			a, err := newApp(ctx, !noStore)
			if err != nil {
				return err
			}
			defer a.Close()

			a.cache.Initialize()

			var saver tui.Saver
			if a.store != nil {
				saver = tui.SaverFunc(func(ctx context.Context, article core.Article) error {
					collection, err := a.store.EnsureCollection(ctx, store.DefaultCollectionName)
					if err != nil {
						return err
					}
					_, err = a.store.SaveArticle(ctx, collection.ID, article)
					return err
				})
			}

			timeout := config.Duration(config.GetCache().RefillTimeout, 0)
			if err := tui.Run(a.cache, saver, timeout); err != nil {
				logger.Error("TUI exited with error", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noStore, "no-store", false, "Disable saving articles")
	return cmd
}
