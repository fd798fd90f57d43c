package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern/internal/adapters/driven/auth"
	"github.com/custodia-labs/lectern/internal/config"
	"github.com/custodia-labs/lectern/internal/core/domain"
)

// newCLIApp loads configuration and wires an app without storage.
// Logs go to stderr at warn level so command output stays clean.
func newCLIApp(ctx context.Context, configPath string, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(config.ModeCLI); err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return newApp(ctx, cfg, config.ModeCLI, logger)
}

func newSearchCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search every catalog and print the merged results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newCLIApp(cmd.Context(), *configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.library.Search(cmd.Context(), domain.SearchRequest{
				Query: strings.Join(args, " "),
				Limit: limit,
			})
			if err != nil {
				return err
			}
			printSearch(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", domain.DefaultSearchLimit, "maximum number of results")
	return cmd
}

func printSearch(w io.Writer, resp *domain.SearchResponse) {
	if resp.QueryUnderstood != nil && resp.QueryUnderstood.SearchQuery != resp.QueryUnderstood.OriginalQuery {
		fmt.Fprintf(w, "Searching for: %s\n\n", resp.QueryUnderstood.SearchQuery)
	}
	if resp.TotalResults == 0 {
		fmt.Fprintln(w, "No books found.")
		return
	}
	for _, b := range resp.Results {
		authors := strings.Join(b.Authors, ", ")
		if authors == "" {
			authors = "Unknown author"
		}
		fmt.Fprintf(w, "%-24s %s by %s\n", b.ID, b.Title, authors)
	}
}

func newSummarizeCmd(configPath *string) *cobra.Command {
	var style, language string
	var maxPages int
	cmd := &cobra.Command{
		Use:   "summarize <book-id>",
		Short: "Summarize a book and print the result without storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newCLIApp(cmd.Context(), *configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			req := domain.SummaryRequest{
				Language: language,
				Style:    domain.SummaryStyle(style),
			}
			if cmd.Flags().Changed("max-pages") {
				req.MaxPages = &maxPages
			}

			resp, err := a.summaries.Preview(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s by %s\n\n", resp.BookInfo.Title, resp.BookInfo.Author)
			fmt.Fprintln(out, resp.SummaryText)
			fmt.Fprintf(out, "\n(%d words, %s)\n", resp.WordCount, resp.Language)
			return nil
		},
	}
	cmd.Flags().StringVar(&style, "style", string(domain.DefaultSummaryStyle), "summary style: concise, detailed, academic or simple")
	cmd.Flags().StringVar(&language, "language", domain.DefaultLanguage, "summary language")
	cmd.Flags().IntVar(&maxPages, "max-pages", domain.DefaultMaxPages, "page budget")
	return cmd
}

func newHashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key <key>",
		Short: "Print the bcrypt hash of an admin key for ADMIN_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return errors.New("key must not be empty")
			}
			hash, err := auth.NewAdapter("").HashKey(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
