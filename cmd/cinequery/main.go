package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cinequery/cinequery/internal/cache"
	"github.com/cinequery/cinequery/internal/config"
	"github.com/cinequery/cinequery/internal/genre"
	"github.com/cinequery/cinequery/internal/logging"
	"github.com/cinequery/cinequery/internal/parse"
	"github.com/cinequery/cinequery/internal/results"
	"github.com/cinequery/cinequery/internal/session"
	"github.com/cinequery/cinequery/pkg/tmdb"
)

var (
	version    = "dev"
	commit     = "none"
	buildDate  = "unknown"
	jsonOutput bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cleanup, err := logging.Setup(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	rootCmd := &cobra.Command{
		Use:   "cinequery",
		Short: "Natural-language movie search against the TMDB API",
		Long: `Cinequery turns free-text queries like "action 2020 rating>7" into
structured TMDB requests, routing each query to the search, popular,
or discover endpoint and merging paginated results.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(searchCmd(ctx, cfg))
	rootCmd.AddCommand(parseCmd(ctx, cfg))
	rootCmd.AddCommand(genresCmd(ctx, cfg))
	rootCmd.AddCommand(interactiveCmd(ctx, cfg))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			if jsonOutput {
				printJSON(map[string]string{
					"version": version,
					"commit":  commit,
					"date":    buildDate,
				})
				return
			}
			fmt.Printf("cinequery %s (%s, %s)\n", version, commit, buildDate)
		},
	}
}

func newClient(cfg *config.Config) *tmdb.Client {
	return tmdb.New(cfg.APIKey,
		tmdb.WithBaseURL(cfg.BaseURL),
		tmdb.WithLanguage(cfg.Language),
		tmdb.WithHTTPClient(&http.Client{Timeout: cfg.HTTPClientTimeout}),
	)
}

func requireAPIKey(cfg *config.Config) error {
	if cfg.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is not set")
	}
	return nil
}

func searchCmd(ctx context.Context, cfg *config.Config) *cobra.Command {
	var pages int
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Run one query and print the merged results",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(cfg); err != nil {
				return err
			}
			client := newClient(cfg)
			lex := genre.NewLoader(client).Lexicon(ctx)

			query := strings.Join(args, " ")
			parsed := parse.Parse(query, lex)
			mode := session.Route(query, parsed)
			slog.Debug("routing query",
				slog.String("query", query),
				slog.String("mode", string(mode)),
			)

			var movies []tmdb.Movie
			totalPages := 1
			for page := 1; page <= pages && page <= totalPages; page++ {
				fetched, err := fetchPage(ctx, client, mode, parsed, query, page)
				if err != nil {
					return err
				}
				movies = results.Merge(movies, fetched)
				totalPages = fetched.TotalPages
			}

			if jsonOutput {
				printJSON(map[string]any{
					"mode":        mode,
					"description": parse.Describe(parsed),
					"movies":      movies,
				})
				return nil
			}
			fmt.Printf("%s [%s]\n", parse.Describe(parsed), mode)
			printMovies(movies)
			return nil
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 1, "Number of result pages to fetch")
	return cmd
}

func fetchPage(ctx context.Context, client *tmdb.Client, mode session.Mode, parsed parse.Query, query string, page int) (*tmdb.MoviePage, error) {
	switch mode {
	case session.ModeSearch:
		text := parsed.FreeText
		if text == "" {
			text = query
		}
		return client.SearchMovies(ctx, text, page)
	case session.ModeDiscover:
		return client.DiscoverMovies(ctx, parse.ToDiscoverParams(parsed), page)
	default:
		return client.PopularMovies(ctx, page)
	}
}

func parseCmd(ctx context.Context, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [query...]",
		Short: "Show how a query is parsed and routed, without fetching",
		RunE: func(cmd *cobra.Command, args []string) error {
			lex := genre.Default()
			query := strings.Join(args, " ")
			parsed := parse.Parse(query, lex)
			mode := session.Route(query, parsed)

			if jsonOutput {
				printJSON(map[string]any{
					"mode":        mode,
					"description": parse.Describe(parsed),
					"parsed":      parsed,
					"params":      parse.ToDiscoverParams(parsed),
				})
				return nil
			}
			fmt.Printf("mode:        %s\n", mode)
			fmt.Printf("description: %s\n", parse.Describe(parsed))
			if mode == session.ModeDiscover {
				fmt.Printf("params:      %s\n", parse.ToDiscoverParams(parsed).Encode())
			}
			return nil
		},
	}
}

func genresCmd(ctx context.Context, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List the genre lexicon",
		RunE: func(cmd *cobra.Command, args []string) error {
			lex := genre.Default()
			if cfg.APIKey != "" {
				lex = genre.NewLoader(newClient(cfg)).Lexicon(ctx)
			}

			if jsonOutput {
				printJSON(lex.Entries())
				return nil
			}
			for _, e := range lex.Entries() {
				fmt.Printf("%6d  %-16s %s\n", e.ID, e.Name, strings.Join(e.Keywords, ", "))
			}
			return nil
		},
	}
}

func interactiveCmd(ctx context.Context, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Interactive search: type to query, :more / :refresh / :clear / :quit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(cfg); err != nil {
				return err
			}
			client := newClient(cfg)
			lex := genre.NewLoader(client).Lexicon(ctx)

			pageCache, err := cache.NewPageCache(cfg.PageCacheMaxItems)
			if err != nil {
				return err
			}

			sess := session.New(client, lex,
				session.WithContext(ctx),
				session.WithDebounce(cfg.Debounce),
				session.WithPageCache(pageCache),
				session.WithOnChange(printSnapshot),
			)
			defer sess.Close()

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := scanner.Text()
				switch strings.TrimSpace(line) {
				case ":quit", ":q":
					return nil
				case ":more":
					sess.LoadMore()
				case ":refresh":
					sess.Refresh()
				case ":clear":
					sess.ClearSearch()
				default:
					sess.SetQuery(line)
				}
			}
			return scanner.Err()
		},
	}
}

func printSnapshot(snap session.Snapshot) {
	if snap.IsLoading {
		return
	}
	if snap.Err != nil {
		fmt.Printf("error: %v (use :refresh to retry)\n", snap.Err)
		return
	}
	fmt.Printf("-- %s [%s] page %d/%d --\n",
		snap.Description, snap.Mode, snap.CurrentPage, snap.TotalPages)
	printMovies(snap.Movies)
	if snap.HasMore {
		fmt.Println("(:more for the next page)")
	}
}

func printMovies(movies []tmdb.Movie) {
	for _, m := range movies {
		year := m.ReleaseDate
		if len(year) >= 4 {
			year = year[:4]
		}
		fmt.Printf("%8d  %-40s %s  %.1f\n", m.ID, m.Title, year, m.VoteAverage)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
