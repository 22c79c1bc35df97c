// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/autobrr/burst/internal/buildinfo"
	"github.com/autobrr/burst/internal/config"
	"github.com/autobrr/burst/internal/models"
	"github.com/autobrr/burst/internal/notify"
	"github.com/autobrr/burst/internal/services/jackett"
	"github.com/autobrr/burst/internal/services/search"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func loadSearchService(configDir string) (*search.Service, error) {
	cfg, err := config.New(configDir, buildinfo.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize configuration: %w", err)
	}
	cfg.ApplyLogConfig()

	return search.NewService(cfg,
		search.WithStatusSink(cfg),
		search.WithNotifier(notify.NewLogNotifier()),
	), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func RunSearchCommand() *cobra.Command {
	var (
		configDir string
		output    string
		kind      string
		titles    map[string]string
		req       models.SearchRequest
	)

	command := &cobra.Command{
		Use:   "search [title]",
		Short: "Search all indexers once and print the results",
		Example: `  burst search "Example Movie" --kind movie --year 2019
  burst search "Example Show" --kind episode --season 1 --episode 3 --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}

			svc, err := loadSearchService(configDir)
			if err != nil {
				return err
			}

			req.Kind = models.ParseSearchKind(kind)
			req.Title = args[0]
			req.Titles = titles

			ctx, cancel := signalContext()
			defer cancel()

			var progress jackett.ProgressFunc
			if term.IsTerminal(int(os.Stderr.Fd())) {
				progress = progressPrinter(os.Stderr)
			}

			results := svc.Search(ctx, req, progress)
			return render(cmd.OutOrStdout(), output, results, resultTable)
		},
	}

	flags := command.Flags()
	flags.StringVar(&configDir, "config-dir", "", "config directory or file path (defaults to OS-specific location)")
	flags.StringVarP(&output, "output", "o", outputTable, "output format: table, json or yaml")
	flags.StringVar(&kind, "kind", string(models.SearchKindGeneral), "search kind: movie, season, episode or general")
	flags.StringToStringVar(&titles, "localized-title", nil, "localized titles by language code, e.g. de=Beispiel")
	flags.IntVar(&req.Year, "year", 0, "release year (movies)")
	flags.IntVar(&req.Season, "season", 0, "season number")
	flags.IntVar(&req.Episode, "episode", 0, "episode number")
	flags.IntVar(&req.AbsoluteEpisode, "absolute-episode", 0, "absolute episode number")
	flags.StringVar(&req.IMDbID, "imdb-id", "", "IMDb id, e.g. tt0000001")
	flags.IntVar(&req.EpisodeYear, "episode-year", 0, "year the episode aired")
	flags.IntVar(&req.SeasonYear, "season-year", 0, "year the season started")
	flags.IntVar(&req.ShowYear, "show-year", 0, "year the show started")
	flags.StringVar(&req.SeasonName, "season-name", "", "season label, e.g. Part Two")

	return command
}

func RunValidateCommand() *cobra.Command {
	var configDir string

	command := &cobra.Command{
		Use:   "validate",
		Short: "Check the Jackett host and API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadSearchService(configDir)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			status := svc.Validate(ctx)
			cmd.Println(status.Message)
			if !status.OK {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}

	command.Flags().StringVar(&configDir, "config-dir", "", "config directory or file path (defaults to OS-specific location)")
	command.SilenceUsage = true

	return command
}

func RunIndexersCommand() *cobra.Command {
	var (
		configDir string
		output    string
	)

	command := &cobra.Command{
		Use:   "indexers",
		Short: "List configured indexers and their search capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}

			svc, err := loadSearchService(configDir)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			indexers, err := svc.Indexers(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), output, indexers, indexerTable)
		},
	}

	command.Flags().StringVar(&configDir, "config-dir", "", "config directory or file path (defaults to OS-specific location)")
	command.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table, json or yaml")

	return command
}

func checkOutput(output string) error {
	switch output {
	case outputTable, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

// progressPrinter redraws a single status line.
func progressPrinter(w io.Writer) jackett.ProgressFunc {
	return func(completed, total int, label string) {
		fmt.Fprintf(w, "\r\033[K[%d/%d] %s", completed, total, label)
		if completed >= total {
			fmt.Fprintln(w)
		}
	}
}

func render[T any](w io.Writer, output string, items []T, table func(io.Writer, []T) error) error {
	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case outputYAML:
		// Go through JSON so the field names and custom encodings match the API.
		raw, err := json.Marshal(items)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(generic)
	default:
		return table(w, items)
	}
}

func resultTable(w io.Writer, results []models.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPROVIDER\tSIZE\tSEEDS\tPEERS\tRESOLUTION\tINFO HASH")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.Name, r.Provider, r.SizeDisplay, r.Seeds, r.Peers, r.Resolution, r.InfoHash)
	}
	return tw.Flush()
}

func indexerTable(w io.Writer, indexers []models.Indexer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSEARCH\tTV-SEARCH\tMOVIE-SEARCH")
	for _, idx := range indexers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			idx.ID, idx.DisplayName(), capsColumn(idx.Search), capsColumn(idx.TVSearch), capsColumn(idx.MovieSearch))
	}
	return tw.Flush()
}

func capsColumn(caps models.SearchCaps) string {
	if !caps.Available {
		return "-"
	}
	params := caps.Params.Params()
	if len(params) == 0 {
		return "yes"
	}
	return strings.Join(params, ",")
}
