package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/indrapalijama/alkitab-api-v3/internal/platform/config"
	"github.com/indrapalijama/alkitab-api-v3/internal/platform/observability"
	"github.com/indrapalijama/alkitab-api-v3/internal/platform/upstream"
	"github.com/indrapalijama/alkitab-api-v3/internal/scripture"
	"github.com/indrapalijama/alkitab-api-v3/internal/services"
)

var errBaseURLRequired = errors.New("content source url required (--base-url or APP_BIBLE_BASE_URL)")

type app struct {
	baseURL      string
	profilesFile string
	timeout      time.Duration
	asJSON       bool
	verbose      bool

	out io.Writer
}

// offlineFetcher backs commands that never touch the content source.
type offlineFetcher struct{}

func (offlineFetcher) Fetch(_ context.Context, _ ...string) (string, error) {
	return "", errBaseURLRequired
}

func rootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	cmd := &cobra.Command{
		Use:           "alkitab",
		Short:         "Resolve book names and read chapters from the content source",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.baseURL, "base-url", "", "Content source base URL (defaults to APP_BIBLE_BASE_URL)")
	flags.StringVar(&a.profilesFile, "profiles", "", "Version profile YAML (defaults to APP_BIBLE_PROFILES_FILE, then the built-in table)")
	flags.DurationVar(&a.timeout, "timeout", 10*time.Second, "Per-request timeout")
	flags.BoolVar(&a.asJSON, "json", false, "Print results as JSON")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		a.resolveCmd(),
		a.findCmd(),
		a.readCmd(),
		a.versionsCmd(),
	)
	return cmd
}

func (a *app) resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <book>",
		Short: "Show which catalog entry a book reference resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(false)
			if err != nil {
				return err
			}
			identity, tier, err := svc.Resolve(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(map[string]any{
					"name":        identity.Name,
					"englishName": identity.EnglishName,
					"shortCode":   identity.ShortCode,
					"tier":        tier.String(),
				})
			}
			_, err = fmt.Fprintf(a.out, "%s (%s, %s) matched by %s\n", identity.Name, identity.ShortCode, identity.EnglishName, tier)
			return err
		},
	}
}

func (a *app) findCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <book>",
		Short: "List the chapter numbers published for a book",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(true)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			metadata, err := svc.Find(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(map[string]any{
					"book":        metadata.Book,
					"total_verse": metadata.TotalVerse,
					"verses":      metadata.Verses,
				})
			}
			numbers := make([]string, 0, len(metadata.Verses))
			for _, n := range metadata.Verses {
				numbers = append(numbers, strconv.Itoa(n))
			}
			_, err = fmt.Fprintf(a.out, "%s: %d\n%s\n", metadata.Book, metadata.TotalVerse, strings.Join(numbers, " "))
			return err
		},
	}
}

func (a *app) readCmd() *cobra.Command {
	var version string
	cmd := &cobra.Command{
		Use:   "read <book> <chapter>",
		Short: "Print one chapter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chapter, err := strconv.Atoi(strings.TrimSpace(args[1]))
			if err != nil {
				return fmt.Errorf("%w: chapter must be a number", services.ErrInvalidInput)
			}
			svc, err := a.service(true)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			result, err := svc.Read(ctx, services.ReadCommand{Book: args[0], Chapter: chapter, Version: version})
			if err != nil {
				return err
			}
			if a.asJSON {
				verses := make([]map[string]any, 0, len(result.Verses))
				for _, v := range result.Verses {
					verses = append(verses, map[string]any{"verse": v.Number, "content": v.Content})
				}
				return a.printJSON(map[string]any{
					"book":         result.Books,
					"chapter":      result.Number,
					"title":        result.Titles,
					"total_verses": result.TotalVerses,
					"version":      result.Version,
					"verses":       verses,
				})
			}

			var b strings.Builder
			if result.Version != nil {
				fmt.Fprintf(&b, "[%s]\n", *result.Version)
			}
			for _, title := range result.Titles {
				fmt.Fprintf(&b, "## %s\n", title)
			}
			for _, v := range result.Verses {
				fmt.Fprintf(&b, "%d %s\n", v.Number, v.Content)
			}
			_, err = io.WriteString(a.out, b.String())
			return err
		},
	}
	cmd.Flags().StringVar(&version, "version", scripture.DefaultVersion, "Translation code")
	return cmd
}

func (a *app) versionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List translations with a known profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(false)
			if err != nil {
				return err
			}
			versions := svc.Versions()
			if a.asJSON {
				rows := make([]map[string]string, 0, len(versions))
				for _, v := range versions {
					rows = append(rows, map[string]string{"code": v.Code, "name": v.DisplayName})
				}
				return a.printJSON(rows)
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			for _, v := range versions {
				fmt.Fprintf(w, "%s\t%s\n", v.Code, v.DisplayName)
			}
			return w.Flush()
		},
	}
}

// service wires a BibleService. With online unset no content source is
// needed and any fetch fails.
func (a *app) service(online bool) (services.BibleService, error) {
	logger := zap.NewNop()
	if a.verbose {
		var err error
		if logger, err = observability.NewLoggerWithLevel("debug"); err != nil {
			return nil, err
		}
	}

	profilesFile := strings.TrimSpace(a.profilesFile)
	if profilesFile == "" {
		value, err := config.EnvironmentValue("APP_BIBLE_PROFILES_FILE")
		if err != nil {
			return nil, err
		}
		profilesFile = strings.TrimSpace(value)
	}
	profiles := scripture.DefaultProfiles()
	if profilesFile != "" {
		loaded, err := scripture.LoadProfilesFile(profilesFile)
		if err != nil {
			return nil, err
		}
		profiles = loaded
	}

	var fetcher services.PageFetcher = offlineFetcher{}
	if online {
		baseURL := strings.TrimSpace(a.baseURL)
		if baseURL == "" {
			value, err := config.EnvironmentValue("APP_BIBLE_BASE_URL")
			if err != nil {
				return nil, err
			}
			baseURL = strings.TrimSpace(value)
		}
		if baseURL == "" {
			return nil, errBaseURLRequired
		}
		client, err := upstream.NewClient(baseURL,
			upstream.WithTimeouts(a.timeout, a.timeout),
			upstream.WithLogger(logger.Named("upstream")),
		)
		if err != nil {
			return nil, err
		}
		fetcher = client
	}

	return services.NewBibleService(services.BibleServiceDeps{
		Profiles: profiles,
		Fetcher:  fetcher,
		Logger:   logger,
	})
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
