package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/letmevibethatforyou/locatex"
	"github.com/letmevibethatforyou/locatex/engine"
	"github.com/letmevibethatforyou/locatex/htmldoc"
	"github.com/letmevibethatforyou/locatex/internal/config"
	"github.com/letmevibethatforyou/locatex/internal/report"
	"github.com/urfave/cli/v2"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 16 << 20
)

func main() {
	if os.Getenv("LOCATEX_LOG_FORMAT") == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}

	app := &cli.App{
		Name:      "locate",
		Usage:     "Find elements in an HTML snapshot by natural-language text",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "HTML file to scan; \"-\" reads stdin",
				Value:   "-",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "Fetch the HTML snapshot from this URL instead of --file",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML file with default search settings",
				EnvVars: []string{"LOCATEX_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Text to look for; positional arg is a fallback",
			},
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Restrict to an element type (button, link, input, ...)",
			},
			&cli.BoolFlag{
				Name:  "exact",
				Usage: "Require a text source to equal the query",
			},
			&cli.BoolFlag{
				Name:  "case-sensitive",
				Usage: "Match case exactly",
			},
			&cli.IntFlag{
				Name:    "max-results",
				Aliases: []string{"n"},
				Usage:   "Maximum number of elements to return",
				EnvVars: []string{"LOCATEX_MAX_RESULTS"},
				Value:   locatex.DefaultMaxResults,
			},
			&cli.BoolFlag{
				Name:  "include-hidden",
				Usage: "Also consider hidden elements",
			},
			&cli.StringFlag{
				Name:  "container",
				Usage: "CSS selector limiting the scan to one subtree",
			},
			&cli.StringFlag{
				Name:  "near",
				Usage: "Text of a reference element to rank nearby elements higher",
			},
			&cli.StringFlag{
				Name:  "near-selector",
				Usage: "CSS selector of the reference element; wins over --near",
			},
			&cli.Float64Flag{
				Name:  "threshold",
				Usage: "Distance beyond which proximity no longer counts",
				Value: locatex.DefaultProximityThreshold,
			},
			&cli.StringSliceFlag{
				Name:  "direction",
				Usage: "Preferred direction from the reference (right, below, left, above); repeatable",
			},
			&cli.StringSliceFlag{
				Name:  "filter",
				Usage: "Attribute filter in attr=value or attr format; repeatable",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for fetching and scanning",
				Value: defaultTimeout,
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	ctx := c.Context

	query := strings.TrimSpace(c.String("query"))
	if query == "" && c.NArg() > 0 {
		query = strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	}

	timeout := c.Duration("timeout")
	if timeout <= 0 {
		slog.WarnContext(ctx, "timeout must be positive; using default", "timeout", timeout, "default", defaultTimeout)
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	settings, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	settings = config.Merge(settings, flagSettings(c))

	opts, err := settings.Options()
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	filterOptions, err := buildFilterOptions(c.StringSlice("filter"))
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}
	opts = append(opts, filterOptions...)

	doc, err := loadDocument(ctx, c.String("url"), c.String("file"))
	if err != nil {
		return err
	}

	if sel := strings.TrimSpace(c.String("container")); sel != "" {
		container := doc.First(sel)
		if container == nil {
			return fmt.Errorf("container selector %q matches nothing", sel)
		}
		opts = append(opts, locatex.WithContainer(container))
	}
	if sel := strings.TrimSpace(c.String("near-selector")); sel != "" {
		near := doc.First(sel)
		if near == nil {
			return fmt.Errorf("near selector %q matches nothing", sel)
		}
		opts = append(opts, locatex.WithNearElement(near))
	}

	slog.InfoContext(ctx, "locating elements",
		"query", query,
		"type", settings.Type,
		"near", settings.Near,
		"filter_count", len(filterOptions),
	)

	locator := engine.New(doc, engine.WithLogger(slog.Default()))
	results, err := locator.Locate(ctx, query, opts...)
	if err != nil {
		return fmt.Errorf("locate failed: %w", err)
	}

	if err := printReport(report.Build(doc, results)); err != nil {
		return fmt.Errorf("failed to serialize results: %w", err)
	}
	return nil
}

// flagSettings collects the settings given explicitly on the command line.
func flagSettings(c *cli.Context) config.Search {
	var s config.Search
	s.Type = strings.TrimSpace(c.String("type"))
	s.Near = strings.TrimSpace(c.String("near"))
	if c.IsSet("exact") {
		v := c.Bool("exact")
		s.ExactMatch = &v
	}
	if c.IsSet("case-sensitive") {
		v := c.Bool("case-sensitive")
		s.CaseSensitive = &v
	}
	if c.IsSet("include-hidden") {
		v := c.Bool("include-hidden")
		s.IncludeHidden = &v
	}
	if c.IsSet("max-results") {
		v := c.Int("max-results")
		s.MaxResults = &v
	}
	if c.IsSet("threshold") {
		v := c.Float64("threshold")
		s.ProximityThreshold = &v
	}
	s.Directions = c.StringSlice("direction")
	return s
}

func buildFilterOptions(raw []string) ([]locatex.SearchOption, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	options := make([]locatex.SearchOption, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, fmt.Errorf("filter cannot be empty")
		}

		attr, value, hasValue := strings.Cut(item, "=")
		attr = strings.TrimSpace(attr)
		if attr == "" {
			return nil, fmt.Errorf("filter attribute must be non-empty: %q", item)
		}
		if !hasValue {
			options = append(options, locatex.Exists(attr))
			continue
		}
		options = append(options, locatex.Eq(attr, strings.TrimSpace(value)))
	}

	return options, nil
}

func loadDocument(ctx context.Context, url, file string) (*htmldoc.Document, error) {
	if url != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
		}
		return htmldoc.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	}

	if file == "" || file == "-" {
		return htmldoc.Parse(os.Stdin)
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()
	return htmldoc.Parse(f)
}

func printReport(r report.Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	fmt.Println(string(data))
	return nil
}
