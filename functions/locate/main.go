package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/locatex"
	"github.com/letmevibethatforyou/locatex/engine"
	"github.com/letmevibethatforyou/locatex/htmldoc"
	"github.com/letmevibethatforyou/locatex/internal/config"
	"github.com/letmevibethatforyou/locatex/internal/report"
	"github.com/urfave/cli/v2"
)

// Request is the Lambda payload: an HTML snapshot and what to look for in it.
type Request struct {
	HTML      string `json:"html"`
	Query     string `json:"query"`
	Container string `json:"container,omitempty"`
	config.Search
}

type Handler struct {
	defaults config.Search
}

func NewHandler(defaults config.Search) *Handler {
	return &Handler{defaults: defaults}
}

func (h *Handler) HandleLocate(ctx context.Context, req Request) (report.Report, error) {
	slog.InfoContext(ctx, "Processing locate request", "query", req.Query, "html_bytes", len(req.HTML))

	if strings.TrimSpace(req.HTML) == "" {
		return report.Report{}, errors.WithSecondaryError(locatex.ErrInvalidOption, errors.New("html is required"))
	}

	doc, err := htmldoc.ParseString(req.HTML)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse HTML", "error", err)
		return report.Report{}, err
	}

	opts, err := config.Merge(h.defaults, req.Search).Options()
	if err != nil {
		return report.Report{}, err
	}
	if sel := strings.TrimSpace(req.Container); sel != "" {
		container := doc.First(sel)
		if container == nil {
			return report.Report{}, errors.WithSecondaryError(locatex.ErrInvalidOption,
				errors.Newf("container selector %q matches nothing", sel))
		}
		opts = append(opts, locatex.WithContainer(container))
	}

	results, err := engine.New(doc).Locate(ctx, req.Query, opts...)
	if err != nil {
		slog.WarnContext(ctx, "Locate failed", "error", err)
		return report.Report{}, err
	}

	slog.InfoContext(ctx, "Located elements",
		"request_id", results.RequestID,
		"results", len(results.Items),
		"diagnostics", len(results.Diagnostics),
	)
	return report.Build(doc, results), nil
}

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "locate-function",
		Usage: "Lambda function locating elements in posted HTML snapshots",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "TOML file with default search settings",
				EnvVars: []string{"LOCATEX_CONFIG"},
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

	defaults, err := config.Load(c.String("config"))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load config", "error", err)
		return err
	}

	handler := NewHandler(defaults)

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		slog.InfoContext(ctx, "Running in Lambda environment")
		lambda.Start(handler.HandleLocate)
	} else {
		slog.InfoContext(ctx, "Function cannot run outside of AWS Lambda environment")
	}

	return nil
}
