// Command formfill answers a form in the terminal. The form comes from a
// local YAML/JSON definition or from a running formify-api server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/formify/form-service/internal/client"
	"github.com/formify/form-service/internal/formdef"
	"github.com/formify/form-service/internal/formfill"
	"github.com/formify/form-service/internal/formview"
	"github.com/formify/form-service/internal/models"
	"github.com/formify/form-service/internal/submission"
	"github.com/formify/form-service/internal/utils"
	"github.com/google/uuid"
)

type options struct {
	file    string
	api     string
	formID  string
	token   string
	list    bool
	verbose bool
}

func main() {
	var opts options
	flag.StringVar(&opts.file, "file", "", "path to a YAML or JSON form definition")
	flag.StringVar(&opts.api, "api", "", "base URL of a formify-api server, e.g. http://localhost:8080")
	flag.StringVar(&opts.formID, "form", "", "form id on the server (with -api)")
	flag.StringVar(&opts.token, "token", os.Getenv("FORMIFY_TOKEN"), "bearer token for the server")
	flag.BoolVar(&opts.list, "responses", false, "list stored responses instead of answering (owner only)")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		if errors.Is(err, formfill.ErrAborted) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "formfill: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	environment := "production"
	if opts.verbose {
		environment = "development"
	}
	logger := utils.NewLogger(os.Stderr, environment).Slog()

	var (
		form      *models.Form
		submitter submission.Submitter
		err       error
	)
	switch {
	case opts.api != "":
		if opts.formID == "" {
			return errors.New("-form is required with -api")
		}
		c := client.New(opts.api, client.WithToken(opts.token))
		if opts.list {
			return printResponses(ctx, c, opts.formID, out)
		}
		if form, err = c.GetForm(ctx, opts.formID); err != nil {
			return err
		}
		submitter = c
	case opts.file != "":
		if form, err = formdef.Load(opts.file); err != nil {
			return err
		}
		submitter = printSubmitter(out)
	default:
		return errors.New("one of -file or -api is required")
	}

	view := formview.New(form,
		formview.WithSubmitter(submitter),
		formview.WithNotifier(submission.LogNotifier{Logger: logger}),
		formview.WithLogger(logger),
	)
	defer view.Close()

	result, err := formfill.NewFiller(formfill.NewSurveyDriver(), logger).Run(ctx, view)
	if err != nil {
		return err
	}
	logger.Debug("Response recorded", "response_id", result.ResponseID)
	return nil
}

// printSubmitter writes the normalized answers as JSON instead of sending
// them anywhere.
func printSubmitter(out io.Writer) submission.Submitter {
	return submission.SubmitterFunc(func(_ context.Context, req submission.SubmitRequest) (*submission.SubmitResult, error) {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(req); err != nil {
			return nil, err
		}
		return &submission.SubmitResult{ResponseID: uuid.NewString(), CreatedAt: time.Now().UTC()}, nil
	})
}

func printResponses(ctx context.Context, fetcher submission.ResponsesFetcher, formID string, out io.Writer) error {
	responses, err := fetcher.ListResponses(ctx, formID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d response(s)\n", len(responses))
	for _, r := range responses {
		fmt.Fprintf(out, "%s  %s  %d answer(s)\n", r.CreatedAt.Format(time.RFC3339), r.ID, len(r.Answers))
	}
	return nil
}
