package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"journeymap/application/ports"
	"journeymap/application/services"
	"journeymap/domain/core/aggregates"
	"journeymap/domain/core/valueobjects"
	"journeymap/infrastructure/config"
	"journeymap/infrastructure/di"

	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	var (
		replay  string
		delay   time.Duration
		title   string
		save    bool
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "extract [scenario-file]",
		Short: "Stream a journey extraction and print every event",
		Long: `Reads a scenario from the given file, or stdin when the file is "-" or
omitted, and runs the full pipeline. With --replay the recorded model answer
in that file is used instead of calling the language model.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := readScenario(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if replay != "" {
				cfg.ReplayFile = replay
				cfg.ReplayDelay = delay
			}
			if !save {
				cfg.StorageBackend = "memory"
			}
			cfg.MetricsBackend = "none"
			if !verbose {
				cfg.LogLevel = "error"
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			container, cleanup, err := di.InitializeContainer(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			return runExtract(ctx, cmd.OutOrStdout(), container.Generator, services.GenerationRequest{
				JourneyID: valueobjects.NewJourneyID(),
				OwnerID:   "journeyctl",
				Title:     title,
				Scenario:  scenario,
			})
		},
	}
	cmd.Flags().StringVar(&replay, "replay", "", "recorded model answer to replay")
	cmd.Flags().DurationVar(&delay, "delay", 0, "pause between replayed deltas, e.g. 20ms")
	cmd.Flags().StringVar(&title, "title", "", "journey title")
	cmd.Flags().BoolVar(&save, "save", false, "save the journey to the configured store")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "keep service logs")
	return cmd
}

// journeyStreamer is the part of the generation service extract uses
type journeyStreamer interface {
	Stream(ctx context.Context, req services.GenerationRequest, sink ports.EventSink) (*aggregates.Journey, error)
}

func runExtract(ctx context.Context, w io.Writer, gen journeyStreamer, req services.GenerationRequest) error {
	journey, err := gen.Stream(ctx, req, &terminalSink{w: w})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(journey.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	heading.Fprintln(w, "\nJourney")
	fmt.Fprintln(w, string(out))
	return nil
}

func readScenario(stdin io.Reader, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("failed to read scenario: %w", err)
	}
	scenario := strings.TrimSpace(string(data))
	if scenario == "" {
		return "", fmt.Errorf("scenario is empty")
	}
	return scenario, nil
}

// terminalSink prints one colored line per pipeline event
type terminalSink struct {
	w io.Writer
}

// maxPreview bounds the payload shown per event line
const maxPreview = 120

func (s *terminalSink) Send(ctx context.Context, eventType string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	label := info
	switch eventType {
	case services.EventStart:
		label = heading
	case services.EventComplete:
		label = good
	case services.EventError:
		label = bad
	}
	label.Fprintf(s.w, "%-14s", eventType)

	if eventType == services.EventComplete {
		fmt.Fprintln(s.w)
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	preview := string(data)
	if len(preview) > maxPreview {
		preview = preview[:maxPreview] + "..."
	}
	subtle.Fprintln(s.w, preview)
	return nil
}
