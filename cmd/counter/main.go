package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/draftstate/channel"
	"github.com/tailored-agentic-units/draftstate/observability"
	"github.com/tailored-agentic-units/draftstate/store"
)

type counter struct {
	Count   int   `json:"count"`
	History []int `json:"history,omitempty"`
}

type counterOps struct {
	Increment func(by int)
	Fail      func(msg string)
}

func counterUpdaters(b *store.Binder[counter]) counterOps {
	return counterOps{
		Increment: store.Op1(b, "increment", func(d *counter, by int) error {
			d.Count += by
			d.History = append(d.History, by)
			return nil
		}),
		Fail: store.Op1(b, "fail", func(d *counter, msg string) error {
			d.Count = 0
			return errors.New(msg)
		}),
	}
}

var counterChannel, _ = channel.New(counter{}, counterUpdaters, channel.WithName("counter"))

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configFile string
		steps      []int
		failures   []string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Drive a counter provider through a sequence of operations",
		Long: `counter installs a live provider on a context, applies the given
increments in order, runs any failing operations, and prints the final state
as JSON. Failed operations leave the state untouched and are reported on
stderr.`,
		Example: "  counter --step 5 --step=-2 --fail boom",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := store.DefaultConfig()
			if configFile != "" {
				loaded, err := store.LoadConfig(configFile)
				if err != nil {
					return err
				}
				cfg = *loaded
			}

			minLevel := observability.LevelInfo
			if verbose {
				minLevel = observability.LevelVerbose
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}))
			observability.RegisterObserver("slog", observability.LevelFilter{
				Min:  minLevel,
				Next: observability.NewSlogObserver(logger),
			})

			return run(cmd, &cfg, steps, failures)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to provider config (.json or .toml)")
	cmd.Flags().IntSliceVarP(&steps, "step", "s", nil, "Increment to apply; repeat for a sequence")
	cmd.Flags().StringArrayVarP(&failures, "fail", "f", nil, "Run a failing operation with this message")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every operation to stderr")

	return cmd
}

func run(cmd *cobra.Command, cfg *store.Config, steps []int, failures []string) error {
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	var failed []string
	opts = append(opts, store.WithErrorHandler(func(err error) {
		failed = append(failed, err.Error())
	}))

	p := counterChannel.NewProvider(opts...)
	defer p.Close()

	ctx := counterChannel.Provide(context.Background(), p)
	ops, err := counterChannel.Operations(ctx)
	if err != nil {
		return err
	}

	for _, by := range steps {
		ops.Increment(by)
	}
	for _, msg := range failures {
		ops.Fail(msg)
	}

	pair := counterChannel.From(ctx)
	out := struct {
		State   counter  `json:"state"`
		Version uint64   `json:"version"`
		Errors  []string `json:"errors,omitempty"`
	}{
		State:   pair.State,
		Version: pair.Version(),
		Errors:  failed,
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}
