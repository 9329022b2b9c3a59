// cmd/socialpulse/commands.go

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"socialpulse/internal/bootstrap"
	"socialpulse/internal/display"
	"socialpulse/internal/domain/content"
	"socialpulse/internal/domain/profile"
	"socialpulse/internal/service/relevance"
)

// pulser is the part of the pulse service the commands use
type pulser interface {
	Profile() *profile.Profile
	Pulse(ctx context.Context) (content.AggregationResult, error)
	Trends(ctx context.Context) ([]content.ScoredItem, error)
	Volume(ctx context.Context) (relevance.VolumeReport, error)
}

// newPulser builds a pulse service from the environment. Tests replace it.
var newPulser = func(ctx context.Context) (pulser, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	provider, err := bootstrap.NewProvider(cfg.Upstream)
	if err != nil {
		return nil, err
	}

	svc := bootstrap.NewService(cfg.Pulse, provider, bootstrap.NewFileStore(cfg.Profile), nil)
	if err := svc.Load(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

func newAggregateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "aggregate",
		Short: "Collect trends, trend posts, keyword posts and tracked account posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newPulser(cmd.Context())
			if err != nil {
				return err
			}
			return runAggregate(cmd.Context(), cmd.OutOrStdout(), svc, flagJSON)
		},
	}
}

func newTrendsCmd() *cobra.Command {
	var withVolume bool

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show trends ranked by profile relevance",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newPulser(cmd.Context())
			if err != nil {
				return err
			}
			return runTrends(cmd.Context(), cmd.OutOrStdout(), svc, withVolume, flagJSON)
		},
	}

	cmd.Flags().BoolVar(&withVolume, "volume", false, "include a volume analysis of the trends")
	return cmd
}

func newRateLimitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ratelimit",
		Short: "Check the X API rate limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := bootstrap.NewXClient(cfg.Upstream, nil)
			if err != nil {
				return err
			}

			status := client.CheckRateLimit(cmd.Context())
			if flagJSON {
				return writeJSON(cmd.OutOrStdout(), status)
			}
			display.RenderRateLimit(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

// runAggregate prints the pulse. A missing profile prints the empty
// pulse; a rate limit prints what was collected and fails.
func runAggregate(ctx context.Context, out io.Writer, svc pulser, asJSON bool) error {
	result, err := svc.Pulse(ctx)
	if err != nil && !errors.Is(err, content.ErrNoProfile) && !content.IsRateLimited(err) {
		return err
	}

	if asJSON {
		if werr := writeJSON(out, result); werr != nil {
			return werr
		}
	} else {
		display.RenderPulse(out, result, svc.Profile())
	}

	if errors.Is(err, content.ErrNoProfile) {
		fmt.Fprintln(out, "No profile loaded. Create one with --profile or PROFILE_PATH.")
		return nil
	}
	return err
}

func runTrends(ctx context.Context, out io.Writer, svc pulser, withVolume, asJSON bool) error {
	trends, err := svc.Trends(ctx)
	if err != nil && !errors.Is(err, content.ErrNoProfile) {
		return err
	}
	if trends == nil {
		trends = []content.ScoredItem{}
	}

	var report relevance.VolumeReport
	if withVolume {
		if report, err = svc.Volume(ctx); err != nil && !errors.Is(err, content.ErrNoProfile) {
			return err
		}
	}

	if asJSON {
		payload := map[string]interface{}{"trends": trends}
		if withVolume {
			payload["volume"] = report
		}
		return writeJSON(out, payload)
	}

	display.RenderTrends(out, trends)
	if withVolume {
		display.RenderVolume(out, report)
	}
	return nil
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
