package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bilgisen/adforge/internal/avatar"
	"github.com/bilgisen/adforge/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var errGaveUp = errors.New("video did not finish within the attempt limit")

type pollOptions struct {
	baseURL  string
	apiKey   string
	interval time.Duration
	attempts int
	verbose  bool
}

var opts pollOptions

var rootCmd = &cobra.Command{
	Use:   "poll <video-id>",
	Short: "Wait for an avatar video to finish rendering",
	Long: `Poll queries the status endpoint of a running AdForge server on a fixed
interval until the video completes, fails, or the attempt limit is reached.`,
	Args: cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if opts.verbose {
			level = "debug"
		}
		return logger.Init(logger.Config{Level: level, Output: "stderr", Pretty: true})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := newPoller(opts).wait(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.Status)
		if view.VideoURL != nil {
			fmt.Fprintln(cmd.OutOrStdout(), *view.VideoURL)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&opts.baseURL, "url", envOr("ADFORGE_URL", "http://localhost:8080"), "server base URL")
	rootCmd.Flags().StringVar(&opts.apiKey, "api-key", os.Getenv("ADFORGE_API_KEY"), "API key sent as X-API-Key")
	rootCmd.Flags().DurationVar(&opts.interval, "interval", 5*time.Second, "delay between status queries")
	rootCmd.Flags().IntVar(&opts.attempts, "attempts", 120, "maximum number of status queries")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
}

type statusPoller struct {
	client   *resty.Client
	interval time.Duration
	attempts int
}

func newPoller(o pollOptions) *statusPoller {
	client := resty.New().
		SetBaseURL(strings.TrimRight(o.baseURL, "/")).
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json")
	if o.apiKey != "" {
		client.SetHeader("X-API-Key", o.apiKey)
	}
	return &statusPoller{client: client, interval: o.interval, attempts: o.attempts}
}

// wait returns the first terminal status. Transport errors count as attempts.
func (p *statusPoller) wait(ctx context.Context, id string) (*avatar.StatusView, error) {
	log := logger.Component("poll")

	for attempt := 1; attempt <= p.attempts; attempt++ {
		view, err := p.status(ctx, id)
		switch {
		case err != nil:
			log.Warn().Err(err).Int("attempt", attempt).Msg("Status query failed")
		case view.Status.Terminal():
			return view, nil
		default:
			log.Debug().Str("status", string(view.Status)).Int("attempt", attempt).Msg("Still rendering")
		}

		if attempt == p.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.interval):
		}
	}
	return nil, errGaveUp
}

func (p *statusPoller) status(ctx context.Context, id string) (*avatar.StatusView, error) {
	var view avatar.StatusView
	var apiErr struct {
		Error string `json:"error"`
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&view).
		SetError(&apiErr).
		Get("/api/videos/{id}/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode(), apiErr.Error)
		}
		return nil, fmt.Errorf("server returned %d", resp.StatusCode())
	}
	return &view, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
