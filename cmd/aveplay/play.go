package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/erparts/go-aveplay"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

func newPlayCmd(a *app) *cobra.Command {
	var (
		limit       time.Duration
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Play a file headless, decoding frames in real time",
		Long: "Play runs the player clock and decodes every due frame without displaying it. " +
			"Useful to check that a file decodes at speed and to watch the player metrics.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("metrics-addr") {
				a.cfg.MetricsAddr = metricsAddr
			}
			interval, _ := a.cfg.GetTickInterval()

			player, err := a.openPlayer(args[0])
			if err != nil {
				return err
			}
			defer player.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if limit > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, limit)
				defer cancel()
			}
			return a.play(ctx, player, interval)
		},
	}
	cmd.Flags().DurationVar(&limit, "for", 0, "stop after this much wall time (0 plays until the end or Ctrl-C)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while playing")
	return cmd
}

// play runs the player in the background and, when configured, the metrics
// endpoint. It returns when playback ends, ctx is done or either fails.
func (a *app) play(ctx context.Context, player *aveplay.Player, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if addr := a.cfg.MetricsAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			a.logger.Info().Str("addr", addr).Msg("serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		// the metrics server follows playback
		defer cancel()
		return a.runPlayback(ctx, player, interval)
	})
	return g.Wait()
}

func (a *app) runPlayback(ctx context.Context, player *aveplay.Player, interval time.Duration) error {
	info := player.Info()
	if info.IsImage {
		a.logger.Info().Msg("still image, nothing to play")
		_, err := player.Frame()
		return err
	}
	if err := player.Play(); err != nil {
		return err
	}
	if err := player.StartBackground(ctx, interval); err != nil {
		return err
	}
	defer player.StopBackground()

	a.logger.Info().
		Str("loop", player.LoopMode().String()).
		Str("direction", player.Direction().String()).
		Float64("speed", player.Speed()).
		Dur("duration", info.Duration()).
		Msg("playing")

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			a.logger.Info().Float64("position_ms", player.CurrentTimeInMs()).Msg("playback interrupted")
			return nil
		case <-ticker.C:
		}

		state := player.State()
		a.logger.Info().
			Int64("frame", player.CurrentFrameNumber()).
			Float64("position_ms", player.CurrentTimeInMs()).
			Str("seek", player.SeekCapability().String()).
			Str("state", state.String()).
			Msg("progress")

		switch state {
		case aveplay.Eof:
			a.logger.Info().Msg("end of media")
			return nil
		case aveplay.Error:
			return errors.New("playback failed, see the log for details")
		}
	}
}
