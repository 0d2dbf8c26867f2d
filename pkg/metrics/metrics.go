// Package metrics exposes playback metrics for Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Playback metrics
var (
	FramesRendered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asciiplay_frames_rendered_total",
			Help: "Total number of frames flushed to the display",
		},
	)

	PacketsDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asciiplay_packets_discarded_total",
			Help: "Total number of non-video packets skipped",
		},
		[]string{"kind"},
	)

	FrameProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asciiplay_frame_processing_seconds",
			Help:    "Time spent decoding and rendering one frame",
			Buckets: []float64{.001, .0025, .005, .01, .02, .033, .05, .1, .25},
		},
	)

	PacingSleepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asciiplay_pacing_sleep_seconds",
			Help:    "Time slept to hold the stream frame rate",
			Buckets: []float64{0, .005, .01, .02, .033, .05, .1},
		},
	)

	FramesBehind = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asciiplay_frames_behind_total",
			Help: "Frames whose processing exceeded the frame interval",
		},
	)
)

// Session metrics
var (
	SessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asciiplay_sessions_total",
			Help: "Playback sessions by outcome",
		},
		[]string{"status"},
	)
)

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
