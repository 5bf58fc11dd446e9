package main

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/rivulet-dev/rivulet/pkg/metrics"
	"github.com/rivulet-dev/rivulet/pkg/middleware"
	"github.com/rivulet-dev/rivulet/pkg/signal"
)

func pipelineCmd() *cobra.Command {
	var (
		profileName string
		senders     int
		events      int
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Push load through an instrumented operator pipeline",
		Long: `Builds a map/filter/scan pipeline over a synthetic source, wraps it
in Prometheus instrumentation and a tracing span, and drives the
configured number of events through it as fast as the dispatch path
allows.

With --metrics-addr set, the collected metrics are served on
/metrics for scraping while the run is in progress.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProfile(profileName, senders, events)
			if err != nil {
				return err
			}
			total := p.Senders * p.Events

			registry := prometheus.NewRegistry()
			ins := metrics.New(metrics.WithRegistry(registry), metrics.WithSubsystem("bench"))

			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
				go func() {
					slog.Info("serving metrics", "addr", metricsAddr)
					if err := http.ListenAndServe(metricsAddr, mux); err != nil {
						slog.Error("metrics server stopped", "error", err)
					}
				}()
			}

			source := signal.New(func(obs signal.Observer[int, signal.Never]) signal.Disposable {
				for i := 0; i < total; i++ {
					obs.SendNext(i)
				}
				obs.SendCompleted()
				return signal.Disposed()
			})

			pipeline := middleware.Traced("bench.pipeline",
				metrics.Instrument(ins, "pipeline",
					signal.Scan(
						signal.Filter(
							signal.Map(source, func(v int) int { return v * 3 }),
							func(v int) bool { return v%2 == 0 },
						),
						0,
						func(acc, v int) int { return acc + v },
					),
				),
			)

			slog.Info("pipeline bench starting", "profile", p.Name, "events", total)

			var delivered atomic.Int64
			done := make(chan struct{})
			start := time.Now()
			pipeline.Observe(signal.NewObserver(
				func(int) { delivered.Add(1) },
				func(signal.Never) {},
				func() { close(done) },
			))
			<-done
			elapsed := time.Since(start)

			slog.Info("pipeline bench complete",
				"elapsed", elapsed.Round(time.Millisecond),
				"events_in", total,
				"events_out", delivered.Load(),
				"throughput", rate(total, elapsed),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&profileName, "profile", "fast", "Load profile (fast, standard, stress)")
	cmd.Flags().IntVar(&senders, "senders", 0, "Override source multiplier")
	cmd.Flags().IntVar(&events, "events", 0, "Override events per multiplier")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the run")

	return cmd
}
