package main

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/rivulet-dev/rivulet/pkg/signal"
)

func subjectCmd() *cobra.Command {
	var (
		profileName string
		senders     int
		events      int
		fanOut      int
	)

	cmd := &cobra.Command{
		Use:   "subject",
		Short: "Stress a subject with concurrent senders",
		Long: `Drives a subject from many goroutines at once and verifies the
fan-out guarantees under contention: every observer receives every
element exactly once, and the terminal event arrives exactly once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProfile(profileName, senders, events)
			if err != nil {
				return err
			}
			if fanOut > 0 {
				p.FanOut = fanOut
			}

			slog.Info("subject bench starting",
				"profile", p.Name,
				"senders", p.Senders,
				"events_per_sender", p.Events,
				"fan_out", p.FanOut,
			)

			subject := signal.NewSubject[int, signal.Never]()

			var received atomic.Int64
			var completions atomic.Int64
			done := make(chan struct{})
			var doneOnce sync.Once
			remaining := int64(p.FanOut)

			for i := 0; i < p.FanOut; i++ {
				subject.Observe(signal.NewObserver(
					func(int) { received.Add(1) },
					func(signal.Never) {},
					func() {
						completions.Add(1)
						if atomic.AddInt64(&remaining, -1) == 0 {
							doneOnce.Do(func() { close(done) })
						}
					},
				))
			}

			start := time.Now()
			var wg sync.WaitGroup
			wg.Add(p.Senders)
			for i := 0; i < p.Senders; i++ {
				go func() {
					defer wg.Done()
					for j := 0; j < p.Events; j++ {
						subject.SendNext(j)
					}
				}()
			}
			wg.Wait()
			subject.SendCompleted()
			<-done
			elapsed := time.Since(start)

			sent := p.Senders * p.Events
			wantReceived := int64(sent) * int64(p.FanOut)
			if got := received.Load(); got != wantReceived {
				return fmt.Errorf("delivery mismatch: received %d, want %d", got, wantReceived)
			}
			if got := completions.Load(); got != int64(p.FanOut) {
				return fmt.Errorf("completion mismatch: %d completions, want %d", got, p.FanOut)
			}

			slog.Info("subject bench complete",
				"elapsed", elapsed.Round(time.Millisecond),
				"events_sent", sent,
				"deliveries", received.Load(),
				"send_rate", rate(sent, elapsed),
				"delivery_rate", rate(int(received.Load()), elapsed),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&profileName, "profile", "fast", "Load profile (fast, standard, stress)")
	cmd.Flags().IntVar(&senders, "senders", 0, "Override sender goroutine count")
	cmd.Flags().IntVar(&events, "events", 0, "Override events per sender")
	cmd.Flags().IntVar(&fanOut, "fan-out", 0, "Override observer count")

	return cmd
}
