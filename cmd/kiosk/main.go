package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/timeclock-go/internal/client"
	"github.com/cmlabs-hris/timeclock-go/internal/config"
	"github.com/cmlabs-hris/timeclock-go/internal/offline"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/cron"
	"github.com/spf13/cobra"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

type kiosk struct {
	cfg      *config.KioskConfig
	queue    *offline.Store
	monitor  *client.Monitor
	terminal *client.Terminal
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	k := &kiosk{}

	cmd := &cobra.Command{
		Use:          "kiosk",
		Short:        "Timeclock terminal with an offline queue",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return k.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return k.close()
		},
	}

	cmd.AddCommand(
		newClockInCmd(k),
		newClockOutCmd(k),
		newSyncCmd(k),
		newPendingCmd(k),
		newRunCmd(k),
	)
	return cmd
}

func (k *kiosk) open(ctx context.Context) error {
	cfg, err := config.LoadKiosk()
	if err != nil {
		return err
	}
	setupLogger(cfg.LogLevel)

	queue, err := offline.Open(ctx, cfg.QueuePath, offline.WithLeaseTTL(cfg.QueueLease))
	if err != nil {
		return err
	}

	api := client.New(cfg.APIURL, cfg.APIToken, cfg.RequestTimeout)
	k.cfg = cfg
	k.queue = queue
	k.monitor = client.NewMonitor(api)
	k.terminal = client.NewTerminal(api, queue, k.monitor)
	return nil
}

func (k *kiosk) close() error {
	if k.queue == nil {
		return nil
	}
	return k.queue.Close()
}

// probe checks connectivity first so older queued actions are replayed
// before a new one is sent.
func (k *kiosk) probe(ctx context.Context) {
	if err := k.monitor.Probe(ctx); err != nil {
		slog.Warn("Sync after reconnect failed", "error", err)
	}
}

func (k *kiosk) now() time.Time {
	return time.Now().In(k.cfg.Location)
}

func newClockInCmd(k *kiosk) *cobra.Command {
	var employeeID, date, clock string

	cmd := &cobra.Command{
		Use:   "clock-in",
		Short: "Record a clock-in for an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			date, clock = k.defaults(date, clock)
			k.probe(ctx)

			res, err := k.terminal.ClockIn(ctx, employeeID, date, clock)
			if err != nil {
				return err
			}
			printResult(cmd, "clock-in", res)
			return nil
		},
	}

	cmd.Flags().StringVar(&employeeID, "employee", "", "Employee ID")
	cmd.Flags().StringVar(&date, "date", "", "Date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&clock, "time", "", "Time HH:MM (default now)")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}

func newClockOutCmd(k *kiosk) *cobra.Command {
	var employeeID, entryID, date, clock string

	cmd := &cobra.Command{
		Use:   "clock-out",
		Short: "Record a clock-out for an employee",
		Long: "Record a clock-out. Without --entry the employee's open entry for the date is looked up, " +
			"which needs the API; offline, pass --entry explicitly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			date, clock = k.defaults(date, clock)
			k.probe(ctx)

			res, err := k.terminal.ClockOut(ctx, employeeID, entryID, date, clock)
			if err != nil {
				return err
			}
			printResult(cmd, "clock-out", res)
			return nil
		},
	}

	cmd.Flags().StringVar(&employeeID, "employee", "", "Employee ID")
	cmd.Flags().StringVar(&entryID, "entry", "", "Time entry ID to close")
	cmd.Flags().StringVar(&date, "date", "", "Date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&clock, "time", "", "Time HH:MM (default now)")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}

func newSyncCmd(k *kiosk) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay queued actions if the API is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			res, reachable, err := k.terminal.SyncNow(ctx)
			if err != nil {
				return err
			}
			if !reachable {
				fmt.Fprintln(cmd.OutOrStdout(), "API unreachable, nothing synced")
				return nil
			}
			stats, _, err := k.terminal.Pending(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d of %d, %d still queued\n", res.Succeeded, res.Attempted, stats.Total())
			return nil
		},
	}
}

func newPendingCmd(k *kiosk) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List actions waiting in the offline queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, actions, err := k.terminal.Pending(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "queued=%d in_flight=%d done=%d\n", stats.Queued, stats.InFlight, stats.Done)
			for _, a := range actions {
				fmt.Fprintf(out, "%s  %-9s employee=%s date=%s time=%s", a.ID, a.Kind, a.EmployeeID, a.Date, a.Time)
				if a.EntryID != "" {
					fmt.Fprintf(out, " entry=%s", a.EntryID)
				}
				if a.Attempts > 0 {
					fmt.Fprintf(out, " attempts=%d last_error=%q", a.Attempts, a.LastError)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func newRunCmd(k *kiosk) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Watch connectivity and sync the queue until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			scheduler := cron.NewScheduler(ctx)
			k.monitor.Schedule(scheduler, k.cfg.ProbeInterval)
			scheduler.Start()

			<-ctx.Done()
			scheduler.Stop()
			return nil
		},
	}
}

func (k *kiosk) defaults(date, clock string) (string, string) {
	now := k.now()
	if date == "" {
		date = now.Format(dateLayout)
	}
	if clock == "" {
		clock = now.Format(clockLayout)
	}
	return date, clock
}

func printResult(cmd *cobra.Command, kind string, res client.ClockResult) {
	out := cmd.OutOrStdout()
	switch {
	case res.Entry != nil:
		fmt.Fprintf(out, "%s recorded: entry %s\n", kind, res.Entry.ID)
	case res.Queued != nil:
		fmt.Fprintf(out, "%s queued offline: action %s\n", kind, res.Queued.ID)
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})).With(
		slog.String("app", "timeclock-kiosk"),
	))
}
