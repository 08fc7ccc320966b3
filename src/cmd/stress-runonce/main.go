package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"imgpaste/src/messages"
	"imgpaste/src/singleinstance"
)

type stressOptions struct {
	n        int
	mode     string
	deadline time.Duration
}

type counts struct {
	ok, busy, failed int32
}

func main() {
	if err := newRootCmd(&stressOptions{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-runonce",
		Short:         "Hammer a running imgpaste instance with delegated requests",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := singleinstance.NewClient(singleinstance.RangeFromEnv())
			return runWithOptions(*opts, client, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().StringVar(&opts.mode, "mode", "std", "std|clip run-once cycles, or capture|paste triggers")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

// request performs one delegated call for mode and reports whether the
// resident accepted it.
func request(ctx context.Context, client singleinstance.Client, mode string) (bool, error) {
	switch mode {
	case "std", "clip":
		delegated, _, err := client.TryRunOnce(ctx, mode == "std")
		return delegated, err
	default:
		kind, err := messages.ParseKind(mode)
		if err != nil {
			return false, err
		}
		return client.SendTrigger(ctx, kind)
	}
}

func runWithOptions(opts stressOptions, client singleinstance.Client, out io.Writer) error {
	if opts.mode != "std" && opts.mode != "clip" {
		if _, err := messages.ParseKind(opts.mode); err != nil {
			return err
		}
	}

	var wg sync.WaitGroup
	var c counts

	start := time.Now()
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			delegated, err := request(ctx, client, opts.mode)
			switch {
			case err != nil && strings.Contains(strings.ToLower(err.Error()), "busy"):
				atomic.AddInt32(&c.busy, 1)
			case err != nil || !delegated:
				atomic.AddInt32(&c.failed, 1)
			default:
				atomic.AddInt32(&c.ok, 1)
			}
		}()
	}
	wg.Wait()
	fmt.Fprintf(out, "launched=%d ok=%d busy=%d err=%d elapsed=%s\n", opts.n, c.ok, c.busy, c.failed, time.Since(start))
	return nil
}
