package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"imgpaste/src/config"
	"imgpaste/src/eventloop"
	"imgpaste/src/gui"
	"imgpaste/src/hotkey"
	"imgpaste/src/logutil"
	"imgpaste/src/messages"
	"imgpaste/src/notification"
	"imgpaste/src/runtimeinit"
	"imgpaste/src/session"
	"imgpaste/src/singleinstance"
	"imgpaste/src/tray"
)

const appID = "io.imgpaste"

type mainOptions struct {
	runOnce    bool
	runOnceStd bool
	apiKeyPath string
	engine     string
}

func (o mainOptions) loadOptions() config.LoadOptions {
	return config.LoadOptions{APIKeyPathOverride: o.apiKeyPath, EngineOverride: o.engine}
}

func main() {
	if err := newRootCmd(&mainOptions{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "imgpaste",
		Short:         "Pin screenshots and recognize the text in them",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.runOnce || opts.runOnceStd {
				return runOnce(cmd.Context(), *opts, cmd.OutOrStdout())
			}
			return runResident(*opts)
		},
	}
	cmd.Flags().BoolVar(&opts.runOnce, "run-once", false, "Run OCR once, copy the text to the clipboard and exit")
	cmd.Flags().BoolVar(&opts.runOnceStd, "run-once-std", false, "Run OCR once, print the text to stdout and exit")
	cmd.PersistentFlags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	cmd.PersistentFlags().StringVar(&opts.engine, "engine", "", "OCR engine: tesseract or llm (overrides OCR_ENGINE)")
	cmd.MarkFlagsMutuallyExclusive("run-once", "run-once-std")

	cmd.AddCommand(newTriggerCmd())
	return cmd
}

func newTriggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "trigger {capture|ocr|paste}",
		Short:     "Ask the running instance to start a capture, OCR or clipboard paste",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"capture", "ocr", "paste"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := messages.ParseKind(args[0])
			if err != nil {
				return err
			}
			_, _ = config.Load()
			return sendTrigger(cmd.Context(), singleinstance.NewClient(singleinstance.RangeFromEnv()), kind)
		},
	}
}

func sendTrigger(ctx context.Context, client singleinstance.Client, kind messages.Kind) error {
	delegated, err := client.SendTrigger(ctx, kind)
	if err != nil {
		return fmt.Errorf("send %s: %w", kind, err)
	}
	if !delegated {
		return errors.New("no running instance found")
	}
	return nil
}

// runOnce prefers delegating to a resident and falls back to a standalone cycle.
func runOnce(ctx context.Context, opts mainOptions, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// Load .env early so SINGLEINSTANCE_PORT_* apply to the delegation scan.
	_, _ = config.LoadWithOptions(opts.loadOptions())
	log.SetOutput(io.Discard)

	client := singleinstance.NewClient(singleinstance.RangeFromEnv())
	var standaloneErr error
	text, delegated := handleRunOnceWithDelegation(ctx, client, opts.runOnceStd, func() {
		standaloneErr = runStandalone(ctx, opts, stdout)
	})
	if delegated && opts.runOnceStd {
		fmt.Fprint(stdout, text)
	}
	return standaloneErr
}

// handleRunOnceWithDelegation returns the resident's text and true when the
// resident handled the cycle. Otherwise it calls fallback.
func handleRunOnceWithDelegation(ctx context.Context, client singleinstance.Client, outputToStdout bool, fallback func()) (string, bool) {
	delegated, text, err := client.TryRunOnce(ctx, outputToStdout)
	if err != nil {
		log.Printf("Delegation error: %v; falling back to standalone", err)
		fallback()
		return "", false
	}
	if !delegated {
		log.Printf("No resident detected, running standalone")
		fallback()
		return "", false
	}
	log.Printf("Delegated to resident")
	return text, true
}

// runStandalone performs one cycle in this process. The fyne app only hosts
// the selection overlay.
func runStandalone(ctx context.Context, opts mainOptions, stdout io.Writer) error {
	rt, err := runtimeinit.Bootstrap(ctx, runtimeinit.Options{
		LoadOptions:   opts.loadOptions(),
		SetupLogging:  logutil.Setup,
		InitClipboard: !opts.runOnceStd,
	})
	if err != nil {
		return err
	}

	var target session.ResultTarget = session.ClipboardTarget{}
	if opts.runOnceStd {
		target = session.StdoutTarget{Writer: stdout}
	}

	a := app.NewWithID(appID)
	done := make(chan error, 1)
	go func() {
		cycleID := session.NewCycleID()
		_, err := session.Execute(ctx, session.Options{
			Capture:   session.CaptureOptions{CycleID: cycleID, Selector: gui.NewSelector(a)},
			Recognize: rt.RecognizeOptions(cycleID),
			Target:    target,
		})
		if errors.Is(err, session.ErrNoSelection) {
			err = nil
		}
		done <- err
		a.Quit()
	}()
	a.Run()
	return <-done
}

// runResident starts the tray app, hotkeys and the single-instance server.
func runResident(opts mainOptions) error {
	enableDPIAwareness()

	_, _ = config.LoadWithOptions(opts.loadOptions())
	rng := singleinstance.RangeFromEnv()
	if port, ok := singleinstance.DetectResidentPort(context.Background(), rng); ok {
		return fmt.Errorf("imgpaste is already running on port %d", port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := runtimeinit.Bootstrap(ctx, runtimeinit.Options{
		LoadOptions:   opts.loadOptions(),
		SetupLogging:  logutil.Setup,
		PingLLM:       true,
		InitClipboard: true,
	})
	if err != nil {
		return err
	}
	cfg := rt.Config
	logMonitorConfiguration()

	a := app.NewWithID(appID)
	a.SetIcon(tray.Icon)
	notifier := notification.New(a)

	var loop *eventloop.Loop
	post := func(t messages.Trigger) { loop.Post(t) }

	tr := tray.NewMenu(post, a.Quit)
	tr.Install(a)

	loop = eventloop.New(eventloop.Options{
		Selector:  gui.NewSelector(a),
		Recognize: rt.Recognize,
		UI:        gui.New(a, gui.Options{Post: post, Notifier: notifier, OnBusy: tr.SetBusy}),
		Server:    singleinstance.NewServer(singleinstance.Range{Start: cfg.PortStart, End: cfg.PortEnd}),
		Workers:   1,
	})

	listener, err := hotkey.Listen(bindings(cfg), post)
	if err != nil {
		log.Printf("Hotkeys disabled: %v", err)
		notifier.Show("imgpaste", fmt.Sprintf("Hotkeys disabled: %v", err))
	} else {
		defer listener.Stop()
	}

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			fyne.Do(a.Quit)
		case <-ctx.Done():
		}
	}()

	loopErr := make(chan error, 1)
	go func() {
		err := loop.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("event loop stopped: %v", err)
			notifier.Show("imgpaste", err.Error())
			fyne.Do(a.Quit)
		}
		loopErr <- err
	}()

	log.Printf("imgpaste ready: capture %s, OCR %s, paste %s", cfg.HotkeyCapture, cfg.HotkeyOCR, cfg.HotkeyPaste)
	a.Run()
	cancel()

	if err := <-loopErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func bindings(cfg *config.Config) []hotkey.Binding {
	var out []hotkey.Binding
	for _, b := range []hotkey.Binding{
		{Combo: cfg.HotkeyCapture, Kind: messages.RequestCapture},
		{Combo: cfg.HotkeyOCR, Kind: messages.RequestOCR},
		{Combo: cfg.HotkeyPaste, Kind: messages.RequestClipboardPaste},
	} {
		if strings.TrimSpace(b.Combo) == "" {
			log.Printf("Hotkey for %s disabled", b.Kind)
			continue
		}
		out = append(out, b)
	}
	return out
}
