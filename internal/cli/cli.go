package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Serdar715/sinkprobe/internal/banner"
	"github.com/Serdar715/sinkprobe/internal/browser"
	"github.com/Serdar715/sinkprobe/internal/config"
	"github.com/Serdar715/sinkprobe/internal/logging"
	"github.com/Serdar715/sinkprobe/internal/payloads"
	"github.com/Serdar715/sinkprobe/internal/report"
	"github.com/Serdar715/sinkprobe/internal/scanner"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// launchFunc starts the rendering surface for a run
type launchFunc func(opts browser.Options) (scanner.Surface, error)

func launchBrowser(opts browser.Options) (scanner.Surface, error) {
	return browser.Launch(opts)
}

// app holds the collaborators a root command runs with
type app struct {
	launch launchFunc
	out    io.Writer
}

// flagKeys binds cobra flags to viper keys
var flagKeys = map[string]string{
	"mode":             "mode",
	"url":              "url",
	"payloads":         "payloads",
	"wait":             "wait",
	"settle":           "settle",
	"timeout":          "timeout",
	"sink":             "sink",
	"signal":           "signal",
	"snippet":          "snippet",
	"sanitizer-url":    "sanitizer.url",
	"sanitizer-file":   "sanitizer.file",
	"sanitizer-global": "sanitizer.global",
	"browser-bin":      "browser.bin",
	"visible":          "browser.visible",
	"out":              "out",
	"format":           "format",
	"no-table":         "no_table",
	"verbose":          "verbose",
	"silent":           "silent",
}

// Execute runs the sinkprobe command line
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the root command with the real browser launcher
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{launch: launchBrowser, out: os.Stdout})
}

func newRootCmd(a *app) *cobra.Command {
	var configFile string
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "sinkprobe --mode <mode> --url <URL> --payloads <file>",
		Short: "Browser-driven XSS payload prober with sanitizer differential testing",
		Long: banner.GetBanner() + `
sinkprobe - XSS Payload Prober

Runs every payload of a list through a real headless browser and records,
per payload, whether it executed before and after a client-side sanitizer
(DOMPurify by default) processed it.

Modes:
  • reflected (param)  substitute the payload into the PAYLOAD marker of the URL
  • dom (inject)       assign the payload to an in-page sandbox element

The default innerHTML sink never runs <script> elements, so script payloads
only report an execution with --sink fragment.
`,
		Example: `  # Reflected parameter scan
  sinkprobe --mode reflected --url "http://127.0.0.1:8080/search?q=PAYLOAD" --payloads payloads.txt

  # DOM injection scan against a static page
  sinkprobe --mode dom --url http://127.0.0.1:8080/sink --payloads payloads.txt

  # Script-executing sink and a local sanitizer build
  sinkprobe --mode dom --url http://127.0.0.1:8080/sink --payloads payloads.txt \
    --sink fragment --sanitizer-file purify.min.js

  # YAML report without the summary table
  sinkprobe --mode param --url "http://t/?q=PAYLOAD" --payloads p.txt --format yaml --out r.yaml --no-table`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(v, configFile); err != nil {
				return exitErr(ExitUsage, err)
			}
			if missing := missingRequired(v); len(missing) > 0 {
				_ = cmd.Usage()
				return exitErr(ExitUsage, fmt.Errorf("missing required flag(s): %s", strings.Join(missing, ", ")))
			}

			cfg, err := config.FromViper(v)
			if err != nil {
				if errors.Is(err, config.ErrUnknownMode) {
					return exitErr(ExitUnknownMode, err)
				}
				return exitErr(ExitUsage, err)
			}
			if err := cfg.Validate(); err != nil {
				return exitErr(ExitUsage, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.run(ctx, cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&configFile, "config", "", "YAML config file")

	// Required
	flags.StringP("mode", "m", "", "Scan mode: reflected (param) or dom (inject)")
	flags.StringP("url", "u", "", "Target URL; reflected mode needs the PAYLOAD marker")
	flags.StringP("payloads", "p", "", "Payload file, one payload per line")

	// Timing
	flags.Int("wait", 1000, "Delay between payloads in ms (capped at 500)")
	flags.Int("settle", 50, "Time in ms to let the page run handlers before observing")
	flags.Int("timeout", 30, "Navigation timeout in seconds")

	// Injection
	flags.String("sink", string(config.SinkInnerHTML), "Sink for dom mode: innerHTML (<script> stays inert) or fragment (<script> runs)")
	flags.String("signal", string(config.SignalHook), "Execution signal (hook, binding, dialog)")
	flags.Int("snippet", scanner.DefaultSnippet, "Characters of resulting markup kept per phase")

	// Sanitizer
	flags.String("sanitizer-url", config.DefaultSanitizerURL, "Sanitizer script URL")
	flags.String("sanitizer-file", "", "Local sanitizer script, injected inline instead of the URL")
	flags.String("sanitizer-global", config.DefaultSanitizerGlobal, "Global object exposing sanitize()")

	// Browser
	flags.String("browser-bin", "", "Chromium binary (default: auto-detect or download)")
	flags.BoolP("visible", "v", false, "Run browser in visible mode")

	// Output
	flags.StringP("out", "o", config.DefaultOutputFile, "Report file")
	flags.StringP("format", "f", "json", "Report format (json, yaml, markdown, html)")
	flags.Bool("no-table", false, "Do not print the summary table")
	flags.Bool("verbose", false, "Enable verbose output")
	flags.Bool("silent", false, "Silence progress output")

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	rootCmd.AddCommand(newPayloadsCmd(a.out))
	return rootCmd
}

func missingRequired(v *viper.Viper) []string {
	var missing []string
	for _, key := range []string{"mode", "url", "payloads"} {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, "--"+key)
		}
	}
	return missing
}

// run executes one scan. The surface is closed exactly once on every path after launch.
func (a *app) run(ctx context.Context, cfg *config.ScanConfig) error {
	logging.Setup(logging.Options{Verbose: cfg.Verbose, Silent: cfg.Silent})

	if !cfg.Silent {
		fmt.Fprintln(a.out, banner.GetBanner())
	}

	list, err := payloads.Load(cfg.PayloadFile)
	if err != nil {
		if errors.Is(err, payloads.ErrPayloadFileNotFound) {
			return exitErr(ExitPayloadFile, err)
		}
		return exitErr(ExitUsage, err)
	}

	if !cfg.Silent {
		printConfigSummary(cfg)
	}

	surface, err := a.launch(browser.Options{
		Bin:        cfg.BrowserBin,
		Visible:    cfg.VisibleMode,
		NavTimeout: cfg.NavTimeout,
	})
	if err != nil {
		return exitErr(ExitBrowserLaunch, err)
	}
	defer func() {
		if err := surface.Close(); err != nil {
			log.Debug().Err(err).Msg("Closing browser")
		}
	}()

	var progress scanner.ProgressReporter = scanner.NewConsoleProgress(cfg.Verbose)
	if cfg.Silent {
		progress = scanner.NewSilentProgress()
	}

	records, err := scanner.NewDriver(cfg, surface, progress).Run(ctx, list)
	switch {
	case errors.Is(err, scanner.ErrUnknownMode):
		return exitErr(ExitUnknownMode, err)
	case errors.Is(err, context.Canceled):
		color.Yellow("\n[!] Scan interrupted by user (Ctrl+C), saving %d results", len(records))
	case err != nil:
		return exitErr(ExitUsage, err)
	}

	if err := report.Write(records, cfg.OutputFile, cfg.OutputFormat); err != nil {
		return exitErr(ExitUsage, err)
	}

	if !cfg.Silent && !cfg.NoTable {
		report.SummaryTable(a.out, records)
	}

	fmt.Fprintf(a.out, "[*] Done. Results saved to %s\n", cfg.OutputFile)
	return nil
}

func printConfigSummary(cfg *config.ScanConfig) {
	color.Yellow("\n┌─────────────────────────────────────────────────┐")
	color.Yellow("│              SCAN CONFIGURATION                 │")
	color.Yellow("└─────────────────────────────────────────────────┘")

	color.White("  Mode:        %s", cfg.Mode)
	if cfg.Mode == config.ModeInjection {
		color.White("  Sink:        %s", cfg.Sink)
	}
	color.White("  Signal:      %s", cfg.Signal)
	color.White("  Timeout:     %s", cfg.NavTimeout)
	color.White("  Settle:      %s", cfg.Settle)
	if throttle := cfg.Throttle(); throttle > 0 {
		color.White("  Throttle:    %s", throttle)
	}
	if cfg.SanitizerFile != "" {
		color.White("  Sanitizer:   %s (inline)", cfg.SanitizerFile)
	} else {
		color.White("  Sanitizer:   %s", cfg.SanitizerURL)
	}
	color.White("  Report:      %s (%s)", cfg.OutputFile, cfg.OutputFormat)

	color.Yellow("─────────────────────────────────────────────────")
}
