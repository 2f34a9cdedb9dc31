package main

import (
	"fmt"
	"os"
	"time"

	"github.com/phuslu/log"
	"go.uber.org/automaxprocs/maxprocs"

	docsnap "github.com/alunbr/go-docsnap"
	"github.com/alunbr/go-docsnap/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	flags, triggers, err := parseFlags(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitUsage)
	}

	if flags.version {
		fmt.Printf("docsnap %s\n", Version)
		os.Exit(ExitSuccess)
	}

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if flags.verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	env := DefaultEnv()
	if flags.config != "" {
		cfg, err := config.LoadConfig(flags.config)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitCodeFor(err))
		}
		env.Config = cfg
	}

	opts, err := serviceOptions(flags, env.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitUsage)
	}

	workers := flags.workers
	if workers == 0 {
		workers = env.Config.Browser.Workers
	}
	poolSize := docsnap.ResolvePoolSize(workers)
	if flags.verbose {
		fmt.Fprintf(os.Stderr, "Pool size: %d\n", poolSize)
	}

	pool := docsnap.NewServicePool(poolSize, opts...)
	defer pool.Close()

	ctx, stop := notifyContext()
	defer stop()

	if err := run(ctx, triggers, flags, env, servicePool{pool: pool}); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

// serviceOptions builds library options from flags over config values.
func serviceOptions(flags *captureFlags, cfg *config.Config) ([]docsnap.Option, error) {
	opts := []docsnap.Option{
		docsnap.WithLogger(newLogger(flags)),
	}

	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid timeout %q", flags.timeout)
		}
		opts = append(opts, docsnap.WithTimeout(d))
	} else if cfg.Browser.TimeoutSeconds > 0 {
		opts = append(opts, docsnap.WithTimeout(time.Duration(cfg.Browser.TimeoutSeconds)*time.Second))
	}

	if flags.viewport != "" {
		vp, err := parseViewport(flags.viewport)
		if err != nil {
			return nil, err
		}
		opts = append(opts, docsnap.WithViewport(vp))
	} else if cfg.Browser.ViewportWidth > 0 && cfg.Browser.ViewportHeight > 0 {
		opts = append(opts, docsnap.WithViewport(docsnap.Viewport{
			Width:  cfg.Browser.ViewportWidth,
			Height: cfg.Browser.ViewportHeight,
		}))
	}

	if ua := firstNonEmpty(flags.userAgent, cfg.Browser.UserAgent); ua != "" {
		opts = append(opts, docsnap.WithUserAgent(ua))
	}

	if cfg.Browser.NoSandbox {
		opts = append(opts, docsnap.WithNoSandbox(true))
	}

	return opts, nil
}

// newLogger builds the structured logger from verbosity flags.
func newLogger(flags *captureFlags) log.Logger {
	level := log.InfoLevel
	if flags.verbose {
		level = log.DebugLevel
	}
	if flags.quiet {
		level = log.ErrorLevel
	}
	return log.Logger{
		Level: level,
		Writer: &log.ConsoleWriter{
			ColorOutput: log.IsTerminal(os.Stderr.Fd()),
			Writer:      os.Stderr,
		},
	}
}
