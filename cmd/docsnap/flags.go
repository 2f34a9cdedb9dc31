package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	docsnap "github.com/alunbr/go-docsnap"
)

// captureFlags holds all flags for the docsnap CLI.
type captureFlags struct {
	config    string
	output    string
	email     string
	passcode  string
	timeout   string
	viewport  string
	userAgent string
	workers   int
	quiet     bool
	verbose   bool
	version   bool
}

// parseFlags parses CLI flags and returns the remaining positional args
// (the trigger text: URLs, optionally with inline credentials).
func parseFlags(args []string) (*captureFlags, []string, error) {
	fs := flag.NewFlagSet("docsnap", flag.ContinueOnError)
	f := &captureFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file (single URL) or directory")
	fs.StringVarP(&f.email, "email", "e", "", "email for email-gated documents")
	fs.StringVarP(&f.passcode, "passcode", "p", "", "passcode for passcode-gated documents")
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-document timeout (e.g., 90s, 3m)")
	fs.StringVar(&f.viewport, "viewport", "", "capture viewport as WIDTHxHEIGHT (default 1280x800)")
	fs.StringVar(&f.userAgent, "user-agent", "", "browser user agent override")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed progress")
	fs.BoolVar(&f.version, "version", false, "show version information")

	fs.Usage = func() { printUsage(os.Stderr) }

	if err := fs.Parse(args[1:]); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// parseViewport parses a "WIDTHxHEIGHT" flag value.
func parseViewport(s string) (docsnap.Viewport, error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return docsnap.Viewport{}, fmt.Errorf("invalid viewport %q (expected WIDTHxHEIGHT)", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return docsnap.Viewport{}, fmt.Errorf("invalid viewport width %q", parts[0])
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return docsnap.Viewport{}, fmt.Errorf("invalid viewport height %q", parts[1])
	}
	return docsnap.Viewport{Width: w, Height: h}, nil
}
