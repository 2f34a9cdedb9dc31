package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	docsnap "github.com/alunbr/go-docsnap"
)

// ErrInvalidArgs reports a CLI invocation with no trigger text.
var ErrInvalidArgs = errors.New("usage: docsnap [flags] <url> [url...]")

// Converter is the interface for the capture service.
type Converter interface {
	ConvertToFile(ctx context.Context, req docsnap.Request, path string) error
}

// Pool hands out converters for parallel captures.
type Pool interface {
	Acquire() Converter
	Release(Converter)
}

// servicePool adapts the library pool to the CLI's Pool interface.
type servicePool struct {
	pool *docsnap.ServicePool
}

var _ Pool = servicePool{}

func (p servicePool) Acquire() Converter { return p.pool.Acquire() }

func (p servicePool) Release(c Converter) {
	if svc, ok := c.(*docsnap.Service); ok {
		p.pool.Release(svc)
	}
}

// run parses trigger text, captures each document, and writes the PDFs.
// Returns the first capture error; remaining captures still complete.
func run(ctx context.Context, triggers []string, flags *captureFlags, env *Environment, pool Pool) error {
	if len(triggers) == 0 {
		return ErrInvalidArgs
	}

	creds := docsnap.Credentials{
		Email:    firstNonEmpty(flags.email, env.Config.Credentials.Email),
		Passcode: firstNonEmpty(flags.passcode, env.Config.Credentials.Passcode),
	}

	reqs := make([]docsnap.Request, 0, len(triggers))
	for _, text := range triggers {
		trig, err := docsnap.ParseTrigger(text)
		if err != nil {
			return fmt.Errorf("%w: %q", err, text)
		}
		reqs = append(reqs, trig.Request(creds))
	}

	batch := len(reqs) > 1

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, req := range reqs {
		outPath := outputPathFor(req.URL, flags.output, env.Config.Output.DefaultDir, batch)

		wg.Add(1)
		go func(req docsnap.Request, outPath string) {
			defer wg.Done()

			svc := pool.Acquire()
			defer pool.Release(svc)

			if err := captureOne(ctx, svc, req, outPath, env, flags.quiet); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(req, outPath)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// captureOne converts a single document and writes the result.
func captureOne(ctx context.Context, svc Converter, req docsnap.Request, outPath string, env *Environment, quiet bool) error {
	if err := svc.ConvertToFile(ctx, req, outPath); err != nil {
		fmt.Fprintf(env.Stderr, "Failed %s: %v\n", req.URL, err)
		return err
	}

	if !quiet {
		fmt.Fprintf(env.Stdout, "Created %s\n", outPath)
	}
	return nil
}

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// outputPathFor resolves the destination for one capture. An explicit
// --output names the file for a single URL and the directory for a batch;
// otherwise the name derives from the URL inside the configured default
// directory.
func outputPathFor(rawURL, outFlag, defaultDir string, batch bool) string {
	if outFlag != "" && !batch {
		return outFlag
	}

	dir := defaultDir
	if outFlag != "" {
		dir = outFlag
	}
	return filepath.Join(dir, deriveFileName(rawURL)+".pdf")
}

// deriveFileName builds a file name from the URL's last path segment,
// falling back to the host, then to "document".
func deriveFileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "document"
	}

	name := path.Base(strings.TrimRight(u.Path, "/"))
	name = strings.TrimSuffix(name, path.Ext(name))
	if name == "." || name == "/" {
		name = ""
	}
	if name == "" {
		name = u.Hostname()
	}

	name = unsafePathChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		return "document"
	}
	return name
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
