package docsnap

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/phuslu/log"
)

// viewerFactory opens one live document viewer per conversion request.
// Implemented by rodFactory; faked in orchestration tests.
type viewerFactory interface {
	Open(ctx context.Context, url string) (documentViewer, error)
}

// Compile-time interface check.
var _ viewerFactory = (*rodFactory)(nil)

// rodFactory launches headless Chrome via go-rod. Rod downloads a pinned
// Chromium build on first run if no browser is found; ROD_BROWSER_BIN points
// it at a pre-installed binary instead (Docker/containerized environments).
type rodFactory struct {
	cfg    serviceConfig
	logger log.Logger
}

// Open launches one browser process, creates one page, applies rendering
// configuration, and navigates to the target URL. The returned viewer owns
// the browser process; Close releases it on every exit path.
func (f *rodFactory) Open(ctx context.Context, url string) (documentViewer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := launcher.New().Headless(true)

	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments.
	if f.cfg.noSandbox || os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	// Gate UI frequently lives in cross-origin frames; keep those frames
	// in-process so they stay reachable from the main session.
	l = l.
		Set("disable-site-isolation-trials").
		Set("disable-features", "IsolateOrigins,site-per-process").
		Set("disable-dev-shm-usage")

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		closeQuietly(f.logger, browser, l)
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	if err := f.configurePage(page); err != nil {
		closeQuietly(f.logger, browser, l)
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	v := &rodViewer{
		cfg:      f.cfg,
		logger:   f.logger,
		launcher: l,
		browser:  browser,
		page:     page,
	}

	if err := v.navigate(ctx, url); err != nil {
		v.Close()
		return nil, err
	}

	return v, nil
}

// configurePage applies user agent, viewport, CSP, and scripting settings.
func (f *rodFactory) configurePage(page *rod.Page) error {
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.cfg.userAgent}); err != nil {
		return err
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             f.cfg.viewport.Width,
		Height:            f.cfg.viewport.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return err
	}

	if f.cfg.bypassCSP {
		if err := (proto.PageSetBypassCSP{Enabled: true}).Call(page); err != nil {
			return err
		}
	}

	if !f.cfg.scripting {
		if err := (proto.EmulationSetScriptExecutionDisabled{Value: true}).Call(page); err != nil {
			return err
		}
	}

	return nil
}

// navigate loads the target URL and waits for a settled state: load event
// fired, network quiet, and no visible loading indicator.
func (v *rodViewer) navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p := v.page.Timeout(v.cfg.navTimeout)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	v.waitSettled(v.cfg.settleTimeout)
	return nil
}

// Close tears down the page, the browser process, and the launcher's
// temporary profile. Closing fails soft: if the browser process is already
// gone, this is a no-op, never an escalated error.
func (v *rodViewer) Close() error {
	if v.page != nil {
		if err := v.page.Close(); err != nil {
			v.logger.Debug().Err(err).Msg("page close")
		}
		v.page = nil
	}
	closeQuietly(v.logger, v.browser, v.launcher)
	v.browser = nil
	v.launcher = nil
	return nil
}

func closeQuietly(logger log.Logger, browser *rod.Browser, l *launcher.Launcher) {
	if browser != nil {
		if err := browser.Close(); err != nil {
			logger.Debug().Err(err).Msg("browser close")
		}
	}
	if l != nil {
		l.Cleanup()
	}
}

// waitSettled blocks until the page reports no pending network activity and
// no visible loading indicator, or the timeout elapses. Best effort: a page
// that never settles is handled by the caller's own budget.
func (v *rodViewer) waitSettled(timeout time.Duration) {
	p := v.page.Timeout(timeout)

	wait := p.WaitRequestIdle(networkIdleWindow, nil, nil, nil)
	wait()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !v.loadingIndicatorVisible() {
			return
		}
		time.Sleep(settlePollInterval)
	}
	v.logger.Debug().Msg("loading indicator still visible after settle timeout")
}

// loadingIndicatorVisible reports whether a spinner/loader element is
// currently rendered with non-zero size.
func (v *rodViewer) loadingIndicatorVisible() bool {
	res, err := v.page.Eval(jsLoadingIndicatorVisible)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

const (
	// networkIdleWindow is how long the network must stay quiet before a
	// navigation counts as settled.
	networkIdleWindow = 300 * time.Millisecond

	settlePollInterval = 200 * time.Millisecond
)

// jsLoadingIndicatorVisible reports whether any spinner/loader element is
// rendered with non-zero size.
const jsLoadingIndicatorVisible = `() => {
	const sels = ['[class*="loading" i]', '[class*="spinner" i]', '[class*="loader" i]', '[role="progressbar"]'];
	for (const sel of sels) {
		for (const el of document.querySelectorAll(sel)) {
			const r = el.getBoundingClientRect();
			if (r.width > 0 && r.height > 0 && getComputedStyle(el).visibility !== 'hidden') {
				return true;
			}
		}
	}
	return false;
}`
