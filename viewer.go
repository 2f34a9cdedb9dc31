package docsnap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/phuslu/log"
)

// rodViewer is one live browser session pointed at one document. It owns the
// launched browser process and releases it via Close. Sessions are single
// use: gating and pagination mutate viewer state, so a new conversion gets a
// new viewer.
type rodViewer struct {
	cfg      serviceConfig
	logger   log.Logger
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// Compile-time interface checks.
var (
	_ gateSurface    = (*rodViewer)(nil)
	_ pageSurface    = (*rodViewer)(nil)
	_ documentViewer = (*rodViewer)(nil)
)

var pdfMagic = []byte("%PDF-")

// downloadLinkStrategies locate an anchor pointing at the original document
// file. Ordered by confidence.
var downloadLinkStrategies = []elementStrategy{
	bySelector(`a[href$=".pdf"]`),
	bySelector(`a[href*=".pdf?" i]`),
	bySelector(`a[download]`),
	bySelector(`a[href*="download" i]`),
}

const fetchOriginalTimeout = 30 * time.Second

// FetchOriginal probes the page for a direct link to the original document
// file and fetches it over HTTP reusing the session's cookies. The bool
// reports whether a link was found; fetch or validation failures after a
// link was found are returned as errors so the caller can fall back to
// raster capture.
func (v *rodViewer) FetchOriginal(ctx context.Context) ([]byte, bool, error) {
	hit := findAcrossFrames(v.page, downloadLinkStrategies, 0)
	if hit == nil {
		return nil, false, nil
	}

	href, err := hit.el.Property("href")
	if err != nil || href.Str() == "" {
		return nil, false, nil
	}
	target := href.Str()
	v.logger.Debug().Str("strategy", hit.strategy).Str("url", target).Msg("direct document link found")

	data, err := v.fetchWithSession(ctx, target)
	if err != nil {
		return nil, true, err
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, true, fmt.Errorf("linked resource is not a document file")
	}
	return data, true, nil
}

// fetchWithSession downloads a URL carrying the browser session's cookies,
// so gated origins serve the same content the session sees.
func (v *rodViewer) fetchWithSession(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchOriginalTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", v.cfg.userAgent)

	cookies, err := v.page.Cookies([]string{url})
	if err == nil {
		for _, c := range cookies {
			req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
		}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
