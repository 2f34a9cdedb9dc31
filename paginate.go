package docsnap

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// pageSurface is the slice of viewer behavior the pagination walker drives
// per page. Implemented by rodViewer; faked in tests.
type pageSurface interface {
	// HasContent reports whether the page renders anything at all: text,
	// images, or an embedded frame. A false means gating cleared onto an
	// empty shell and there is no document to walk.
	HasContent() bool

	// PageLabel reads the document's self-reported page indicator ("3 / 12"
	// or equivalent). The bool reports whether one is exposed.
	PageLabel() (string, bool)

	// SuppressChrome hides header/footer/toolbar/navigation elements so they
	// never appear in the output raster. Idempotent; some viewers re-render
	// chrome after each page transition.
	SuppressChrome() error

	// FocusContent clicks the center of the viewport so keyboard input lands
	// on the content area rather than residual UI.
	FocusContent() error

	// Snapshot captures a raster of the full viewport content area.
	Snapshot() ([]byte, error)

	// Advance sends the document's own next-page keyboard shortcut. A
	// document with no page-advance mechanism treats this as a no-op.
	Advance() error

	// AwaitSettled waits for the page to report a settled state after an
	// advance, bounded by the viewer's settle timeout.
	AwaitSettled()
}

// walk captures every logical page in order. Not restartable: advancing
// consumes the document; a fresh session is required to recapture.
//
// Termination: when the viewer exposes a page label, an unchanged label
// between iterations means the last advance had no effect and the document
// is exhausted. Without a label, a byte-identical raster is the signal. The
// duplicate observation is discarded, never appended, so the returned
// captures are distinct pages with contiguous indices from 0.
func walk(ctx context.Context, ps pageSurface, maxPages int) ([]PageCapture, error) {
	if !ps.HasContent() {
		return nil, fmt.Errorf("%w: page renders no visible content", ErrContentNotFound)
	}

	var captures []PageCapture
	var prevLabel string
	var prevLabeled bool
	var prevShot []byte

	for len(captures) < maxPages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		label, labeled := ps.PageLabel()

		// Chrome suppression and focus are re-applied every iteration; both
		// are best effort and idempotent.
		_ = ps.SuppressChrome()
		_ = ps.FocusContent()

		shot, err := ps.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCapture, err)
		}
		if len(shot) == 0 {
			return nil, fmt.Errorf("%w: empty snapshot", ErrCapture)
		}

		if labeled && prevLabeled && label == prevLabel {
			break
		}
		if !labeled && prevShot != nil && bytes.Equal(shot, prevShot) {
			break
		}

		captures = append(captures, PageCapture{
			Index: len(captures),
			Label: label,
			Image: shot,
		})
		prevLabel, prevLabeled, prevShot = label, labeled, shot

		// Advance failures are absorbed: if the signal had no effect the
		// next iteration observes an unchanged page and terminates.
		_ = ps.Advance()
		ps.AwaitSettled()
	}

	if len(captures) == 0 {
		return nil, fmt.Errorf("%w: no pages captured", ErrContentNotFound)
	}
	return captures, nil
}

// jsSuppressChrome hides navigation and chrome elements. Returns the number
// of elements hidden so repeated calls can be observed in logs.
const jsSuppressChrome = `() => {
	const sels = [
		'header', 'footer', 'nav',
		'[class*="toolbar" i]', '[class*="header" i]', '[class*="footer" i]',
		'[class*="navigation" i]', '[class*="nav-" i]', '[class*="controls" i]',
		'[class*="banner" i]', '[class*="sidebar" i]',
	];
	let n = 0;
	for (const sel of sels) {
		for (const el of document.querySelectorAll(sel)) {
			el.style.setProperty('display', 'none', 'important');
			n++;
		}
	}
	return n;
}`

// jsReadPageLabel scans likely page-indicator elements for an "N / M" (or
// "N of M") text and returns the first match, or the empty string.
const jsReadPageLabel = `() => {
	const sels = ['[class*="page" i]', '[aria-label*="page" i]', '[data-page]'];
	const pattern = /(\d+)\s*(?:\/|of)\s*(\d+)/i;
	for (const sel of sels) {
		for (const el of document.querySelectorAll(sel)) {
			const text = (el.innerText || el.getAttribute('aria-label') || '').trim();
			if (text.length > 40) continue;
			const m = text.match(pattern);
			if (m) return m[0];
		}
	}
	return '';
}`

// jsHasRenderableContent reports whether the body carries any text or
// embedded media. An empty shell after gating means the document never
// loaded.
const jsHasRenderableContent = `() => {
	const body = document.body;
	if (!body) return false;
	if (body.innerText.trim().length > 0) return true;
	return body.querySelector('img, canvas, svg, video, embed, object, iframe') !== null;
}`

// HasContent reports whether the live page renders anything. Evaluation
// failures count as content: the snapshot path surfaces real capture errors.
func (v *rodViewer) HasContent() bool {
	res, err := v.page.Eval(jsHasRenderableContent)
	if err != nil {
		return true
	}
	return res.Value.Bool()
}

// PageLabel reads the viewer's own page indicator from the live DOM.
func (v *rodViewer) PageLabel() (string, bool) {
	res, err := v.page.Eval(jsReadPageLabel)
	if err != nil {
		return "", false
	}
	return normalizePageLabel(res.Value.Str())
}

// SuppressChrome hides chrome/navigation UI in the main document and every
// nested browsing context.
func (v *rodViewer) SuppressChrome() error {
	res, err := v.page.Eval(jsSuppressChrome)
	if err != nil {
		return err
	}
	v.logger.Debug().Int("hidden", res.Value.Int()).Msg("chrome suppressed")

	// Viewers that render the document inside a frame carry chrome there too.
	iframes, err := v.page.Elements("iframe")
	if err != nil {
		return nil
	}
	for _, iframe := range iframes {
		frame, err := iframe.Frame()
		if err != nil {
			continue
		}
		_, _ = frame.Eval(jsSuppressChrome)
	}
	return nil
}

// FocusContent clicks the viewport center once so keyboard shortcuts reach
// the content area.
func (v *rodViewer) FocusContent() error {
	center := proto.Point{
		X: float64(v.cfg.viewport.Width) / 2,
		Y: float64(v.cfg.viewport.Height) / 2,
	}
	if err := v.page.Mouse.MoveTo(center); err != nil {
		return err
	}
	return v.page.Mouse.Click(proto.InputMouseButtonLeft, 1)
}

// Snapshot captures the current viewport as a JPEG raster.
func (v *rodViewer) Snapshot() ([]byte, error) {
	quality := v.cfg.jpegQuality
	data, err := v.page.Timeout(v.cfg.navTimeout).Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: &quality,
	})
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("zero-length screenshot")
	}
	return data, nil
}

// Advance sends the viewer's next-page keyboard shortcut.
func (v *rodViewer) Advance() error {
	return v.page.Keyboard.Press(input.ArrowRight)
}

// AwaitSettled waits for the page transition triggered by Advance to finish.
func (v *rodViewer) AwaitSettled() {
	v.waitSettled(v.cfg.settleTimeout)
}
