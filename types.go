package docsnap

import (
	"fmt"
	"time"

	"github.com/phuslu/log"

	"github.com/alunbr/go-docsnap/internal/fileutil"
)

// Viewport bounds in pixels.
const (
	MinViewportDim = 320
	MaxViewportDim = 4096
)

// Default capture parameters.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800

	// defaultUserAgent matches a desktop Chrome build; some gated viewers
	// refuse to render for obviously headless agents.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// defaultJPEGQuality trades file size against legibility; captures are
	// rendered text, which survives lossy compression well.
	defaultJPEGQuality = 85

	// maxWalkPages bounds the pagination loop for documents that expose no
	// usable termination signal.
	maxWalkPages = 500
)

// Default time budgets.
const (
	defaultTimeout       = 3 * time.Minute
	defaultNavTimeout    = 30 * time.Second
	defaultGateBudget    = 60 * time.Second
	defaultSettleTimeout = 10 * time.Second
)

// Viewport is the browser viewport geometry in pixels.
type Viewport struct {
	Width  int
	Height int
}

// Validate checks that viewport dimensions are within bounds.
func (v Viewport) Validate() error {
	if v.Width < MinViewportDim || v.Width > MaxViewportDim ||
		v.Height < MinViewportDim || v.Height > MaxViewportDim {
		return fmt.Errorf("%w: %dx%d (must be between %d and %d)",
			ErrInvalidViewport, v.Width, v.Height, MinViewportDim, MaxViewportDim)
	}
	return nil
}

// Credentials holds the material used to clear email and passcode gates.
// Empty fields mean the credential is not available; encountering a gate
// that requires a missing credential is an ErrConfiguration failure.
type Credentials struct {
	Email    string
	Passcode string
}

// Request contains conversion parameters for a single document.
type Request struct {
	URL         string      // document viewer URL (required)
	Credentials Credentials // optional gate credentials
}

// Validate checks that required fields are present and the URL is one a
// browser can navigate to.
func (r Request) Validate() error {
	if r.URL == "" {
		return ErrNoURL
	}
	if !fileutil.IsURL(r.URL) {
		return fmt.Errorf("%w: %q is not an http(s) URL", ErrNoURL, r.URL)
	}
	return nil
}

// GateState describes what gating the current page presents. It is derived
// by inspecting the live DOM across all frames and is never cached: gates
// can appear, be cleared, and reappear across navigations.
type GateState int

const (
	NoGate GateState = iota
	ConsentOverlay
	EmailForm
	PasscodeForm
	EmailAndPasscodeForm
)

// String returns a human-readable gate state name.
func (g GateState) String() string {
	switch g {
	case NoGate:
		return "none"
	case ConsentOverlay:
		return "consent"
	case EmailForm:
		return "email"
	case PasscodeForm:
		return "passcode"
	case EmailAndPasscodeForm:
		return "email+passcode"
	default:
		return fmt.Sprintf("GateState(%d)", int(g))
	}
}

// PageCapture is one captured page: a compressed raster image, its 0-based
// position in the document, and the viewer's own page label when one was
// exposed ("3 / 12" or similar; empty otherwise). Immutable once created.
type PageCapture struct {
	Index int
	Label string
	Image []byte
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout       time.Duration // overall per-conversion budget
	navTimeout    time.Duration // single navigation / load wait
	gateBudget    time.Duration // total gate-resolution budget
	settleTimeout time.Duration // post-transition settle wait
	viewport      Viewport
	userAgent     string
	jpegQuality   int
	bypassCSP     bool
	scripting     bool
	noSandbox     bool
}

func defaultServiceConfig() serviceConfig {
	return serviceConfig{
		timeout:       defaultTimeout,
		navTimeout:    defaultNavTimeout,
		gateBudget:    defaultGateBudget,
		settleTimeout: defaultSettleTimeout,
		viewport:      Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight},
		userAgent:     defaultUserAgent,
		jpegQuality:   defaultJPEGQuality,
		bypassCSP:     true,
		scripting:     true,
	}
}

// WithTimeout sets the overall per-conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("docsnap: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithViewport sets the browser viewport geometry.
func WithViewport(v Viewport) Option {
	return func(s *Service) {
		s.cfg.viewport = v
	}
}

// WithUserAgent overrides the browser user agent string.
func WithUserAgent(ua string) Option {
	return func(s *Service) {
		if ua != "" {
			s.cfg.userAgent = ua
		}
	}
}

// WithNoSandbox disables the Chrome sandbox. Required in most containerized
// environments; also implied by the CI and ROD_BROWSER_BIN env vars.
func WithNoSandbox(on bool) Option {
	return func(s *Service) {
		s.cfg.noSandbox = on
	}
}

// WithLogger sets the structured logger. Internal gate and selector detail
// is logged here and never surfaced in returned errors.
func WithLogger(l log.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}
