package docsnap

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"github.com/alunbr/go-docsnap/internal/fileutil"
)

// documentViewer is one live browser session pointed at one document. It
// spans the gate-resolution and pagination phases of a conversion and is
// released via Close on every exit path.
type documentViewer interface {
	gateSurface
	pageSurface

	// FetchOriginal probes for a direct link to the original document file
	// and downloads it with the session's cookies. The bool reports whether
	// a link was found.
	FetchOriginal(ctx context.Context) ([]byte, bool, error)

	// Close releases the browser process. Fail-soft: always returns nil
	// after logging shutdown problems, since by Close time the conversion
	// outcome is already decided.
	Close() error
}

// Service converts gated, paginated web documents to PDF. One Service is
// safe for sequential reuse; each conversion launches and tears down its own
// browser session. Use ServicePool for concurrent conversions.
type Service struct {
	cfg      serviceConfig
	logger   log.Logger
	viewers  viewerFactory
	assemble assembler
}

// New creates a Service with the given options applied over defaults.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:      defaultServiceConfig(),
		logger:   log.DefaultLogger,
		assemble: fpdfAssembler{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.viewers = &rodFactory{cfg: s.cfg, logger: s.logger}
	return s
}

// Convert drives one document through gate resolution and pagination and
// returns the assembled PDF. The whole conversion is bounded by the
// configured timeout on top of any deadline ctx already carries.
func (s *Service) Convert(ctx context.Context, req Request) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.cfg.viewport.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.timeout)
	defer cancel()

	s.logger.Info().Str("url", req.URL).Msg("conversion started")

	viewer, err := s.viewers.Open(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	defer viewer.Close()

	if err := resolveGates(ctx, viewer, req.Credentials, s.cfg.gateBudget); err != nil {
		return nil, err
	}

	// A direct link to the original file beats re-rendering it: the result
	// is the true document, not a raster. Fetch failures after gating fall
	// back to capture.
	if data, found, err := viewer.FetchOriginal(ctx); found {
		if err == nil {
			s.logger.Info().Int("bytes", len(data)).Msg("original document fetched directly")
			return data, nil
		}
		s.logger.Debug().Err(err).Msg("direct fetch failed, capturing instead")
	}

	captures, err := walk(ctx, viewer, maxWalkPages)
	if err != nil {
		// Gating cleared but pagination failed: a single-page capture of
		// whatever is rendered is still more useful than nothing.
		captures, err = s.singleShot(ctx, viewer, err)
		if err != nil {
			return nil, err
		}
		s.logger.Warn().Msg("pagination failed, degraded to single-page capture")
	}

	pdfBytes, err := s.assemble.Assemble(captures)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("pages", len(captures)).
		Int("bytes", len(pdfBytes)).
		Msg("conversion finished")
	return pdfBytes, nil
}

// singleShot captures the current page once. walkErr is returned unchanged
// when even the single capture fails, preserving the original failure cause.
func (s *Service) singleShot(ctx context.Context, viewer documentViewer, walkErr error) ([]PageCapture, error) {
	if err := ctx.Err(); err != nil {
		return nil, walkErr
	}

	_ = viewer.SuppressChrome()
	shot, err := viewer.Snapshot()
	if err != nil || len(shot) == 0 {
		return nil, walkErr
	}
	label, _ := viewer.PageLabel()
	return []PageCapture{{Index: 0, Label: label, Image: shot}}, nil
}

// Close releases Service resources. Browser sessions are per-conversion, so
// there is nothing persistent to tear down; kept so Service satisfies the
// pool's lifecycle and callers can defer it symmetrically.
func (s *Service) Close() error {
	return nil
}

// ConvertToFile converts the document and writes the PDF to path atomically.
// Write failures are ErrWriteOutput, distinct from conversion failures.
func (s *Service) ConvertToFile(ctx context.Context, req Request, path string) error {
	data, err := s.Convert(ctx, req)
	if err != nil {
		return err
	}
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
