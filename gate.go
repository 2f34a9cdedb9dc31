package docsnap

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

// gateSurface is the slice of viewer behavior the gate-resolution loop
// drives. Implemented by rodViewer; faked in tests.
type gateSurface interface {
	// DetectGate derives the current gate state from the live DOM across all
	// frames. Never cached: gates can reappear after being cleared.
	DetectGate() (GateState, error)

	// DismissConsent clears a consent overlay if one is present. Absence is
	// not an error; the bool reports whether anything was dismissed.
	DismissConsent() (bool, error)

	// SubmitEmail fills and submits the email-capture form.
	SubmitEmail(email string) error

	// SubmitPasscode fills and submits the passcode form.
	SubmitPasscode(code string) error

	// AwaitTransition waits for a navigation or settled state after a
	// submission, bounded by the viewer's settle timeout.
	AwaitTransition()
}

// clearedStreak is how many consecutive NoGate observations are required
// before gating counts as resolved; a single observation can land
// mid-transition while the next gate is still rendering.
const clearedStreak = 2

// resolveGates loops gate detection and clearing until the page reports no
// gate twice in a row, or the budget is exhausted. Strategy-level failures
// inside the surface are absorbed there; what reaches this loop is either a
// missing credential (fatal configuration error) or exhaustion (gate
// unresolved).
func resolveGates(ctx context.Context, gs gateSurface, creds Credentials, budget time.Duration) error {
	deadline := time.Now().Add(budget)
	streak := 0

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}

		state, err := gs.DetectGate()
		if err != nil {
			return fmt.Errorf("%w: detecting gate: %v", ErrGateUnresolved, err)
		}

		if state == NoGate {
			streak++
			if streak >= clearedStreak {
				return nil
			}
			gs.AwaitTransition()
			continue
		}
		streak = 0

		// Action errors are absorbed: the next detection pass retries
		// through whatever budget remains. Missing credentials are fatal
		// configuration errors, never retried.
		switch state {
		case ConsentOverlay:
			_, _ = gs.DismissConsent()

		case EmailForm:
			if creds.Email == "" {
				return fmt.Errorf("%w: document requires an email", ErrConfiguration)
			}
			_ = gs.SubmitEmail(creds.Email)

		case PasscodeForm:
			if creds.Passcode == "" {
				return fmt.Errorf("%w: document requires access not provided (passcode)", ErrConfiguration)
			}
			_ = gs.SubmitPasscode(creds.Passcode)

		case EmailAndPasscodeForm:
			if creds.Email == "" {
				return fmt.Errorf("%w: document requires an email", ErrConfiguration)
			}
			if creds.Passcode == "" {
				return fmt.Errorf("%w: document requires access not provided (passcode)", ErrConfiguration)
			}
			if err := gs.SubmitEmail(creds.Email); err == nil {
				_ = gs.SubmitPasscode(creds.Passcode)
			}
		}

		// Gates appear in sequence (consent, then email, then passcode, then
		// consent again); re-derive state from scratch after every action.
		gs.AwaitTransition()
	}

	return fmt.Errorf("%w: budget exhausted", ErrGateUnresolved)
}

// Consent overlay accept-all controls, in priority order: id match, then
// attribute-substring match. Frame-src matching is handled separately.
var consentStrategies = []elementStrategy{
	bySelector(`#onetrust-accept-btn-handler`),
	bySelector(`button[id*="accept" i]`),
	bySelector(`button[class*="accept" i]`),
	bySelector(`[class*="cookie" i] button`),
	bySelector(`[class*="consent" i] button`),
}

// consentFrameHints match iframe src substrings that host consent UI.
var consentFrameHints = []string{"consent", "cookie", "privacy", "sp_message"}

// consentLabelPattern is the content-search fallback inside a consent frame.
const consentLabelPattern = `(?i)\b(accept( all)?|agree|allow all|got it)\b`

// consentInHintedFrame probes frames whose src marks them as consent UI for
// an accept-labeled control. Covers overlays hosted in a dedicated frame
// whose buttons carry none of the cascade's attributes.
func consentInHintedFrame(p *rod.Page) *frameHit {
	frame := findFrameBySrc(p, consentFrameHints)
	if frame == nil {
		return nil
	}
	return findAcrossFrames(frame, []elementStrategy{
		byText(`button, [role="button"]`, consentLabelPattern),
	}, 0)
}

// Email-capture inputs, in priority order: exact type match, name-attribute
// match, placeholder-text match.
var emailInputStrategies = []elementStrategy{
	bySelector(`input[type="email"]`),
	bySelector(`input[name*="email" i]`),
	bySelector(`input[placeholder*="email" i]`),
}

// Passcode inputs, in priority order. The scored enumeration of all inputs
// is a separate last resort (see findPasscodeInput).
var passcodeInputStrategies = []elementStrategy{
	bySelector(`input[type="password"]`),
	bySelector(`input[name*="passcode" i]`),
	bySelector(`input[id*="passcode" i]`),
	bySelector(`input[placeholder*="passcode" i]`),
	bySelector(`input[class*="passcode" i]`),
}

// DetectGate inspects the main document and every nested browsing context
// and derives the current GateState.
func (v *rodViewer) DetectGate() (GateState, error) {
	if v.page == nil {
		return NoGate, fmt.Errorf("viewer closed")
	}

	consent := findAcrossFrames(v.page, consentStrategies, maxFrameDepth)
	if consent == nil {
		consent = consentInHintedFrame(v.page)
	}
	email := findAcrossFrames(v.page, emailInputStrategies, maxFrameDepth)
	passcode := v.findPasscodeInput()

	// A consent overlay obstructs interaction with anything underneath it,
	// so it wins even when a credential form is also present.
	state := NoGate
	switch {
	case consent != nil:
		state = ConsentOverlay
	case email != nil && passcode != nil:
		state = EmailAndPasscodeForm
	case email != nil:
		state = EmailForm
	case passcode != nil:
		state = PasscodeForm
	}

	v.logger.Debug().Str("gate", state.String()).Msg("gate state derived")
	return state, nil
}

// findPasscodeInput runs the passcode cascade, then falls back to
// enumerating every input element and scoring each by attribute substrings.
func (v *rodViewer) findPasscodeInput() *frameHit {
	if hit := findAcrossFrames(v.page, passcodeInputStrategies, maxFrameDepth); hit != nil {
		return hit
	}
	return scoredPasscodeScan(v.page, maxFrameDepth)
}

// minPasscodeScore is the scoring threshold below which an input is not
// treated as a passcode field.
const minPasscodeScore = 2

func scoredPasscodeScan(p *rod.Page, depth int) *frameHit {
	inputs, err := p.Elements("input")
	if err == nil {
		var best *rod.Element
		bestScore := 0
		for _, el := range inputs {
			score := scorePasscodeInput(
				attrOrEmpty(el, "type"),
				attrOrEmpty(el, "name"),
				attrOrEmpty(el, "id"),
				attrOrEmpty(el, "placeholder"),
				attrOrEmpty(el, "class"),
			)
			if score > bestScore {
				if visible, err := el.Visible(); err == nil && visible {
					best, bestScore = el, score
				}
			}
		}
		if best != nil && bestScore >= minPasscodeScore {
			return &frameHit{el: best, page: p, strategy: "scored-input-scan"}
		}
	}

	if depth <= 0 {
		return nil
	}
	iframes, err := p.Elements("iframe")
	if err != nil {
		return nil
	}
	for _, iframe := range iframes {
		frame, err := iframe.Frame()
		if err != nil {
			continue
		}
		if hit := scoredPasscodeScan(frame, depth-1); hit != nil {
			return hit
		}
	}
	return nil
}

func attrOrEmpty(el *rod.Element, name string) string {
	val, err := el.Attribute(name)
	if err != nil || val == nil {
		return ""
	}
	return *val
}

// DismissConsent searches the main document and then every nested browsing
// context for an accept-all control and activates it. Absence after
// exhausting all strategies is already-cleared, not an error.
func (v *rodViewer) DismissConsent() (bool, error) {
	hit := findAcrossFrames(v.page, consentStrategies, maxFrameDepth)
	if hit == nil {
		// Overlay may live in a dedicated frame identified only by its src.
		hit = consentInHintedFrame(v.page)
	}
	if hit == nil {
		return false, nil
	}

	v.logger.Debug().Str("strategy", hit.strategy).Msg("dismissing consent overlay")
	if err := activate(hit); err != nil {
		return false, err
	}
	v.awaitOverlayGone(hit)
	return true, nil
}

// awaitOverlayGone polls briefly for the activated control to leave the
// rendered page. Best effort; the resolve loop re-derives state regardless.
func (v *rodViewer) awaitOverlayGone(hit *frameHit) {
	deadline := time.Now().Add(overlayDismissWait)
	for time.Now().Before(deadline) {
		visible, err := hit.el.Visible()
		if err != nil || !visible {
			return
		}
		time.Sleep(settlePollInterval)
	}
}

const overlayDismissWait = 2 * time.Second

// SubmitEmail locates the email input via the prioritized cascade, fills it,
// and submits through the three-tier submission strategy.
func (v *rodViewer) SubmitEmail(email string) error {
	hit := findAcrossFrames(v.page, emailInputStrategies, maxFrameDepth)
	if hit == nil {
		return fmt.Errorf("email input no longer present")
	}
	v.logger.Debug().Str("strategy", hit.strategy).Msg("filling email gate")

	if err := fillInput(hit.el, email); err != nil {
		return fmt.Errorf("filling email input: %w", err)
	}
	return submitForm(hit)
}

// SubmitPasscode locates the passcode input, fills it, and submits through
// the same three-tier submission strategy as SubmitEmail.
func (v *rodViewer) SubmitPasscode(code string) error {
	hit := v.findPasscodeInput()
	if hit == nil {
		return fmt.Errorf("passcode input no longer present")
	}
	v.logger.Debug().Str("strategy", hit.strategy).Msg("filling passcode gate")

	if err := fillInput(hit.el, code); err != nil {
		return fmt.Errorf("filling passcode input: %w", err)
	}
	return submitForm(hit)
}

// AwaitTransition waits for the page to settle after a gate action: either a
// navigation completes or the settle timeout elapses.
func (v *rodViewer) AwaitTransition() {
	p := v.page.Timeout(v.cfg.settleTimeout)
	if err := p.WaitLoad(); err != nil {
		v.logger.Debug().Err(err).Msg("wait load after gate action")
	}
	v.waitSettled(v.cfg.settleTimeout)
}
