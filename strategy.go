package docsnap

import (
	"regexp"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// elementStrategy is one way of locating an element within a single browsing
// context. Strategies are tried in order; a strategy that errors or finds
// nothing is absorbed and the cascade moves on. Only a visible element
// counts as a hit.
type elementStrategy struct {
	name string
	find func(p *rod.Page) (*rod.Element, error)
}

// bySelector matches the first element for a CSS selector.
func bySelector(sel string) elementStrategy {
	return elementStrategy{
		name: "css:" + sel,
		find: func(p *rod.Page) (*rod.Element, error) {
			ok, el, err := p.Has(sel)
			if err != nil || !ok {
				return nil, err
			}
			return el, nil
		},
	}
}

// byText matches the first element for a CSS selector whose rendered text
// matches a JS regex. Content search, not attribute search.
func byText(sel, jsRegex string) elementStrategy {
	return elementStrategy{
		name: "text:" + jsRegex,
		find: func(p *rod.Page) (*rod.Element, error) {
			ok, el, err := p.HasR(sel, jsRegex)
			if err != nil || !ok {
				return nil, err
			}
			return el, nil
		},
	}
}

// maxFrameDepth bounds recursion into nested browsing contexts. Gate UI has
// been observed one and occasionally two frames deep; three is headroom.
const maxFrameDepth = 3

// frameHit is a strategy match plus the browsing context it was found in,
// so follow-up interaction (typing, submitting) happens in the right frame.
type frameHit struct {
	el       *rod.Element
	page     *rod.Page
	strategy string
}

// findAcrossFrames runs the cascade on the main document first, then on
// every nested browsing context, depth-first, returning the first visible
// hit. A nil return means no strategy matched anywhere.
func findAcrossFrames(p *rod.Page, strategies []elementStrategy, depth int) *frameHit {
	for _, st := range strategies {
		el, err := st.find(p)
		if err != nil || el == nil {
			continue
		}
		if visible, err := el.Visible(); err != nil || !visible {
			continue
		}
		return &frameHit{el: el, page: p, strategy: st.name}
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
		if hit := findAcrossFrames(frame, strategies, depth-1); hit != nil {
			return hit
		}
	}
	return nil
}

// findFrameBySrc locates an iframe whose src contains any of the given
// substrings and returns its browsing context.
func findFrameBySrc(p *rod.Page, substrings []string) *rod.Page {
	iframes, err := p.Elements("iframe")
	if err != nil {
		return nil
	}
	for _, iframe := range iframes {
		src, err := iframe.Attribute("src")
		if err != nil || src == nil {
			continue
		}
		lower := strings.ToLower(*src)
		for _, sub := range substrings {
			if strings.Contains(lower, sub) {
				frame, err := iframe.Frame()
				if err != nil {
					continue
				}
				return frame
			}
		}
	}
	return nil
}

// activate clicks an element; if the direct interaction click fails (overlay
// in the way, element detached mid-click), it falls back to dispatching a
// synthetic click event programmatically.
func activate(hit *frameHit) error {
	if err := hit.el.Click(proto.InputMouseButtonLeft, 1); err == nil {
		return nil
	}
	_, err := hit.el.Eval(`() => {
		this.dispatchEvent(new MouseEvent('click', {bubbles: true, cancelable: true, view: window}));
	}`)
	return err
}

// Submission button labels matched by content search (tier one of submit).
const submitLabelPattern = `(?i)^\s*(continue|submit|view\s+document|view|access|unlock|next|go)\b`

// Generic submit controls (tier two of submit).
var submitSelectorStrategies = []elementStrategy{
	bySelector(`button[type="submit"]`),
	bySelector(`input[type="submit"]`),
	bySelector(`form button`),
	bySelector(`[role="button"]`),
}

// submitForm attempts submission in the browsing context where the input was
// found, via three tiers: visible button text, generic submit selectors, and
// the default-submit key with the field focused. The first tier to take
// effect wins; tiers that fail are absorbed.
func submitForm(hit *frameHit) error {
	if byLabel := findAcrossFrames(hit.page, []elementStrategy{
		byText(`button, input[type="submit"], [role="button"], a`, submitLabelPattern),
	}, 0); byLabel != nil {
		if err := activate(byLabel); err == nil {
			return nil
		}
	}

	if generic := findAcrossFrames(hit.page, submitSelectorStrategies, 0); generic != nil {
		if err := activate(generic); err == nil {
			return nil
		}
	}

	if err := hit.el.Focus(); err != nil {
		return err
	}
	return hit.page.Keyboard.Press(input.Enter)
}

// fillInput replaces the element's current value with text.
func fillInput(el *rod.Element, text string) error {
	// SelectAllText is best effort; Input appends, so clearing first keeps
	// re-entered credentials from concatenating.
	_ = el.SelectAllText()
	return el.Input(text)
}

// passcodeAttrHints score an input element as a passcode field when typed
// detection fails. Matched against type, name, id, placeholder, and class.
var passcodeAttrHints = []struct {
	substr string
	weight int
}{
	{"password", 4},
	{"passcode", 4},
	{"pass", 2},
	{"code", 1},
	{"pin", 1},
	{"secret", 1},
}

// scorePasscodeInput rates how strongly an input element's attributes
// suggest a passcode field. Zero means no signal.
func scorePasscodeInput(typ, name, id, placeholder, class string) int {
	if strings.EqualFold(typ, "password") {
		return 10
	}
	joined := strings.ToLower(name + " " + id + " " + placeholder + " " + class)
	score := 0
	for _, hint := range passcodeAttrHints {
		if strings.Contains(joined, hint.substr) {
			score += hint.weight
		}
	}
	return score
}

// pageLabelPattern recognizes the viewer's own "N / M" (or "N of M") page
// indicator.
var pageLabelPattern = regexp.MustCompile(`(\d+)\s*(?:/|of)\s*(\d+)`)

// normalizePageLabel reduces an on-page page indicator to a canonical
// "N/M" form. Returns false when the text carries no page indicator.
func normalizePageLabel(text string) (string, bool) {
	m := pageLabelPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1] + "/" + m[2], true
}
