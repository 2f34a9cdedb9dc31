package docsnap

import (
	"regexp"
	"strings"
)

// Trigger is the result of parsing free-form trigger text: the document URL
// plus any inline credentials found alongside it.
type Trigger struct {
	URL      string
	Passcode string
}

var (
	urlPattern = regexp.MustCompile(`https?://[^\s<>|]+`)

	// passcodePattern matches an inline "pw: <value>" annotation next to the
	// shared link. Case-insensitive, optional whitespace after the colon.
	passcodePattern = regexp.MustCompile(`(?i)\bpw:\s*(\S+)`)
)

// ParseTrigger extracts the document URL and an optional inline passcode
// from free-form text (a chat message, a pasted note). Links wrapped in
// angle brackets with an optional |label suffix are unwrapped before
// matching. Returns ErrNoURL when the text carries no URL.
func ParseTrigger(text string) (Trigger, error) {
	m := urlPattern.FindString(text)
	if m == "" {
		return Trigger{}, ErrNoURL
	}
	url := strings.TrimRight(m, ".,;:!?)")

	var passcode string
	if pm := passcodePattern.FindStringSubmatch(text); pm != nil {
		passcode = pm[1]
	}

	return Trigger{URL: url, Passcode: passcode}, nil
}

// Request converts the trigger into a conversion request, preferring
// explicitly supplied credentials over inline ones.
func (t Trigger) Request(creds Credentials) Request {
	if creds.Passcode == "" {
		creds.Passcode = t.Passcode
	}
	return Request{URL: t.URL, Credentials: creds}
}
