package docsnap

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeGateSurface replays a scripted sequence of gate states and records the
// actions the resolve loop takes. Once the script is exhausted it reports
// NoGate forever.
type fakeGateSurface struct {
	states    []GateState
	detectErr error

	pos               int
	consentCalls      int
	transitions       int
	submittedEmail    string
	submittedPasscode string
	emailCalls        int
	passcodeCalls     int
	emailErr          error
	passcodeErr       error
}

func (f *fakeGateSurface) DetectGate() (GateState, error) {
	if f.detectErr != nil {
		return NoGate, f.detectErr
	}
	if f.pos < len(f.states) {
		s := f.states[f.pos]
		f.pos++
		return s, nil
	}
	return NoGate, nil
}

func (f *fakeGateSurface) DismissConsent() (bool, error) {
	f.consentCalls++
	return true, nil
}

func (f *fakeGateSurface) SubmitEmail(email string) error {
	f.emailCalls++
	f.submittedEmail = email
	return f.emailErr
}

func (f *fakeGateSurface) SubmitPasscode(code string) error {
	f.passcodeCalls++
	f.submittedPasscode = code
	return f.passcodeErr
}

func (f *fakeGateSurface) AwaitTransition() {
	f.transitions++
}

// stuckGateSurface always reports the same gate, simulating a gate whose
// clearing actions never take effect.
type stuckGateSurface struct {
	state GateState
}

func (s *stuckGateSurface) DetectGate() (GateState, error) { return s.state, nil }
func (s *stuckGateSurface) DismissConsent() (bool, error)  { return false, nil }
func (s *stuckGateSurface) SubmitEmail(string) error       { return nil }
func (s *stuckGateSurface) SubmitPasscode(string) error    { return nil }
func (s *stuckGateSurface) AwaitTransition()               { time.Sleep(time.Millisecond) }

const testGateBudget = 2 * time.Second

func TestResolveGates_AlreadyClear(t *testing.T) {
	t.Parallel()

	fake := &fakeGateSurface{states: []GateState{NoGate, NoGate}}

	if err := resolveGates(context.Background(), fake, Credentials{}, testGateBudget); err != nil {
		t.Fatalf("resolveGates() = %v, want nil", err)
	}
	if fake.consentCalls != 0 || fake.emailCalls != 0 || fake.passcodeCalls != 0 {
		t.Errorf("actions taken on ungated document: consent=%d email=%d passcode=%d",
			fake.consentCalls, fake.emailCalls, fake.passcodeCalls)
	}
}

func TestResolveGates_SingleClearObservationIsNotEnough(t *testing.T) {
	t.Parallel()

	// One NoGate mid-transition, then a consent overlay renders.
	fake := &fakeGateSurface{states: []GateState{NoGate, ConsentOverlay, NoGate, NoGate}}

	if err := resolveGates(context.Background(), fake, Credentials{}, testGateBudget); err != nil {
		t.Fatalf("resolveGates() = %v, want nil", err)
	}
	if fake.consentCalls != 1 {
		t.Errorf("consentCalls = %d, want 1", fake.consentCalls)
	}
}

func TestResolveGates_EmailGate(t *testing.T) {
	t.Parallel()

	fake := &fakeGateSurface{states: []GateState{EmailForm, NoGate, NoGate}}
	creds := Credentials{Email: "reader@example.com"}

	if err := resolveGates(context.Background(), fake, creds, testGateBudget); err != nil {
		t.Fatalf("resolveGates() = %v, want nil", err)
	}
	if fake.submittedEmail != "reader@example.com" {
		t.Errorf("submittedEmail = %q, want %q", fake.submittedEmail, "reader@example.com")
	}
	if fake.transitions == 0 {
		t.Error("expected AwaitTransition after submission")
	}
}

func TestResolveGates_GateSequence(t *testing.T) {
	t.Parallel()

	// Consent, then email, then consent reappearing after the form
	// submission navigated.
	fake := &fakeGateSurface{states: []GateState{
		ConsentOverlay, EmailForm, ConsentOverlay, NoGate, NoGate,
	}}
	creds := Credentials{Email: "reader@example.com"}

	if err := resolveGates(context.Background(), fake, creds, testGateBudget); err != nil {
		t.Fatalf("resolveGates() = %v, want nil", err)
	}
	if fake.consentCalls != 2 {
		t.Errorf("consentCalls = %d, want 2", fake.consentCalls)
	}
	if fake.emailCalls != 1 {
		t.Errorf("emailCalls = %d, want 1", fake.emailCalls)
	}
}

func TestResolveGates_CombinedForm(t *testing.T) {
	t.Parallel()

	fake := &fakeGateSurface{states: []GateState{EmailAndPasscodeForm, NoGate, NoGate}}
	creds := Credentials{Email: "reader@example.com", Passcode: "open-sesame"}

	if err := resolveGates(context.Background(), fake, creds, testGateBudget); err != nil {
		t.Fatalf("resolveGates() = %v, want nil", err)
	}
	if fake.submittedEmail != "reader@example.com" {
		t.Errorf("submittedEmail = %q", fake.submittedEmail)
	}
	if fake.submittedPasscode != "open-sesame" {
		t.Errorf("submittedPasscode = %q", fake.submittedPasscode)
	}
}

func TestResolveGates_MissingCredentials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		state GateState
		creds Credentials
	}{
		{
			name:  "email gate without email",
			state: EmailForm,
			creds: Credentials{},
		},
		{
			name:  "passcode gate without passcode",
			state: PasscodeForm,
			creds: Credentials{Email: "reader@example.com"},
		},
		{
			name:  "combined gate without passcode",
			state: EmailAndPasscodeForm,
			creds: Credentials{Email: "reader@example.com"},
		},
		{
			name:  "combined gate without email",
			state: EmailAndPasscodeForm,
			creds: Credentials{Passcode: "open-sesame"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeGateSurface{states: []GateState{tt.state}}

			err := resolveGates(context.Background(), fake, tt.creds, testGateBudget)
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("resolveGates() = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestResolveGates_ActionErrorsAreRetried(t *testing.T) {
	t.Parallel()

	// Submissions fail, but the gate clears anyway (the click landed even
	// though the element detached mid-interaction). Action errors must not
	// abort the loop.
	fake := &fakeGateSurface{
		states:   []GateState{EmailForm, EmailForm, NoGate, NoGate},
		emailErr: fmt.Errorf("input detached"),
	}
	creds := Credentials{Email: "reader@example.com"}

	err := resolveGates(context.Background(), fake, creds, testGateBudget)
	if err != nil {
		t.Fatalf("resolveGates() = %v, want nil", err)
	}
	if fake.emailCalls != 2 {
		t.Errorf("emailCalls = %d, want 2", fake.emailCalls)
	}
}

func TestResolveGates_BudgetExhausted(t *testing.T) {
	t.Parallel()

	stuck := &stuckGateSurface{state: PasscodeForm}
	creds := Credentials{Passcode: "open-sesame"}

	err := resolveGates(context.Background(), stuck, creds, 30*time.Millisecond)
	if !errors.Is(err, ErrGateUnresolved) {
		t.Errorf("resolveGates() = %v, want ErrGateUnresolved", err)
	}
}

func TestResolveGates_DetectError(t *testing.T) {
	t.Parallel()

	fake := &fakeGateSurface{detectErr: fmt.Errorf("target closed")}

	err := resolveGates(context.Background(), fake, Credentials{}, testGateBudget)
	if !errors.Is(err, ErrGateUnresolved) {
		t.Errorf("resolveGates() = %v, want ErrGateUnresolved", err)
	}
}

func TestResolveGates_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeGateSurface{states: []GateState{NoGate, NoGate}}

	err := resolveGates(ctx, fake, Credentials{}, testGateBudget)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("resolveGates() = %v, want context.Canceled", err)
	}
}
