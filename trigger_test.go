package docsnap

import (
	"errors"
	"testing"
)

func TestParseTrigger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		text         string
		wantURL      string
		wantPasscode string
		wantErr      error
	}{
		{
			name:    "bare url",
			text:    "https://docs.example.com/view/abc123",
			wantURL: "https://docs.example.com/view/abc123",
		},
		{
			name:    "url inside prose",
			text:    "can you grab https://docs.example.com/view/abc123 for me?",
			wantURL: "https://docs.example.com/view/abc123",
		},
		{
			name:    "angle-bracket wrapped link with label",
			text:    "<https://docs.example.com/view/abc123|Q3 deck>",
			wantURL: "https://docs.example.com/view/abc123",
		},
		{
			name:    "angle-bracket wrapped link without label",
			text:    "<https://docs.example.com/view/abc123>",
			wantURL: "https://docs.example.com/view/abc123",
		},
		{
			name:         "inline passcode",
			text:         "https://docs.example.com/view/abc123 pw: hunter2",
			wantURL:      "https://docs.example.com/view/abc123",
			wantPasscode: "hunter2",
		},
		{
			name:         "inline passcode without space",
			text:         "https://docs.example.com/view/abc123 PW:hunter2",
			wantURL:      "https://docs.example.com/view/abc123",
			wantPasscode: "hunter2",
		},
		{
			name:    "trailing punctuation stripped",
			text:    "see https://docs.example.com/view/abc123.",
			wantURL: "https://docs.example.com/view/abc123",
		},
		{
			name:    "http url",
			text:    "http://docs.example.com/view/abc123",
			wantURL: "http://docs.example.com/view/abc123",
		},
		{
			name:    "no url",
			text:    "please capture the usual deck",
			wantErr: ErrNoURL,
		},
		{
			name:    "empty text",
			text:    "",
			wantErr: ErrNoURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			trig, err := ParseTrigger(tt.text)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseTrigger(%q) error = %v, want %v", tt.text, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTrigger(%q) = %v, want nil", tt.text, err)
			}
			if trig.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", trig.URL, tt.wantURL)
			}
			if trig.Passcode != tt.wantPasscode {
				t.Errorf("Passcode = %q, want %q", trig.Passcode, tt.wantPasscode)
			}
		})
	}
}

func TestTrigger_Request(t *testing.T) {
	t.Parallel()

	t.Run("explicit passcode wins over inline", func(t *testing.T) {
		t.Parallel()

		trig := Trigger{URL: "https://docs.example.com/view/abc", Passcode: "inline"}
		req := trig.Request(Credentials{Email: "reader@example.com", Passcode: "explicit"})

		if req.Credentials.Passcode != "explicit" {
			t.Errorf("Passcode = %q, want %q", req.Credentials.Passcode, "explicit")
		}
	})

	t.Run("inline passcode fills the gap", func(t *testing.T) {
		t.Parallel()

		trig := Trigger{URL: "https://docs.example.com/view/abc", Passcode: "inline"}
		req := trig.Request(Credentials{Email: "reader@example.com"})

		if req.Credentials.Passcode != "inline" {
			t.Errorf("Passcode = %q, want %q", req.Credentials.Passcode, "inline")
		}
		if req.URL != trig.URL {
			t.Errorf("URL = %q, want %q", req.URL, trig.URL)
		}
	})
}
