package main

import (
	"testing"

	docsnap "github.com/alunbr/go-docsnap"
)

func TestParseFlags(t *testing.T) {
	t.Parallel()

	t.Run("positional args survive flag parsing", func(t *testing.T) {
		t.Parallel()

		flags, args, err := parseFlags([]string{
			"docsnap", "-o", "out.pdf", "--passcode", "hunter2",
			"https://docs.example.com/view/abc",
		})
		if err != nil {
			t.Fatalf("parseFlags() = %v", err)
		}
		if flags.output != "out.pdf" {
			t.Errorf("output = %q, want %q", flags.output, "out.pdf")
		}
		if flags.passcode != "hunter2" {
			t.Errorf("passcode = %q", flags.passcode)
		}
		if len(args) != 1 || args[0] != "https://docs.example.com/view/abc" {
			t.Errorf("args = %v", args)
		}
	})

	t.Run("shorthand flags", func(t *testing.T) {
		t.Parallel()

		flags, _, err := parseFlags([]string{
			"docsnap", "-e", "reader@example.com", "-w", "3", "-q",
			"https://docs.example.com/view/abc",
		})
		if err != nil {
			t.Fatalf("parseFlags() = %v", err)
		}
		if flags.email != "reader@example.com" {
			t.Errorf("email = %q", flags.email)
		}
		if flags.workers != 3 {
			t.Errorf("workers = %d, want 3", flags.workers)
		}
		if !flags.quiet {
			t.Error("quiet not set")
		}
	})

	t.Run("unknown flag is an error", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseFlags([]string{"docsnap", "--bogus"})
		if err == nil {
			t.Error("parseFlags() = nil, want error")
		}
	})
}

func TestParseViewport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    docsnap.Viewport
		wantErr bool
	}{
		{name: "standard", input: "1280x800", want: docsnap.Viewport{Width: 1280, Height: 800}},
		{name: "uppercase separator", input: "1920X1080", want: docsnap.Viewport{Width: 1920, Height: 1080}},
		{name: "spaces tolerated", input: "1280 x 800", want: docsnap.Viewport{Width: 1280, Height: 800}},
		{name: "missing separator", input: "1280", wantErr: true},
		{name: "non-numeric width", input: "wide x 800", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseViewport(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseViewport(%q) = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseViewport(%q) = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseViewport(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
