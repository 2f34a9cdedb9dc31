package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docsnap [flags] <url> [url...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Capture gated, paginated web documents as PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  url    Document viewer URL. Free-form trigger text is accepted:")
	fmt.Fprintln(w, "         <https://...|label> wrapping is unwrapped and an inline")
	fmt.Fprintln(w, "         \"pw: <value>\" annotation supplies the passcode.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (single URL) or directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Access:")
	fmt.Fprintln(w, "  -e, --email <s>           Email for email-gated documents")
	fmt.Fprintln(w, "  -p, --passcode <s>        Passcode for passcode-gated documents")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Capture:")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-document timeout (e.g., 90s, 3m)")
	fmt.Fprintln(w, "      --viewport <WxH>      Capture viewport (default 1280x800)")
	fmt.Fprintln(w, "      --user-agent <s>      Browser user agent override")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Other:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed progress")
	fmt.Fprintln(w, "      --version             Show version information")
}
