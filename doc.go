// Package docsnap converts gated, paginated web documents to PDF using
// headless Chrome.
//
// It drives a browser through whatever gating the target viewer presents
// (consent overlays, email capture, passcodes), walks the document page by
// page, captures each rendered page as a raster image, and assembles the
// captures into a single PDF with one page per capture, sized to the
// capture's pixel dimensions.
//
// # Quick Start
//
// Create a service, convert a document, and close when done:
//
//	svc := docsnap.New()
//	defer svc.Close()
//
//	pdf, err := svc.Convert(ctx, docsnap.Request{
//		URL:         "https://example.com/view/abc123",
//		Credentials: docsnap.Credentials{Email: "viewer@example.com"},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	os.WriteFile("document.pdf", pdf, 0o644)
//
// # Gates
//
// The target viewer's DOM structure is unknown in advance. Every gate
// interaction (dismissing a consent overlay, locating an email or passcode
// field, submitting a form) is attempted through an ordered list of
// strategies; a failed strategy moves on to the next one, and only
// exhausting all of them for a gate that is structurally present is fatal.
// A gate that simply is not there is never an error.
//
// # Concurrency
//
// A Service runs one conversion at a time; each conversion owns its own
// browser process, released on every exit path. For parallel conversions
// use ServicePool, which hands out independent Service instances.
package docsnap
