package docsnap

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// assembler builds the final document from ordered page captures.
type assembler interface {
	Assemble(captures []PageCapture) ([]byte, error)
}

// Compile-time interface check.
var _ assembler = (*fpdfAssembler)(nil)

// fpdfAssembler places each capture on its own PDF page sized exactly to the
// raster's pixel dimensions at 1px = 1pt, so nothing is scaled or cropped.
type fpdfAssembler struct{}

func (fpdfAssembler) Assemble(captures []PageCapture) ([]byte, error) {
	if len(captures) == 0 {
		return nil, fmt.Errorf("%w: empty capture list", ErrNoCaptures)
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt"})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	for _, c := range captures {
		cfg, format, err := image.DecodeConfig(bytes.NewReader(c.Image))
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrAssembly, c.Index, err)
		}

		w, h := float64(cfg.Width), float64(cfg.Height)
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

		name := fmt.Sprintf("page-%d", c.Index)
		opts := fpdf.ImageOptions{ImageType: format, ReadDpi: false}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(c.Image))
		pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")

		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrAssembly, c.Index, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
	}

	out := buf.Bytes()
	if err := validateDocument(out, len(captures)); err != nil {
		return nil, err
	}
	return out, nil
}

// validateDocument confirms the output is a well-formed document whose page
// count matches the number of captures.
func validateDocument(data []byte, want int) error {
	if !bytes.HasPrefix(data, pdfMagic) {
		return fmt.Errorf("%w: output missing document header", ErrAssembly)
	}
	got, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssembly, err)
	}
	if got != want {
		return fmt.Errorf("%w: assembled %d pages, expected %d", ErrAssembly, got, want)
	}
	return nil
}
