package docsnap

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// jpegRaster encodes a solid-color JPEG of the given pixel dimensions.
func jpegRaster(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 220, G: 220, B: 220, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		t.Fatalf("encoding test JPEG: %v", err)
	}
	return buf.Bytes()
}

// pngRaster encodes a solid-color PNG of the given pixel dimensions.
func pngRaster(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestAssemble_SinglePage(t *testing.T) {
	t.Parallel()

	captures := []PageCapture{
		{Index: 0, Label: "1/1", Image: jpegRaster(t, 640, 400)},
	}

	out, err := fpdfAssembler{}.Assemble(captures)
	if err != nil {
		t.Fatalf("Assemble() = %v, want nil", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Error("output does not start with PDF header")
	}

	pages, err := api.PageCount(bytes.NewReader(out), nil)
	if err != nil {
		t.Fatalf("PageCount() = %v", err)
	}
	if pages != 1 {
		t.Errorf("page count = %d, want 1", pages)
	}
}

func TestAssemble_OnePDFPagePerCapture(t *testing.T) {
	t.Parallel()

	captures := []PageCapture{
		{Index: 0, Image: jpegRaster(t, 640, 400)},
		{Index: 1, Image: jpegRaster(t, 640, 400)},
		{Index: 2, Image: jpegRaster(t, 640, 400)},
	}

	out, err := fpdfAssembler{}.Assemble(captures)
	if err != nil {
		t.Fatalf("Assemble() = %v, want nil", err)
	}

	pages, err := api.PageCount(bytes.NewReader(out), nil)
	if err != nil {
		t.Fatalf("PageCount() = %v", err)
	}
	if pages != len(captures) {
		t.Errorf("page count = %d, want %d", pages, len(captures))
	}
}

func TestAssemble_MixedFormatsAndSizes(t *testing.T) {
	t.Parallel()

	// Page dimensions follow each raster, so differently sized captures
	// coexist in one document.
	captures := []PageCapture{
		{Index: 0, Image: jpegRaster(t, 640, 400)},
		{Index: 1, Image: pngRaster(t, 320, 900)},
	}

	out, err := fpdfAssembler{}.Assemble(captures)
	if err != nil {
		t.Fatalf("Assemble() = %v, want nil", err)
	}

	pages, err := api.PageCount(bytes.NewReader(out), nil)
	if err != nil {
		t.Fatalf("PageCount() = %v", err)
	}
	if pages != 2 {
		t.Errorf("page count = %d, want 2", pages)
	}
}

func TestAssemble_EmptyCaptureList(t *testing.T) {
	t.Parallel()

	_, err := fpdfAssembler{}.Assemble(nil)
	if !errors.Is(err, ErrNoCaptures) {
		t.Errorf("Assemble(nil) = %v, want ErrNoCaptures", err)
	}
}

func TestAssemble_UndecodableImage(t *testing.T) {
	t.Parallel()

	captures := []PageCapture{
		{Index: 0, Image: []byte("not an image")},
	}

	_, err := fpdfAssembler{}.Assemble(captures)
	if !errors.Is(err, ErrAssembly) {
		t.Errorf("Assemble() = %v, want ErrAssembly", err)
	}
}
