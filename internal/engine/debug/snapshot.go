// Package debug provides developer utilities for the viewer.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// SnapshotWriter saves stage captures as timestamped PNG files.
type SnapshotWriter struct {
	outputDir string
	prefix    string
}

// NewSnapshotWriter creates a writer targeting outputDir. The prefix
// starts every generated filename.
func NewSnapshotWriter(outputDir, prefix string) *SnapshotWriter {
	return &SnapshotWriter{outputDir: outputDir, prefix: prefix}
}

// WritePixels saves one RGBA frame read back from the GPU. Rows are
// flipped during the copy since the framebuffer origin is bottom-left.
func (w *SnapshotWriter) WritePixels(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	if w.outputDir != "" {
		if err := os.MkdirAll(w.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		srcY := height - 1 - y
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[srcY*rowSize:srcY*rowSize+rowSize])
	}

	filename := w.nextFilename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}

func (w *SnapshotWriter) nextFilename() string {
	name := fmt.Sprintf("%s_%s.png", w.prefix, time.Now().Format("2006-01-02_15-04-05"))
	if w.outputDir == "" {
		return name
	}
	return filepath.Join(w.outputDir, name)
}
