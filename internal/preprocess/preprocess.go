// Package preprocess normalizes source images into working copies:
// auto-rotated per EXIF orientation, downscaled when oversized, and
// re-encoded as quality-controlled JPEG. Source files are never modified.
package preprocess

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// DefaultQuality is used when the configured JPEG quality is out of range.
const DefaultQuality = 85

// Options control how a source image is normalized. Zero MaxWidth or
// MaxHeight disables the corresponding bound.
type Options struct {
	MaxWidth   int
	MaxHeight  int
	Quality    int
	AutoRotate bool
}

// Result reports the working copy and the size change of one compression.
type Result struct {
	Path        string
	BytesBefore int64
	BytesAfter  int64
}

// Compress writes a normalized JPEG copy of srcPath into scratchDir and
// returns its path. On failure the caller keeps using the original file.
func Compress(srcPath, scratchDir string, opts Options) (Result, error) {
	info, err := os.Stat(srcPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat image: %w", err)
	}

	img, err := imaging.Open(srcPath, imaging.AutoOrientation(opts.AutoRotate))
	if err != nil {
		return Result{}, fmt.Errorf("failed to decode image: %w", err)
	}

	img = downscale(img, opts.MaxWidth, opts.MaxHeight)

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	outPath := filepath.Join(scratchDir, uuid.NewString()+".jpg")
	out, err := os.Create(outPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create working copy: %w", err)
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: quality}); err != nil {
		out.Close()
		return Result{}, fmt.Errorf("failed to encode working copy: %w", err)
	}
	if err := out.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to close working copy: %w", err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat working copy: %w", err)
	}

	return Result{
		Path:        outPath,
		BytesBefore: info.Size(),
		BytesAfter:  outInfo.Size(),
	}, nil
}

// downscale resizes img to fit within maxW x maxH while keeping the aspect
// ratio. Images already within bounds are returned unchanged; upscaling
// never happens.
func downscale(img image.Image, maxW, maxH int) image.Image {
	if maxW <= 0 && maxH <= 0 {
		return img
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if (maxW <= 0 || width <= maxW) && (maxH <= 0 || height <= maxH) {
		return img
	}

	scale := 1.0
	if maxW > 0 && width > maxW {
		scale = float64(maxW) / float64(width)
	}
	if maxH > 0 && float64(height)*scale > float64(maxH) {
		scale = float64(maxH) / float64(height)
	}

	newW := int(float64(width) * scale)
	newH := int(float64(height) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	resized := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
	return resized
}
