package ingest

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	"golang.org/x/image/draw"

	_ "image/png"

	_ "golang.org/x/image/webp"
)

// decodeImage decodes PNG, JPEG or WebP bytes.
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// encodeJPEG re-encodes a preprocessed image for the OCR backend.
func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// scaledBounds computes the downscaled dimensions for an oversized file.
// Scaling each side by the square root of the size ratio approximates the
// byte budget under lossy-image assumptions while preserving aspect ratio.
func scaledBounds(width, height int, fileSizeKB, maxSizeKB float64) (int, int) {
	ratio := math.Sqrt(maxSizeKB / fileSizeKB)
	w := int(float64(width) * ratio)
	h := int(float64(height) * ratio)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// resizeIfNeeded downscales the image when the source file exceeds the size
// budget, using a high-quality resampling filter.
func resizeIfNeeded(img image.Image, fileSizeKB, maxSizeKB float64) image.Image {
	if fileSizeKB <= maxSizeKB {
		return img
	}

	b := img.Bounds()
	w, h := scaledBounds(b.Dx(), b.Dy(), fileSizeKB, maxSizeKB)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// rotate turns the image counterclockwise by 90, 180 or 270 degrees to bring
// a sideways or upside-down scan upright. Any other angle returns the image
// unchanged.
func rotate(img image.Image, angle int) image.Image {
	b := img.Bounds()

	switch angle {
	case 90:
		dst := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				dst.Set(y-b.Min.Y, b.Max.X-1-x, img.At(x, y))
			}
		}
		return dst

	case 180:
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				dst.Set(b.Max.X-1-x, b.Max.Y-1-y, img.At(x, y))
			}
		}
		return dst

	case 270:
		dst := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				dst.Set(b.Max.Y-1-y, x-b.Min.X, img.At(x, y))
			}
		}
		return dst
	}

	return img
}
