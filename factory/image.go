// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package factory

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/bmp"
)

// ErrUnsupportedImageFormat is returned by SaveImage for an unknown
// file extension.
var ErrUnsupportedImageFormat = errors.New("factory: unsupported image format")

// pixelsToRGBA strips row padding from a readback and swizzles BGRA
// formats to RGBA.
func pixelsToRGBA(data []byte, width, height, pitch uint32, format gputypes.TextureFormat) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	bgra := format == gputypes.TextureFormatBGRA8Unorm || format == gputypes.TextureFormatBGRA8UnormSrgb
	rowBytes := int(width) * 4

	for y := 0; y < int(height); y++ {
		src := data[y*int(pitch) : y*int(pitch)+rowBytes]
		dst := img.Pix[y*img.Stride : y*img.Stride+rowBytes]
		if !bgra {
			copy(dst, src)
			continue
		}
		for x := 0; x < rowBytes; x += 4 {
			dst[x+0] = src[x+2]
			dst[x+1] = src[x+1]
			dst[x+2] = src[x+0]
			dst[x+3] = src[x+3]
		}
	}
	return img
}

// SaveImage writes img to path. The encoder is chosen by extension:
// .png or .bmp.
func SaveImage(path string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".png" && ext != ".bmp" {
		return fmt.Errorf("%w: %q", ErrUnsupportedImageFormat, ext)
	}

	file, err := os.Create(path) //nolint:gosec // path comes from the -capture flag
	if err != nil {
		return fmt.Errorf("factory: create %s: %w", path, err)
	}

	if ext == ".bmp" {
		err = bmp.Encode(file, img)
	} else {
		err = png.Encode(file, img)
	}
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("factory: encode %s: %w", path, err)
	}
	return file.Close()
}
