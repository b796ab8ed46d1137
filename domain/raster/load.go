package raster

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"

	// Extra decoders beyond what imaging registers.
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when a path does not resolve to a decodable image.
var ErrDecode = errors.New("image decode failed")

// Info describes a loaded photo.
type Info struct {
	Path     string
	Size     string // human readable file size
	Original image.Rectangle
	Display  image.Rectangle
}

// Load reads the photo at path, applies EXIF orientation and downscales it
// by factor. The returned image is always *image.NRGBA.
func Load(path string, factor float64) (*image.NRGBA, Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, Info{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if st.IsDir() {
		return nil, Info{}, fmt.Errorf("%w: %s is a directory", ErrDecode, path)
	}
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, Info{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	dst := Downscale(src, factor)
	return dst, Info{
		Path:     path,
		Size:     humanize.Bytes(uint64(st.Size())),
		Original: src.Bounds(),
		Display:  dst.Bounds(),
	}, nil
}

// Downscale shrinks src so that each side is floor(side*factor), never below
// one pixel. A factor outside (0,1) returns an unscaled copy.
func Downscale(src image.Image, factor float64) *image.NRGBA {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	if factor <= 0 || factor >= 1 {
		return imaging.Clone(src)
	}
	w := int(float64(b.Dx()) * factor)
	h := int(float64(b.Dy()) * factor)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return imaging.Resize(src, w, h, imaging.Linear)
}
