package scene

import (
	"whitted/rgb"
)

// Raster is a grid of colors addressed by column x and row y.  Row 0 is the
// top of the image.
type Raster interface {
	Width() int
	Height() int
	At(x, y int) rgb.T
	Set(x, y int, c rgb.T)
}

// Image is an in-memory Raster.
type Image struct {
	Cols, Rows int

	// Row-major.
	Pix []rgb.T
}

func NewImage(cols, rows int) *Image {
	return &Image{
		Cols: cols,
		Rows: rows,
		Pix:  make([]rgb.T, cols*rows),
	}
}

func (im *Image) Width() int {
	return im.Cols
}

func (im *Image) Height() int {
	return im.Rows
}

func (im *Image) At(x, y int) rgb.T {
	return im.Pix[y*im.Cols+x]
}

func (im *Image) Set(x, y int, c rgb.T) {
	im.Pix[y*im.Cols+x] = c
}

// Paste copies src into dst with its top-left corner at (colOff, rowOff).
func Paste(dst Raster, src Raster, rowOff, colOff int) {
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			dst.Set(x+colOff, y+rowOff, src.At(x, y))
		}
	}
}
