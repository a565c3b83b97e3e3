package steps

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const DefaultImageSide = 1024

// NormalizeImage center-crops raw to a square and rescales it to side x side
// PNG.
func NormalizeImage(raw []byte, side int) ([]byte, error) {
	if side <= 0 {
		side = DefaultImageSide
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("decode image: empty bounds")
	}
	crop := w
	if h < w {
		crop = h
	}
	x0 := b.Min.X + (w-crop)/2
	y0 := b.Min.Y + (h-crop)/2

	cropped := image.NewRGBA(image.Rect(0, 0, crop, crop))
	draw.Draw(cropped, cropped.Bounds(), img, image.Point{X: x0, Y: y0}, draw.Src)

	var dst image.Image = cropped
	if crop != side {
		scaled := image.NewRGBA(image.Rect(0, 0, side, side))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), cropped, cropped.Bounds(), draw.Src, nil)
		dst = scaled
	}

	var out bytes.Buffer
	dc := gg.NewContextForImage(dst)
	if err := dc.EncodePNG(&out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return out.Bytes(), nil
}
