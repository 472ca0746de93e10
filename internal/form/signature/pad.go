// Package signature captures freehand ink strokes and encodes them as a
// self-contained PNG data URL.
package signature

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
)

// Point is a pad-local coordinate in CSS pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one continuous pointer movement.
type Stroke []Point

// Pad collects strokes and renders them at a device-pixel-ratio-scaled
// backing resolution.
type Pad struct {
	width   int
	height  int
	ratio   float64
	strokes []Stroke
	current Stroke
	drawing bool
}

// NewPad creates a pad with the given CSS-pixel size and device pixel
// ratio. A ratio below 1 is treated as 1.
func NewPad(width, height int, ratio float64) *Pad {
	if ratio < 1 {
		ratio = 1
	}
	return &Pad{width: width, height: height, ratio: ratio}
}

// Begin starts a stroke at the given point.
func (p *Pad) Begin(pt Point) {
	p.drawing = true
	p.current = Stroke{pt}
}

// Move extends the current stroke. Ignored when no stroke is active.
func (p *Pad) Move(pt Point) {
	if !p.drawing {
		return
	}
	p.current = append(p.current, pt)
}

// End finishes the current stroke.
func (p *Pad) End() {
	if !p.drawing {
		return
	}
	p.drawing = false
	if len(p.current) > 0 {
		p.strokes = append(p.strokes, p.current)
		p.current = nil
	}
}

// Clear resets the surface and marks the signature absent.
func (p *Pad) Clear() {
	p.strokes = nil
	p.current = nil
	p.drawing = false
}

// IsEmpty reports whether no ink has been committed.
func (p *Pad) IsEmpty() bool {
	return len(p.strokes) == 0
}

// Save encodes the drawing and invokes onSave with the PNG data URL. It is
// a no-op when the pad is empty.
func (p *Pad) Save(onSave func(dataURL string)) error {
	if p.IsEmpty() {
		return nil
	}
	dataURL, err := p.Encode()
	if err != nil {
		return err
	}
	onSave(dataURL)
	return nil
}

// Resize rescales the backing resolution and re-renders existing strokes.
// Stroke coordinates are CSS pixels, so committed ink survives the resize.
func (p *Pad) Resize(width, height int, ratio float64) {
	if ratio < 1 {
		ratio = 1
	}
	p.width = width
	p.height = height
	p.ratio = ratio
}

// Encode renders the strokes into a PNG and returns it as a data URL.
func (p *Pad) Encode() (string, error) {
	img := p.render()

	var sb strings.Builder
	sb.WriteString("data:image/png;base64,")
	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	if err := png.Encode(enc, img); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (p *Pad) render() *image.RGBA {
	w := int(float64(p.width) * p.ratio)
	h := int(float64(p.height) * p.ratio)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff // white background
	}

	ink := color.RGBA{A: 0xff}
	for _, stroke := range p.strokes {
		if len(stroke) == 1 {
			setPixel(img, stroke[0].X*p.ratio, stroke[0].Y*p.ratio, ink)
			continue
		}
		for i := 1; i < len(stroke); i++ {
			drawLine(img,
				stroke[i-1].X*p.ratio, stroke[i-1].Y*p.ratio,
				stroke[i].X*p.ratio, stroke[i].Y*p.ratio,
				ink)
		}
	}
	return img
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 float64, c color.RGBA) {
	steps := int(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		setPixel(img, x0+(x1-x0)*t, y0+(y1-y0)*t, c)
	}
}

func setPixel(img *image.RGBA, x, y float64, c color.RGBA) {
	px, py := int(math.Round(x)), int(math.Round(y))
	if image.Pt(px, py).In(img.Bounds()) {
		img.SetRGBA(px, py, c)
	}
}
