package signature

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drawStroke(p *Pad) {
	p.Begin(Point{X: 10, Y: 10})
	p.Move(Point{X: 40, Y: 25})
	p.Move(Point{X: 80, Y: 12})
	p.End()
}

func decodeDataURL(t *testing.T, dataURL string) []byte {
	t.Helper()
	const prefix = "data:image/png;base64,"
	require.True(t, strings.HasPrefix(dataURL, prefix))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, prefix))
	require.NoError(t, err)
	return raw
}

func TestPad_EmptySaveDoesNotCallBack(t *testing.T) {
	p := NewPad(300, 150, 1)

	called := false
	err := p.Save(func(string) { called = true })

	assert.NoError(t, err)
	assert.False(t, called)
	assert.True(t, p.IsEmpty())
}

func TestPad_SaveAfterStroke(t *testing.T) {
	p := NewPad(300, 150, 2)
	drawStroke(p)

	var got string
	err := p.Save(func(dataURL string) { got = dataURL })

	require.NoError(t, err)
	assert.False(t, p.IsEmpty())
	assert.NotEmpty(t, got)

	raw := decodeDataURL(t, got)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	// Backing resolution is scaled by the device pixel ratio.
	assert.Equal(t, 600, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestPad_ClearMarksAbsent(t *testing.T) {
	p := NewPad(300, 150, 1)
	drawStroke(p)
	require.False(t, p.IsEmpty())

	p.Clear()

	assert.True(t, p.IsEmpty())
	called := false
	_ = p.Save(func(string) { called = true })
	assert.False(t, called)
}

func TestPad_ResizePreservesStrokes(t *testing.T) {
	p := NewPad(300, 150, 1)
	drawStroke(p)

	p.Resize(600, 300, 2)

	assert.False(t, p.IsEmpty())

	var got string
	require.NoError(t, p.Save(func(dataURL string) { got = dataURL }))

	raw := decodeDataURL(t, got)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 1200, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestPad_MoveWithoutBeginIsIgnored(t *testing.T) {
	p := NewPad(300, 150, 1)
	p.Move(Point{X: 5, Y: 5})
	p.End()

	assert.True(t, p.IsEmpty())
}

func TestPad_SinglePointStroke(t *testing.T) {
	p := NewPad(300, 150, 1)
	p.Begin(Point{X: 20, Y: 20})
	p.End()

	assert.False(t, p.IsEmpty())

	dataURL, err := p.Encode()
	require.NoError(t, err)
	raw := decodeDataURL(t, dataURL)
	_, err = png.Decode(bytes.NewReader(raw))
	assert.NoError(t, err)
}
