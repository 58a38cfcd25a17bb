package playback

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// renderTextNode rasterizes a TextNode's current text into a fresh RGBA8
// Frame, using golang.org/x/image's basic bitmap font rather than hand
// rolling glyph rasterization (spec.md's DOMAIN STACK calls for
// golang.org/x/image wherever pixel work needs more than the loader's own
// decoders).
func renderTextNode(node *Node) *Frame {
	width, height := node.Dimensions()
	if width <= 0 {
		width = 512
	}
	if height <= 0 {
		height = 128
	}
	text, _ := node.attrs.GetString("text")
	fontSize, _ := node.attrs.GetF32("font_size")

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	face := basicfont.Face7x13
	scale := int(fontSize / 13)
	if scale < 1 {
		scale = 1
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(image.White),
		Face: face,
		Dot:  fixed.P(4, height/2),
	}
	if scale == 1 {
		drawer.DrawString(text)
	} else {
		scratch := image.NewRGBA(image.Rect(0, 0, width/scale+1, height/scale+1))
		sd := &font.Drawer{Dst: scratch, Src: image.NewUniform(image.White), Face: face, Dot: fixed.P(2, (height/scale)/2)}
		sd.DrawString(text)
		draw.NearestNeighbor.Scale(img, img.Bounds(), scratch, scratch.Bounds(), draw.Over, nil)
	}

	f := newHeader(width, height, FormatRGBA8)
	f.Publish(img.Pix, StatusLoaded)
	return f
}
