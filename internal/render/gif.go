package render

import (
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"

	xdraw "golang.org/x/image/draw"
)

// gifCollector keeps a reduced copy of every n-th frame, in frame order.
// Workers fill distinct slots so no locking is needed.
type gifCollector struct {
	every  int
	frames []*image.Paletted
}

func newGIFCollector(frames, every int) *gifCollector {
	if every < 1 {
		every = 1
	}
	return &gifCollector{every: every, frames: make([]*image.Paletted, (frames+every-1)/every)}
}

// add stores the frame at position pos of the frame sequence if it is
// selected. A nil collector ignores everything.
func (g *gifCollector) add(pos int, img image.Image) {
	if g == nil || img == nil || pos%g.every != 0 {
		return
	}
	g.frames[pos/g.every] = shrink(img)
}

func shrink(img image.Image) *image.Paletted {
	b := img.Bounds()
	rect := image.Rect(0, 0, max(1, b.Dx()/2), max(1, b.Dy()/2))

	scaled := image.NewRGBA(rect)
	xdraw.ApproxBiLinear.Scale(scaled, rect, img, b, xdraw.Src, nil)

	out := image.NewPaletted(rect, palette.Plan9)
	draw.FloydSteinberg.Draw(out, rect, scaled, image.Point{})
	return out
}

func (g *gifCollector) write(path string) (err error) {
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range g.frames {
		if frame == nil {
			continue
		}
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 4)
	}
	if len(anim.Image) == 0 {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return gif.EncodeAll(f, &anim)
}
