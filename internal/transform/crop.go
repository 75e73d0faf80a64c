// Package transform implements per-frame augmentations. All randomness comes
// from the rng handed to Apply, so one seed replays one augmentation — the
// property the sampler relies on to keep a whole clip consistent.
package transform

import (
	"fmt"
	"image"
	"math/rand"

	"golang.org/x/image/draw"
)

// RandomCrop scales a frame to ResizeW x ResizeH and cuts a CropW x CropH
// window at an offset drawn from the rng. The usual pretraining pipeline is
// resize to 171x128, crop 112x112.
type RandomCrop struct {
	ResizeW int
	ResizeH int
	CropW   int
	CropH   int
}

func NewRandomCrop(resizeW, resizeH, cropW, cropH int) (RandomCrop, error) {
	if resizeW <= 0 || resizeH <= 0 {
		return RandomCrop{}, fmt.Errorf("resize dims must be positive, got %dx%d", resizeW, resizeH)
	}
	if cropW <= 0 || cropH <= 0 || cropW > resizeW || cropH > resizeH {
		return RandomCrop{}, fmt.Errorf("crop %dx%d does not fit resize %dx%d", cropW, cropH, resizeW, resizeH)
	}
	return RandomCrop{ResizeW: resizeW, ResizeH: resizeH, CropW: cropW, CropH: cropH}, nil
}

func (t RandomCrop) Apply(frame *image.RGBA, rng *rand.Rand) *image.RGBA {
	resized := frame
	if frame.Bounds().Dx() != t.ResizeW || frame.Bounds().Dy() != t.ResizeH {
		resized = image.NewRGBA(image.Rect(0, 0, t.ResizeW, t.ResizeH))
		draw.ApproxBiLinear.Scale(resized, resized.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	}

	dx := rng.Intn(t.ResizeW - t.CropW + 1)
	dy := rng.Intn(t.ResizeH - t.CropH + 1)

	out := image.NewRGBA(image.Rect(0, 0, t.CropW, t.CropH))
	draw.Draw(out, out.Bounds(), resized, image.Pt(dx, dy), draw.Src)
	return out
}
