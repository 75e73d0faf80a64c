package port

import (
	"image"
	"math/rand"
)

// Transform applies one stochastic augmentation to a frame. Implementations
// must be stateless across calls: all randomness comes from the
// caller-supplied rng, so re-creating the rng from one seed replays the same
// augmentation on every frame of a clip.
type Transform interface {
	Apply(frame *image.RGBA, rng *rand.Rand) *image.RGBA
}
