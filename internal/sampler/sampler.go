package sampler

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/AnanyaAppan/video-clip-order-prediction/internal/domain/entity"
)

// ErrInsufficientLength reports a video too short to fit one tuple span.
// Callers drop such samples and keep going; it is never a crash.
var ErrInsufficientLength = errors.New("video shorter than tuple span")

// Window is a half-open frame range [Start, End) in the source timeline.
type Window struct {
	Start int
	End   int
}

func (w Window) Len() int {
	return w.End - w.Start
}

// Tuple is one sampling draw. Windows are in presentation (shuffled) order;
// Order[i] is the original timeline position of Windows[i]; ClipSeeds[i]
// seeds the stochastic transform for every frame inside Windows[i], so one
// clip gets one consistent augmentation while sibling clips may differ.
type Tuple struct {
	Windows   []Window
	Order     []int
	ClipSeeds []int64
}

// Sample draws one shuffled tuple from a video with the given frame count,
// using the caller's rng for both the start draw and the shuffle. The caller
// owns seeding; nothing here touches global generator state.
func Sample(length int, cfg entity.SampleConfig, rng *rand.Rand) (Tuple, error) {
	return sample(length, cfg, rng, rng)
}

// SampleAt draws the tuple for one dataset index in evaluation mode. The
// random source is seeded with seed before the start draw and re-seeded with
// the same value immediately before the shuffle, so a given index yields
// bit-identical windows, order labels and clip seeds on every call, across
// processes. The double seeding mirrors the reproducibility contract the
// training side was built against.
func SampleAt(length int, cfg entity.SampleConfig, seed int64) (Tuple, error) {
	startRng := rand.New(rand.NewSource(seed))
	shuffleRng := rand.New(rand.NewSource(seed))
	return sample(length, cfg, startRng, shuffleRng)
}

func sample(length int, cfg entity.SampleConfig, startRng, shuffleRng *rand.Rand) (Tuple, error) {
	span := cfg.SpanFrames()
	if length < span {
		return Tuple{}, fmt.Errorf("%w: have %d frames, need %d", ErrInsufficientLength, length, span)
	}

	start := startRng.Intn(length - span + 1)

	unit := cfg.UnitLen()
	windows := make([]Window, cfg.TupleLen)
	order := make([]int, cfg.TupleLen)
	cursor := start
	for i := range windows {
		windows[i] = Window{Start: cursor, End: cursor + unit}
		order[i] = i
		cursor += unit + cfg.Interval
	}

	// The (window, original position) pairing must survive the shuffle.
	shuffleRng.Shuffle(len(windows), func(i, j int) {
		windows[i], windows[j] = windows[j], windows[i]
		order[i], order[j] = order[j], order[i]
	})

	seeds := make([]int64, cfg.TupleLen)
	for i := range seeds {
		seeds[i] = shuffleRng.Int63()
	}

	return Tuple{Windows: windows, Order: order, ClipSeeds: seeds}, nil
}

// SampleSpaced returns count unshuffled clip windows whose centers are evenly
// spaced over the video, the layout used for retrieval-style sampling and
// clip-accuracy evaluation. Windows may overlap when the video is short
// relative to count; every window stays within [0, length).
func SampleSpaced(length, clipLen, count int) ([]Window, error) {
	if clipLen <= 0 {
		return nil, fmt.Errorf("spaced sampling needs a positive clip length, got %d", clipLen)
	}
	if count <= 0 {
		return nil, fmt.Errorf("spaced sampling needs a positive count, got %d", count)
	}
	if length < clipLen {
		return nil, fmt.Errorf("%w: have %d frames, need %d", ErrInsufficientLength, length, clipLen)
	}

	half := float64(clipLen) / 2
	lo := half
	hi := float64(length) - half
	windows := make([]Window, count)
	for i := range windows {
		center := lo
		if count > 1 {
			center = lo + (hi-lo)*float64(i)/float64(count-1)
		}
		start := int(center - half)
		windows[i] = Window{Start: start, End: start + clipLen}
	}
	return windows, nil
}
