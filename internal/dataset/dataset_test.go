package dataset

import (
	"context"
	"errors"
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnanyaAppan/video-clip-order-prediction/internal/domain/entity"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/domain/port"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/permutation"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/sampler"
)

// fakeSource serves synthetic sequences; the first pixel of every frame
// carries the frame's timeline index so tests can recover window positions.
type fakeSource struct {
	frames  map[string]int
	failKey string
}

var errDecode = errors.New("decode failed")

func (f *fakeSource) Probe(_ context.Context, key string) (port.VideoInfo, error) {
	n, ok := f.frames[key]
	if !ok || key == f.failKey {
		return port.VideoInfo{}, errDecode
	}
	return port.VideoInfo{NumFrames: n, Width: 4, Height: 4}, nil
}

func (f *fakeSource) Load(_ context.Context, key string) (*port.FrameSequence, error) {
	n, ok := f.frames[key]
	if !ok || key == f.failKey {
		return nil, errDecode
	}
	seq := &port.FrameSequence{Width: 4, Height: 4}
	for i := 0; i < n; i++ {
		im := image.NewRGBA(image.Rect(0, 0, 4, 4))
		im.Pix[0] = byte(i)
		seq.Frames = append(seq.Frames, im)
	}
	return seq, nil
}

func frameIndex(im *image.RGBA) int {
	return int(im.Pix[0])
}

func mustConfig(t *testing.T, clipLen, interval, tupleLen int) entity.SampleConfig {
	t.Helper()
	cfg, err := entity.NewSampleConfig(clipLen, interval, tupleLen)
	require.NoError(t, err)
	return cfg
}

func TestDatasetItemLayoutAndLabels(t *testing.T) {
	cfg := mustConfig(t, 4, 2, 3) // span 16
	src := &fakeSource{frames: map[string]int{"a.mp4": 60}}

	ds, err := New([]Entry{{Key: "a.mp4"}}, cfg, src, nil, ModeTrain, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	require.Equal(t, 6, ds.Classes())

	sample, err := ds.Item(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, sample.Clips, 3)
	require.Len(t, sample.Order, 3)

	// every clip holds consecutive frames
	starts := make([]int, 3)
	for i, clip := range sample.Clips {
		require.Len(t, clip, 4)
		starts[i] = frameIndex(clip[0])
		for j, frame := range clip {
			assert.Equal(t, starts[i]+j, frameIndex(frame))
		}
	}

	// order labels rebuild the original timeline: clip with label k starts
	// at tupleStart + k*(clipLen+interval)
	tupleStart := starts[0]
	for _, s := range starts {
		if s < tupleStart {
			tupleStart = s
		}
	}
	for i, s := range starts {
		assert.Equal(t, tupleStart+sample.Order[i]*6, s, "clip %d", i)
	}

	// class matches the codec rank of the order labels
	codec, err := permutation.NewCodec(3)
	require.NoError(t, err)
	class, err := codec.Encode(sample.Order)
	require.NoError(t, err)
	assert.Equal(t, class, sample.Class)
}

func TestDatasetEvalDeterminism(t *testing.T) {
	cfg := mustConfig(t, 4, 2, 3)
	src := &fakeSource{frames: map[string]int{"a.mp4": 60, "b.mp4": 60}}
	entries := []Entry{{Key: "a.mp4"}, {Key: "b.mp4"}}

	first, err := New(entries, cfg, src, nil, ModeEval, zap.NewNop())
	require.NoError(t, err)
	second, err := New(entries, cfg, src, nil, ModeEval, zap.NewNop())
	require.NoError(t, err)

	for idx := 0; idx < 2; idx++ {
		a, err := first.Item(context.Background(), idx)
		require.NoError(t, err)
		b, err := second.Item(context.Background(), idx)
		require.NoError(t, err)

		assert.Equal(t, a.Order, b.Order, "idx %d", idx)
		assert.Equal(t, a.Class, b.Class, "idx %d", idx)
		for i := range a.Clips {
			assert.Equal(t, frameIndex(a.Clips[i][0]), frameIndex(b.Clips[i][0]), "idx %d clip %d", idx, i)
		}
	}
}

func TestDatasetTooShortVideo(t *testing.T) {
	cfg := mustConfig(t, 8, 4, 3) // span 32
	src := &fakeSource{frames: map[string]int{"short.mp4": 20}}

	ds, err := New([]Entry{{Key: "short.mp4"}}, cfg, src, nil, ModeTrain, zap.NewNop())
	require.NoError(t, err)

	_, err = ds.Item(context.Background(), 0)
	assert.ErrorIs(t, err, sampler.ErrInsufficientLength)
}

func TestDatasetDecodeFailure(t *testing.T) {
	cfg := mustConfig(t, 4, 2, 3)
	src := &fakeSource{frames: map[string]int{"bad.mp4": 60}, failKey: "bad.mp4"}

	ds, err := New([]Entry{{Key: "bad.mp4"}}, cfg, src, nil, ModeTrain, zap.NewNop())
	require.NoError(t, err)

	_, err = ds.Item(context.Background(), 0)
	assert.ErrorIs(t, err, errDecode)
}

func TestDatasetIndexOutOfRange(t *testing.T) {
	cfg := mustConfig(t, 4, 2, 3)
	src := &fakeSource{frames: map[string]int{"a.mp4": 60}}

	ds, err := New([]Entry{{Key: "a.mp4"}}, cfg, src, nil, ModeTrain, zap.NewNop())
	require.NoError(t, err)

	_, err = ds.Item(context.Background(), 1)
	assert.Error(t, err)
	_, err = ds.Item(context.Background(), -1)
	assert.Error(t, err)
}

// recordingTransform notes every rng draw it makes, in application order.
// BuildSample applies the transform clip by clip, frame by frame, so the
// draws group into clip-sized runs.
type recordingTransform struct {
	draws []int64
}

func (r *recordingTransform) Apply(frame *image.RGBA, rng *rand.Rand) *image.RGBA {
	r.draws = append(r.draws, rng.Int63())
	return frame
}

func TestPerClipTransformConsistency(t *testing.T) {
	cfg := mustConfig(t, 4, 2, 3)
	src := &fakeSource{frames: map[string]int{"a.mp4": 60}}
	rec := &recordingTransform{}

	ds, err := New([]Entry{{Key: "a.mp4"}}, cfg, src, rec, ModeTrain, zap.NewNop())
	require.NoError(t, err)

	_, err = ds.Item(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, rec.draws, 12) // 3 clips x 4 frames

	perClip := make([]int64, 3)
	for c := 0; c < 3; c++ {
		run := rec.draws[c*4 : (c+1)*4]
		for _, v := range run {
			assert.Equal(t, run[0], v, "frames of clip %d must share augmentation randomness", c)
		}
		perClip[c] = run[0]
	}
	distinct := map[int64]bool{perClip[0]: true, perClip[1]: true, perClip[2]: true}
	assert.Greater(t, len(distinct), 1, "different clips should draw different augmentation seeds")
}

func TestBuildSpacedIdentityOrder(t *testing.T) {
	src := &fakeSource{frames: map[string]int{"a.mp4": 40}}
	seq, err := src.Load(context.Background(), "a.mp4")
	require.NoError(t, err)

	codec, err := permutation.NewCodec(3)
	require.NoError(t, err)

	windows, err := sampler.SampleSpaced(seq.Len(), 8, 3)
	require.NoError(t, err)

	sample, err := BuildSpaced(seq, windows, codec, nil, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, sample.Order)
	assert.Equal(t, 0, sample.Class)
	assert.Equal(t, 0, frameIndex(sample.Clips[0][0]))
	assert.Equal(t, 16, frameIndex(sample.Clips[1][0]))
	assert.Equal(t, 32, frameIndex(sample.Clips[2][0]))
}
