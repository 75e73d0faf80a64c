// Package dataset exposes order-prediction samples through a dataset item
// protocol: a split of videos, an index, and per-index tuple sampling with
// train or evaluation randomness.
package dataset

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/AnanyaAppan/video-clip-order-prediction/internal/domain/entity"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/domain/port"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/permutation"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/sampler"
)

type Mode string

const (
	// ModeTrain draws fresh randomness on every access.
	ModeTrain Mode = "train"
	// ModeEval seeds the sampler with the item index, so the same index
	// always yields the same tuple, across runs.
	ModeEval Mode = "eval"
)

// Entry is one video in a split manifest.
type Entry struct {
	// Key locates the video for the frame source (path or object key).
	Key string
	// Label is the action class, empty when the split carries none.
	Label string
}

// Dataset samples one shuffled tuple per item access. Accesses are
// independent: no state is shared between samples beyond the read-only
// entries, so parallel loaders need no locking.
type Dataset struct {
	entries   []Entry
	cfg       entity.SampleConfig
	source    port.FrameSource
	transform port.Transform
	codec     *permutation.Codec
	mode      Mode
	log       *zap.Logger

	trainSeq atomic.Int64
}

func New(entries []Entry, cfg entity.SampleConfig, source port.FrameSource, transform port.Transform, mode Mode, log *zap.Logger) (*Dataset, error) {
	codec, err := permutation.NewCodec(cfg.TupleLen)
	if err != nil {
		return nil, fmt.Errorf("build permutation codec: %w", err)
	}
	if mode != ModeTrain && mode != ModeEval {
		return nil, fmt.Errorf("unknown dataset mode %q", mode)
	}
	return &Dataset{
		entries:   entries,
		cfg:       cfg,
		source:    source,
		transform: transform,
		codec:     codec,
		mode:      mode,
		log:       log,
	}, nil
}

func (d *Dataset) Len() int {
	return len(d.entries)
}

// Classes is the size of the permutation label space.
func (d *Dataset) Classes() int {
	return d.codec.Classes()
}

// Item samples one tuple from the video at idx. Too-short videos surface as
// sampler.ErrInsufficientLength and decode failures as the frame source's
// error; callers are expected to drop and count those, not to treat them as
// fatal.
func (d *Dataset) Item(ctx context.Context, idx int) (*entity.TupleSample, error) {
	if idx < 0 || idx >= len(d.entries) {
		return nil, fmt.Errorf("index %d out of range [0,%d)", idx, len(d.entries))
	}
	entry := d.entries[idx]

	seq, err := d.source.Load(ctx, entry.Key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", entry.Key, err)
	}

	var tup sampler.Tuple
	if d.mode == ModeEval {
		tup, err = sampler.SampleAt(seq.Len(), d.cfg, int64(idx))
	} else {
		tup, err = sampler.Sample(seq.Len(), d.cfg, d.trainRng())
	}
	if err != nil {
		d.log.Debug("sample dropped",
			zap.String("video", entry.Key),
			zap.Int("index", idx),
			zap.Int("frames", seq.Len()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("sample %s: %w", entry.Key, err)
	}

	return BuildSample(seq, tup, d.codec, d.transform)
}

// trainRng returns a random source private to one access. Mixing an atomic
// sequence number into the wall clock keeps concurrent accesses on distinct
// streams even when they start in the same nanosecond.
func (d *Dataset) trainRng() *rand.Rand {
	seed := time.Now().UnixNano() ^ (d.trainSeq.Add(1) << 32)
	return rand.New(rand.NewSource(seed))
}

// BuildSample materializes a sampling draw against decoded frames: slices the
// windows out of the sequence, applies the transform with one rng per clip
// (re-created from the clip seed for every frame, so all frames of a clip get
// identical augmentation parameters), and derives the permutation class.
func BuildSample(seq *port.FrameSequence, tup sampler.Tuple, codec *permutation.Codec, transform port.Transform) (*entity.TupleSample, error) {
	class, err := codec.Encode(tup.Order)
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}

	clips := make([][]*image.RGBA, len(tup.Windows))
	for i, w := range tup.Windows {
		if w.Start < 0 || w.End > seq.Len() {
			return nil, fmt.Errorf("window [%d,%d) outside sequence of %d frames", w.Start, w.End, seq.Len())
		}
		clip := make([]*image.RGBA, 0, w.Len())
		for f := w.Start; f < w.End; f++ {
			frame := seq.Frames[f]
			if transform != nil {
				frame = transform.Apply(frame, rand.New(rand.NewSource(tup.ClipSeeds[i])))
			}
			clip = append(clip, frame)
		}
		clips[i] = clip
	}

	return &entity.TupleSample{Clips: clips, Order: tup.Order, Class: class}, nil
}

// BuildSpaced materializes evenly spaced windows as an unshuffled sample:
// identity order labels and class rank of the identity permutation. Each clip
// still draws its own transform seed from rng.
func BuildSpaced(seq *port.FrameSequence, windows []sampler.Window, codec *permutation.Codec, transform port.Transform, rng *rand.Rand) (*entity.TupleSample, error) {
	order := make([]int, len(windows))
	seeds := make([]int64, len(windows))
	for i := range windows {
		order[i] = i
		seeds[i] = rng.Int63()
	}
	return BuildSample(seq, sampler.Tuple{Windows: windows, Order: order, ClipSeeds: seeds}, codec, transform)
}
