package entity

import "fmt"

// SampleConfig describes how order-prediction tuples are carved out of a
// video: ClipLen frames per clip (0 selects single-frame mode), Interval gap
// frames between consecutive clips, TupleLen clips per tuple.
//
// A config is validated at construction; an invalid config is a programming
// error, not a runtime data condition.
type SampleConfig struct {
	ClipLen  int
	Interval int
	TupleLen int
}

// MaxTupleLen bounds the tuple arity so TupleLen! stays a usable label space.
const MaxTupleLen = 8

func NewSampleConfig(clipLen, interval, tupleLen int) (SampleConfig, error) {
	if clipLen < 0 {
		return SampleConfig{}, fmt.Errorf("clip length must be >= 0, got %d", clipLen)
	}
	if interval < 0 {
		return SampleConfig{}, fmt.Errorf("interval must be >= 0, got %d", interval)
	}
	if tupleLen < 2 || tupleLen > MaxTupleLen {
		return SampleConfig{}, fmt.Errorf("tuple length must be in [2,%d], got %d", MaxTupleLen, tupleLen)
	}
	return SampleConfig{ClipLen: clipLen, Interval: interval, TupleLen: tupleLen}, nil
}

// FrameMode reports whether sampling units are single frames instead of clips.
func (c SampleConfig) FrameMode() bool {
	return c.ClipLen == 0
}

// UnitLen is the number of frames in one sampling unit: ClipLen in clip mode,
// 1 in single-frame mode.
func (c SampleConfig) UnitLen() int {
	if c.ClipLen == 0 {
		return 1
	}
	return c.ClipLen
}

// SpanFrames is the total number of source frames one tuple occupies,
// inter-clip gaps included. Videos shorter than this cannot yield a sample.
func (c SampleConfig) SpanFrames() int {
	return c.UnitLen()*c.TupleLen + c.Interval*(c.TupleLen-1)
}
