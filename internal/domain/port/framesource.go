package port

import (
	"context"
	"image"
)

// FrameSequence is a fully decoded video: an ordered, indexable run of
// frames. Read-only to consumers; the sampler never mutates it.
type FrameSequence struct {
	Frames []*image.RGBA
	Width  int
	Height int
}

func (s *FrameSequence) Len() int {
	return len(s.Frames)
}

// VideoInfo is probed metadata, available without decoding.
type VideoInfo struct {
	NumFrames int
	Width     int
	Height    int
	Duration  float64
}

// FrameSource decodes videos into frame sequences. Load may block on disk
// and codec work; failures (corrupt or unreadable files) surface as errors
// that samplers drop and count rather than crash on.
type FrameSource interface {
	Probe(ctx context.Context, videoPath string) (VideoInfo, error)
	Load(ctx context.Context, videoPath string) (*FrameSequence, error)
}
