package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/AnanyaAppan/video-clip-order-prediction/internal/domain/port"
)

// FrameSource decodes videos with the ffmpeg/ffprobe binaries: metadata via
// ffprobe, frames via a rawvideo rgb24 pipe read frame by frame off stdout.
type FrameSource struct {
	logger *zap.Logger
}

func NewFrameSource(logger *zap.Logger) *FrameSource {
	return &FrameSource{logger: logger}
}

func (s *FrameSource) Probe(ctx context.Context, videoPath string) (port.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,nb_frames,avg_frame_rate:format=duration",
		"-of", "default=noprint_wrappers=1",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return port.VideoInfo{}, fmt.Errorf("ffprobe %s: %w", videoPath, err)
	}

	fields := make(map[string]string)
	for _, line := range strings.Split(string(output), "\n") {
		if k, v, ok := strings.Cut(strings.TrimSpace(line), "="); ok {
			fields[k] = v
		}
	}

	var info port.VideoInfo
	info.Width, _ = strconv.Atoi(fields["width"])
	info.Height, _ = strconv.Atoi(fields["height"])
	info.Duration, _ = strconv.ParseFloat(fields["duration"], 64)
	if info.Width <= 0 || info.Height <= 0 {
		return port.VideoInfo{}, fmt.Errorf("ffprobe %s: no video stream dimensions", videoPath)
	}

	if n, err := strconv.Atoi(fields["nb_frames"]); err == nil && n > 0 {
		info.NumFrames = n
	} else {
		// Some containers report nb_frames as N/A; estimate from duration.
		info.NumFrames = int(info.Duration * parseRate(fields["avg_frame_rate"]))
	}
	return info, nil
}

// Load decodes the whole video into memory, the access pattern the tuple
// sampler needs (random access to arbitrary frame windows).
func (s *FrameSource) Load(ctx context.Context, videoPath string) (*port.FrameSequence, error) {
	info, err := s.Probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", videoPath,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	reader := bufio.NewReaderSize(stdout, 1<<20)
	frameSize := info.Width * info.Height * 3
	buf := make([]byte, frameSize)

	seq := &port.FrameSequence{Width: info.Width, Height: info.Height}
	if info.NumFrames > 0 {
		seq.Frames = make([]*image.RGBA, 0, info.NumFrames)
	}
	for {
		_, err := io.ReadFull(reader, buf)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			cmd.Process.Kill()
			cmd.Wait()
			return nil, fmt.Errorf("read frame %d of %s: %w", len(seq.Frames), videoPath, err)
		}
		seq.Frames = append(seq.Frames, rgbToImage(buf, info.Width, info.Height))
	}

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg %s: %w", videoPath, err)
	}
	if len(seq.Frames) == 0 {
		return nil, fmt.Errorf("ffmpeg %s: decoded no frames", videoPath)
	}

	s.logger.Debug("video decoded",
		zap.String("video", videoPath),
		zap.Int("frames", len(seq.Frames)),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
	)
	return seq, nil
}

func rgbToImage(rgb []byte, w, h int) *image.RGBA {
	im := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := y * w * 3
		dst := y * im.Stride
		for x := 0; x < w; x++ {
			im.Pix[dst] = rgb[src]
			im.Pix[dst+1] = rgb[src+1]
			im.Pix[dst+2] = rgb[src+2]
			im.Pix[dst+3] = 0xff
			src += 3
			dst += 4
		}
	}
	return im
}

func parseRate(rate string) float64 {
	num, den, ok := strings.Cut(rate, "/")
	if !ok {
		f, _ := strconv.ParseFloat(rate, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
