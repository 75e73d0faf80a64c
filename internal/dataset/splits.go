package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/AnanyaAppan/video-clip-order-prediction/internal/domain/entity"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/domain/port"
)

// LoadKineticsSplit reads a Kinetics-style split CSV (header with label,
// youtube_id, time_start and time_end columns, extra columns ignored) and
// resolves each row to the clip file key the downloader produces:
// label/youtubeid_START_END.mp4 with six-digit zero-padded times.
func LoadKineticsSplit(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read split header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, need := range []string{"label", "youtube_id", "time_start", "time_end"} {
		if _, ok := col[need]; !ok {
			return nil, fmt.Errorf("split file missing %q column", need)
		}
	}

	var entries []Entry
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read split row: %w", err)
		}
		label := row[col["label"]]
		id := row[col["youtube_id"]]
		start, err := strconv.Atoi(strings.TrimSpace(row[col["time_start"]]))
		if err != nil {
			return nil, fmt.Errorf("parse time_start for %s: %w", id, err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(row[col["time_end"]]))
		if err != nil {
			return nil, fmt.Errorf("parse time_end for %s: %w", id, err)
		}
		entries = append(entries, Entry{
			Key:   fmt.Sprintf("%s/%s_%06d_%06d.mp4", label, id, start, end),
			Label: label,
		})
	}
	return entries, nil
}

// LoadListSplit reads a plain split list: one video per line, optionally
// followed by a space-separated tail that is ignored. The class label is the
// leading path component when present.
func LoadListSplit(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read split list: %w", err)
	}
	var entries []Entry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key := strings.Fields(line)[0]
		var label string
		if i := strings.IndexByte(key, '/'); i > 0 {
			label = key[:i]
		}
		entries = append(entries, Entry{Key: key, Label: label})
	}
	return entries, nil
}

// WriteSplit writes entries back out as a one-key-per-line split list.
func WriteSplit(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, e.Key); err != nil {
			return err
		}
	}
	return nil
}

// FilterLongEnough keeps the entries whose probed frame count covers at least
// one full tuple span, the offline pre-filter that spares the training loop
// from drawing samples it would only drop. Entries that fail to probe are
// dropped too, with a log line each. resolve maps an entry key to the path
// the frame source understands; pass nil to use keys as-is.
func FilterLongEnough(ctx context.Context, entries []Entry, src port.FrameSource, cfg entity.SampleConfig, resolve func(string) string, log *zap.Logger) ([]Entry, error) {
	span := cfg.SpanFrames()
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := e.Key
		if resolve != nil {
			path = resolve(e.Key)
		}
		info, err := src.Probe(ctx, path)
		if err != nil {
			log.Warn("dropping unprobeable video", zap.String("video", e.Key), zap.Error(err))
			continue
		}
		if info.NumFrames < span {
			log.Debug("dropping short video",
				zap.String("video", e.Key),
				zap.Int("frames", info.NumFrames),
				zap.Int("span", span),
			)
			continue
		}
		kept = append(kept, e)
	}
	return kept, nil
}
