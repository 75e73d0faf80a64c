// Package archive packages sampled tuples into a zip a training consumer can
// pull apart offline: PNG frames per clip plus a labels manifest.
package archive

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"os"

	"github.com/AnanyaAppan/video-clip-order-prediction/internal/domain/entity"
)

// TupleManifest records the labels of one archived tuple. Order says where
// each presentation slot sat in the original timeline, Class is the
// permutation class index.
type TupleManifest struct {
	Index int   `json:"index"`
	Order []int `json:"order"`
	Class int   `json:"class"`
}

type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

// WriteArchive lays samples out as tuple_NNN/clip_N/frame_NNNN.png with a
// labels.json at the root. Clip directories are named by original timeline
// position, so a shuffled tuple can be read back in order straight from the
// directory listing.
func (w *Writer) WriteArchive(ctx context.Context, samples []*entity.TupleSample, outputPath string) error {
	zipFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer zipFile.Close()

	zw := zip.NewWriter(zipFile)
	defer zw.Close()

	manifests := make([]TupleManifest, 0, len(samples))
	for i, sample := range samples {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for c, clip := range sample.Clips {
			for f, frame := range clip {
				name := fmt.Sprintf("tuple_%03d/clip_%d/frame_%04d.png", i, sample.Order[c], f)
				fw, err := zw.Create(name)
				if err != nil {
					return fmt.Errorf("create %s: %w", name, err)
				}
				if err := png.Encode(fw, frame); err != nil {
					return fmt.Errorf("encode %s: %w", name, err)
				}
			}
		}
		manifests = append(manifests, TupleManifest{Index: i, Order: sample.Order, Class: sample.Class})
	}

	mw, err := zw.Create("labels.json")
	if err != nil {
		return fmt.Errorf("create labels.json: %w", err)
	}
	enc := json.NewEncoder(mw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(manifests); err != nil {
		return fmt.Errorf("encode labels.json: %w", err)
	}

	return nil
}
