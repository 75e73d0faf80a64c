package archive

import (
	"archive/zip"
	"context"
	"encoding/json"
	"image"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnanyaAppan/video-clip-order-prediction/internal/domain/entity"
)

func makeSample(t *testing.T, order []int, class, clipLen int) *entity.TupleSample {
	t.Helper()
	clips := make([][]*image.RGBA, len(order))
	for i := range clips {
		clip := make([]*image.RGBA, clipLen)
		for f := range clip {
			clip[f] = image.NewRGBA(image.Rect(0, 0, 2, 2))
		}
		clips[i] = clip
	}
	return &entity.TupleSample{Clips: clips, Order: order, Class: class}
}

func TestWriteArchiveNamesClipsByOriginalOrder(t *testing.T) {
	samples := []*entity.TupleSample{
		makeSample(t, []int{2, 0, 1}, 4, 2),
		makeSample(t, []int{0, 1, 2}, 0, 2),
	}

	outPath := filepath.Join(t.TempDir(), "tuples.zip")
	w := NewWriter()
	require.NoError(t, w.WriteArchive(context.Background(), samples, outPath))

	zr, err := zip.OpenReader(outPath)
	require.NoError(t, err)
	defer zr.Close()

	names := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		names[f.Name] = true
	}

	// Presentation slot 0 of the first tuple sat at timeline position 2,
	// so its frames land under clip_2.
	assert.True(t, names["tuple_000/clip_2/frame_0000.png"])
	assert.True(t, names["tuple_000/clip_2/frame_0001.png"])
	assert.True(t, names["tuple_000/clip_0/frame_0000.png"])
	assert.True(t, names["tuple_000/clip_1/frame_0000.png"])
	assert.False(t, names["tuple_000/clip_2/frame_0002.png"], "only clip_len frames per clip")

	// Identity order keeps slot and directory numbers aligned.
	assert.True(t, names["tuple_001/clip_0/frame_0000.png"])
	assert.True(t, names["tuple_001/clip_1/frame_0001.png"])
	assert.True(t, names["tuple_001/clip_2/frame_0000.png"])
}

func TestWriteArchiveManifest(t *testing.T) {
	samples := []*entity.TupleSample{
		makeSample(t, []int{1, 0}, 1, 3),
	}

	outPath := filepath.Join(t.TempDir(), "tuples.zip")
	w := NewWriter()
	require.NoError(t, w.WriteArchive(context.Background(), samples, outPath))

	zr, err := zip.OpenReader(outPath)
	require.NoError(t, err)
	defer zr.Close()

	var labels *zip.File
	pngCount := 0
	for _, f := range zr.File {
		if f.Name == "labels.json" {
			labels = f
			continue
		}
		pngCount++
	}
	assert.Equal(t, 6, pngCount)

	require.NotNil(t, labels)
	lr, err := labels.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(lr)
	lr.Close()
	require.NoError(t, err)

	var manifests []TupleManifest
	require.NoError(t, json.Unmarshal(data, &manifests))
	require.Len(t, manifests, 1)
	assert.Equal(t, 0, manifests[0].Index)
	assert.Equal(t, []int{1, 0}, manifests[0].Order)
	assert.Equal(t, 1, manifests[0].Class)
}

func TestWriteArchiveCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outPath := filepath.Join(t.TempDir(), "tuples.zip")
	w := NewWriter()
	err := w.WriteArchive(ctx, []*entity.TupleSample{makeSample(t, []int{0, 1}, 0, 1)}, outPath)
	assert.ErrorIs(t, err, context.Canceled)
}
