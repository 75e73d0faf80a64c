package dataset

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadKineticsSplit(t *testing.T) {
	csv := strings.Join([]string{
		",label,youtube_id,time_start,time_end,split",
		"0,climbing ladder,abc123XYZ,4,14,train",
		"1,archery,q_-w9,120,130,train",
	}, "\n")

	entries, err := LoadKineticsSplit(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "climbing ladder/abc123XYZ_000004_000014.mp4", entries[0].Key)
	assert.Equal(t, "climbing ladder", entries[0].Label)
	assert.Equal(t, "archery/q_-w9_000120_000130.mp4", entries[1].Key)
}

func TestLoadKineticsSplitMissingColumn(t *testing.T) {
	csv := "label,youtube_id,time_start\nx,y,1\n"
	_, err := LoadKineticsSplit(strings.NewReader(csv))
	assert.Error(t, err)
}

func TestLoadListSplit(t *testing.T) {
	list := "ApplyEyeMakeup/v_ApplyEyeMakeup_g08_c01.avi 1\n\nBasketball/v_Basketball_g01_c02.avi 2\n"

	entries, err := LoadListSplit(strings.NewReader(list))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "ApplyEyeMakeup/v_ApplyEyeMakeup_g08_c01.avi", entries[0].Key)
	assert.Equal(t, "ApplyEyeMakeup", entries[0].Label)
	assert.Equal(t, "Basketball", entries[1].Label)
}

func TestFilterLongEnough(t *testing.T) {
	cfg := mustConfig(t, 8, 4, 3) // span 32
	src := &fakeSource{frames: map[string]int{
		"long.mp4":   40,
		"exact.mp4":  32,
		"short.mp4":  20,
		"broken.mp4": 40,
	}, failKey: "broken.mp4"}

	entries := []Entry{
		{Key: "long.mp4"},
		{Key: "exact.mp4"},
		{Key: "short.mp4"},
		{Key: "broken.mp4"},
		{Key: "missing.mp4"},
	}

	kept, err := FilterLongEnough(context.Background(), entries, src, cfg, nil, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, kept, 2)
	assert.Equal(t, "long.mp4", kept[0].Key)
	assert.Equal(t, "exact.mp4", kept[1].Key)
}

func TestFilterLongEnoughResolve(t *testing.T) {
	cfg := mustConfig(t, 8, 4, 3)
	src := &fakeSource{frames: map[string]int{"root/a.mp4": 40}}

	kept, err := FilterLongEnough(context.Background(), []Entry{{Key: "a.mp4"}}, src, cfg,
		func(key string) string { return "root/" + key }, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "a.mp4", kept[0].Key, "filter keeps original keys, resolve is probe-only")
}

func TestWriteSplit(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSplit(&buf, []Entry{{Key: "a/x.mp4"}, {Key: "b/y.mp4"}})
	require.NoError(t, err)
	assert.Equal(t, "a/x.mp4\nb/y.mp4\n", buf.String())
}
