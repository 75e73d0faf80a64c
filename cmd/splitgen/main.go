// splitgen filters a split file down to the videos long enough to yield at
// least one order-prediction tuple for a given sampling configuration, so the
// training loop wastes no draws on videos it would only drop.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/AnanyaAppan/video-clip-order-prediction/internal/dataset"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/domain/entity"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/infra/ffmpeg"
	"github.com/AnanyaAppan/video-clip-order-prediction/pkg/logger"
)

func main() {
	var (
		splitPath = flag.String("split", "", "input split file (kinetics csv or plain list)")
		outPath   = flag.String("out", "", "output path for the filtered split list")
		rootDir   = flag.String("root", ".", "directory the split keys are relative to")
		clipLen   = flag.Int("clip-len", 16, "frames per clip, 0 for single-frame mode")
		interval  = flag.Int("interval", 8, "gap frames between clips")
		tupleLen  = flag.Int("tuple-len", 3, "clips per tuple")
		logLevel  = flag.String("log-level", "info", "zap log level")
	)
	flag.Parse()

	if *splitPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: splitgen -split <in> -out <out> [-root dir] [-clip-len n] [-interval n] [-tuple-len n]")
		os.Exit(2)
	}

	log, err := logger.New(*logLevel)
	exitOnErr(err, "init logger")
	defer log.Sync()

	cfg, err := entity.NewSampleConfig(*clipLen, *interval, *tupleLen)
	exitOnErr(err, "invalid sampling config")

	in, err := os.Open(*splitPath)
	exitOnErr(err, "open split file")
	defer in.Close()

	var entries []dataset.Entry
	if strings.HasSuffix(*splitPath, ".csv") {
		entries, err = dataset.LoadKineticsSplit(in)
	} else {
		entries, err = dataset.LoadListSplit(in)
	}
	exitOnErr(err, "parse split file")

	log.Info("filtering split",
		zap.Int("entries", len(entries)),
		zap.Int("span_frames", cfg.SpanFrames()),
	)

	source := ffmpeg.NewFrameSource(log)
	kept, err := dataset.FilterLongEnough(context.Background(), entries, source, cfg,
		func(key string) string { return filepath.Join(*rootDir, key) }, log)
	exitOnErr(err, "filter split")

	out, err := os.Create(*outPath)
	exitOnErr(err, "create output file")
	defer out.Close()

	exitOnErr(dataset.WriteSplit(out, kept), "write filtered split")

	log.Info("split written",
		zap.String("path", *outPath),
		zap.Int("kept", len(kept)),
		zap.Int("dropped", len(entries)-len(kept)),
	)
}

func exitOnErr(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "splitgen: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
