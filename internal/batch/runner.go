package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNoImages is returned when the directory contains no image files. It is
// a terminal outcome of the run, not a failure.
var ErrNoImages = errors.New("no image files found")

// Engine is the slice of the inference engine the runner needs.
type Engine interface {
	Answer(ctx context.Context, imagePath string) (string, error)
	ModelDir() string
	Backend() string
}

// EngineFactory constructs the engine. The runner calls it exactly once per
// run, and only after discovery finds at least one image.
type EngineFactory func(ctx context.Context) (Engine, error)

// Runner drives one batch over a directory of images: discovery, a single
// engine load, then one sequential inference per image.
type Runner struct {
	Dir     string
	Factory EngineFactory
	Sampler MemorySampler
	Prober  SizeProber
	Out     io.Writer
}

// Run executes the batch. Per-image failures are captured in their reports
// and never abort the run; only discovery and engine load are fatal. The
// returned reports hold one entry per discovered image, in processing order.
func (r *Runner) Run(ctx context.Context) (*Summary, []ItemReport, error) {
	images, err := Discover(r.Dir)
	if err != nil {
		return nil, nil, err
	}
	if len(images) == 0 {
		fmt.Fprintln(r.Out, "No image files found in the current directory.")
		return nil, nil, ErrNoImages
	}
	log.Info().Int("count", len(images)).Str("dir", r.Dir).Msg("discovered images")

	loadStart := time.Now()
	engine, err := r.Factory(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load engine: %w", err)
	}

	summary := &Summary{
		Backend:      engine.Backend(),
		LoadDuration: time.Since(loadStart),
		InitialMem:   r.Sampler.Sample(),
	}
	summary.ModelSize, summary.ModelSizeKnown = r.Prober.Probe(engine.ModelDir())
	writeSummary(r.Out, *summary)

	reports := make([]ItemReport, 0, len(images))
	for _, path := range images {
		// The signal context stops the batch between items; an in-flight
		// generation still runs to completion.
		if err := ctx.Err(); err != nil {
			return summary, reports, err
		}

		fmt.Fprintf(r.Out, "Processing image: %s\n", path)
		report := r.processImage(ctx, engine, path)
		if report.Failed() {
			summary.Failed++
			log.Warn().
				Err(report.Err).
				Str("image", path).
				Dur("duration", report.Duration).
				Msg("inference failed")
		} else {
			summary.Succeeded++
		}
		writeItemReport(r.Out, report)
		reports = append(reports, report)
	}

	return summary, reports, nil
}

// processImage runs one image through the engine and finalizes its report.
// Both memory samples and the duration are recorded regardless of outcome.
func (r *Runner) processImage(ctx context.Context, engine Engine, path string) ItemReport {
	report := ItemReport{
		Path:      path,
		MemBefore: r.Sampler.Sample(),
	}
	start := time.Now()
	text, err := engine.Answer(ctx, path)
	report.Duration = time.Since(start)
	report.MemAfter = r.Sampler.Sample()
	if err != nil {
		report.Err = err
	} else {
		report.Analysis = text
	}
	return report
}
