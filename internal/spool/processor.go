package spool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/atomicfile"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/emojierr"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/encode"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/logger"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/paths"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/render"
)

// Renderer is the part of [render.Renderer] the processor needs.
type Renderer interface {
	Render(req render.Request) ([]encode.Artifact, error)
}

// Processor renders the job files of one jobs directory.
type Processor struct {
	renderer Renderer
	jobsDir  string
	outDir   string
	match    func(string) bool
	logger   *slog.Logger
	// Settle is how long Run waits after a watcher event before draining,
	// so a job file still being written is not read half-finished.
	Settle time.Duration
}

// NewProcessor returns a processor reading jobs from jobsDir and writing
// artifacts to outDir. match selects job files by base name.
func NewProcessor(r Renderer, jobsDir, outDir string, match func(string) bool, logger *slog.Logger) *Processor {
	return &Processor{
		renderer: r,
		jobsDir:  jobsDir,
		outDir:   outDir,
		match:    match,
		logger:   logger,
		Settle:   250 * time.Millisecond,
	}
}

// Prepare creates the jobs, output, done and failed directories.
func (p *Processor) Prepare() error {
	for _, dir := range []string{p.jobsDir, p.outDir, paths.Done(p.jobsDir), paths.Failed(p.jobsDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Pending returns the job file names waiting in the jobs directory, sorted.
func (p *Processor) Pending() ([]string, error) {
	entries, err := os.ReadDir(p.jobsDir)
	if err != nil {
		return nil, fmt.Errorf("read jobs directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && p.match(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Drain processes every pending job and reports how many succeeded and
// failed. Only errors that leave a job in place (it could not be moved) are
// returned; render failures are recorded next to the failed job instead.
func (p *Processor) Drain() (done, failed int, err error) {
	names, err := p.Pending()
	if err != nil {
		return 0, 0, err
	}
	var errs []error
	for _, name := range names {
		renderErr, moveErr := p.Process(name)
		switch {
		case moveErr != nil:
			errs = append(errs, moveErr)
		case renderErr != nil:
			failed++
		default:
			done++
		}
	}
	return done, failed, errors.Join(errs...)
}

// Process renders one job and writes its artifacts as a set. The job file
// is then moved to done/, or to failed/ with a note holding the error.
// renderErr is the render or write failure; moveErr reports that the job
// file could not be moved out of the jobs directory.
func (p *Processor) Process(name string) (renderErr, moveErr error) {
	src := filepath.Join(p.jobsDir, name)
	start := time.Now()

	written, renderErr := p.run(src)
	if renderErr != nil {
		p.logger.Warn("job failed", append([]any{"job", name}, logger.ErrorAttrs(renderErr)...)...)
		return renderErr, p.fail(src, renderErr)
	}

	p.logger.Info("job complete", "job", name, "files", written, "elapsed", time.Since(start).Round(time.Millisecond))
	if err := os.Rename(src, filepath.Join(paths.Done(p.jobsDir), name)); err != nil {
		return nil, fmt.Errorf("move %s to done: %w", name, err)
	}
	return nil, nil
}

// run parses, renders and writes one job, returning the artifact count.
func (p *Processor) run(src string) (int, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return 0, fmt.Errorf("read job: %w", err)
	}
	job, err := ParseJob(data)
	if err != nil {
		return 0, err
	}
	req, err := job.Request(filepath.Dir(src))
	if err != nil {
		return 0, err
	}
	arts, err := p.renderer.Render(req)
	if err != nil {
		return 0, err
	}

	base := job.BaseName(src)
	files := make([]atomicfile.File, len(arts))
	for i, a := range arts {
		files[i] = atomicfile.File{Path: filepath.Join(p.outDir, a.FileName(base)), Data: a.Data}
		logger.Trace(p.logger, "artifact staged", "path", files[i].Path, "bytes", len(a.Data), "frames", a.Frames)
	}
	if err := atomicfile.WriteSet(files, 0o644); err != nil {
		return 0, fmt.Errorf("write artifacts: %w", err)
	}
	return len(files), nil
}

// fail moves src into failed/ and writes the error note beside it.
func (p *Processor) fail(src string, cause error) error {
	name := filepath.Base(src)
	dst := filepath.Join(paths.Failed(p.jobsDir), name)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("move %s to failed: %w", name, err)
	}
	note := fmt.Sprintf("%s: %v\n", emojierr.KindOf(cause), cause)
	if err := atomicfile.Write(dst+paths.FailureExt, []byte(note), 0o644); err != nil {
		p.logger.Warn("cannot write failure note", "job", name, "error", err)
	}
	return nil
}

// Run drains the jobs directory once, then again after every signal on
// events, until ctx is cancelled or events is closed.
func (p *Processor) Run(ctx context.Context, events <-chan struct{}) error {
	p.drainLogged()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-events:
			if !ok {
				return nil
			}
			if p.Settle > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(p.Settle):
				}
			}
			p.drainLogged()
		}
	}
}

func (p *Processor) drainLogged() {
	done, failed, err := p.Drain()
	if err != nil {
		p.logger.Error("drain jobs", "error", err)
	}
	if done+failed > 0 {
		p.logger.Debug("jobs drained", "done", done, "failed", failed)
	}
}
