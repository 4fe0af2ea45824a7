// Package publish converts a whole project into a resource pack: every
// material is built in the output encoding and every other file is copied
// or re-encoded.
package publish

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"pixelgraph/internal/encoding"
	"pixelgraph/internal/graph"
	"pixelgraph/internal/material"
	"pixelgraph/internal/packio"
	"pixelgraph/internal/texture"
)

// State is where a material or file ended up.
type State int

const (
	Discovered State = iota
	UpToDate
	Published
	Failed
	Canceled
)

func (s State) String() string {
	switch s {
	case UpToDate:
		return "up-to-date"
	case Published:
		return "published"
	case Failed:
		return "failed"
	case Canceled:
		return "canceled"
	}
	return "discovered"
}

// Kind distinguishes materials from plain files in results.
type Kind string

const (
	KindMaterial Kind = "material"
	KindImage    Kind = "image"
	KindFile     Kind = "file"
)

// Options configures a publish run.
type Options struct {
	// Reader is rooted at the project directory.
	Reader packio.Reader
	Writer packio.Writer

	Input   *encoding.PackEncoding
	Output  *encoding.PackEncoding
	Profile graph.Profile
	// ProfileTime is when the project or profile was last changed. Outputs
	// older than it are rebuilt. Zero disables the check.
	ProfileTime time.Time

	OutputLocal  bool
	AutoMaterial bool
	// Clean removes all previous output before publishing.
	Clean bool

	// ImageExtensions lists the untracked image types that are resized and
	// re-encoded. Everything else is copied byte for byte.
	ImageExtensions []string
	// IgnorePaths are copied as-is even when they are images.
	IgnorePaths []string
	// Exclude lists files that are not published at all.
	Exclude []string

	GameVersion string
	Description string
	Tags        []string

	// ManifestPath names the publish manifest written into the output. It
	// records what each item wrote, which the next run's skip check relies
	// on. Defaults to DefaultManifest.
	ManifestPath string

	Workers          int
	ProgressInterval time.Duration
	Logger           *zap.Logger
}

// Result holds the outcome of one material or file.
type Result struct {
	Name    string
	Kind    Kind
	State   State
	Written []string
	Error   string
}

// Summary counts results by state.
type Summary struct {
	Published int
	UpToDate  int
	Failed    int
	Canceled  int
	Copied    int
	Results   []Result
	Elapsed   time.Duration
}

// Publisher runs publish jobs.
type Publisher struct {
	opt    Options
	log    *zap.Logger
	images *texture.ImageCache
}

// New creates a publisher.
func New(opt Options) *Publisher {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opt.Workers <= 0 {
		opt.Workers = 1
	}
	if opt.ProgressInterval <= 0 {
		opt.ProgressInterval = 2 * time.Second
	}
	if opt.ManifestPath == "" {
		opt.ManifestPath = DefaultManifest
	}
	return &Publisher{opt: opt, log: log, images: texture.NewImageCache()}
}

type job struct {
	mat  *material.Properties
	file string
}

func (j job) name() string {
	if j.mat != nil {
		return j.mat.DocumentPath()
	}
	return j.file
}

// Run publishes the project. Per-item failures are reported in the summary;
// the returned error is reserved for problems that stop the whole run.
func (p *Publisher) Run(ctx context.Context) (*Summary, error) {
	opt := p.opt
	if err := opt.Output.Validate(); err != nil {
		return nil, err
	}
	if opt.Clean {
		if err := opt.Writer.Clean(); err != nil {
			return nil, fmt.Errorf("publish: clean: %w", err)
		}
	}
	if err := opt.Writer.Prepare(); err != nil {
		return nil, fmt.Errorf("publish: prepare: %w", err)
	}

	record, err := ReadManifest(opt.Writer, opt.ManifestPath)
	if err != nil {
		p.log.Warn("ignoring previous manifest, rebuilding everything", zap.Error(err))
	}

	disc, err := material.Discover(opt.Reader, "", material.DiscoverOptions{
		Edition:      opt.Input.Edition,
		AutoMaterial: opt.AutoMaterial,
		SkipDir:      func(dir string) bool { return matches(opt.Exclude, dir) },
	})
	if err != nil {
		return nil, err
	}

	var jobs []job
	for _, m := range disc.Materials {
		jobs = append(jobs, job{mat: m})
	}
	for _, f := range disc.Untracked {
		if p.excluded(f) {
			continue
		}
		jobs = append(jobs, job{file: f})
	}
	p.log.Info("publishing",
		zap.Int("materials", len(disc.Materials)),
		zap.Int("files", len(jobs)-len(disc.Materials)),
		zap.String("format", opt.Output.Name),
		zap.Int("workers", opt.Workers))

	start := time.Now()
	results := p.runPool(ctx, jobs, func(j job) Result {
		if j.mat != nil {
			return p.publishMaterial(ctx, j.mat, disc.Sources[j.mat.DocumentPath()], record[j.name()])
		}
		return p.publishFile(ctx, j.file)
	})

	sum := &Summary{Results: results}
	for _, r := range results {
		switch r.State {
		case UpToDate:
			sum.UpToDate++
		case Failed:
			sum.Failed++
			p.log.Warn("publish failed", zap.String("name", r.Name), zap.String("error", r.Error))
		case Canceled:
			sum.Canceled++
		case Published:
			if r.Kind == KindMaterial {
				sum.Published++
			} else {
				sum.Copied++
			}
		}
	}

	if err := ctx.Err(); err != nil {
		sum.Elapsed = time.Since(start)
		return sum, err
	}

	if opt.Output.Edition == encoding.Java {
		if err := p.writePackMeta(); err != nil {
			return sum, err
		}
	}
	if err := WriteManifest(opt.Writer, opt.ManifestPath, results); err != nil {
		return sum, err
	}

	sum.Elapsed = time.Since(start)
	p.log.Info("publish complete",
		zap.Int("published", sum.Published),
		zap.Int("up_to_date", sum.UpToDate),
		zap.Int("copied", sum.Copied),
		zap.Int("failed", sum.Failed),
		zap.Int("canceled", sum.Canceled),
		zap.Duration("elapsed", sum.Elapsed))
	return sum, nil
}

// runPool processes jobs with a fixed number of workers and reports progress
// while it runs.
func (p *Publisher) runPool(ctx context.Context, jobs []job, fn func(job) Result) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64
	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(p.opt.ProgressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				n := processed.Load()
				if n > 0 {
					rate := float64(n) / time.Since(start).Seconds()
					p.log.Info("progress",
						zap.Int64("done", n),
						zap.Int("total", total),
						zap.String("rate", fmt.Sprintf("%.1f/s", rate)))
				}
			}
		}
	}()

	idx := make(chan int, p.opt.Workers*2)
	var wg sync.WaitGroup
	for w := 0; w < p.opt.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				if ctx.Err() != nil {
					results[i] = Result{Name: jobs[i].name(), Kind: jobs[i].kind(), State: Canceled}
				} else {
					results[i] = fn(jobs[i])
				}
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		idx <- i
	}
	close(idx)

	wg.Wait()
	close(done)
	return results
}

func (j job) kind() Kind {
	if j.mat != nil {
		return KindMaterial
	}
	return KindFile
}
