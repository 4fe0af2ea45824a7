package publish

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"pixelgraph/internal/graph"
	"pixelgraph/internal/material"
)

func (p *Publisher) context(mat *material.Properties) *graph.Context {
	return &graph.Context{
		Reader:      p.opt.Reader,
		Writer:      p.opt.Writer,
		Input:       p.opt.Input,
		Output:      p.opt.Output,
		Profile:     p.opt.Profile,
		Material:    mat,
		Images:      p.images,
		OutputLocal: p.opt.OutputLocal,
		Logger:      p.log,
	}
}

// publishMaterial builds one material unless the outputs recorded by the
// previous run are all still current.
func (p *Publisher) publishMaterial(ctx context.Context, mat *material.Properties, sources, previous []string) Result {
	res := Result{Name: mat.DocumentPath(), Kind: KindMaterial}
	c := p.context(mat)

	if p.upToDate(sources, previous) {
		res.State = UpToDate
		res.Written = previous
		p.log.Debug("material up to date", zap.String("material", mat.DisplayName()))
		return res
	}

	b, err := graph.NewBuilder(c)
	if err != nil {
		return p.fail(res, err)
	}
	defer b.Close()

	out, err := b.BuildMaterial(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			res.State = Canceled
			return res
		}
		return p.fail(res, err)
	}
	res.State = Published
	res.Written = out.Written
	p.log.Debug("material published",
		zap.String("material", mat.DisplayName()),
		zap.Int("files", len(out.Written)),
		zap.Int("skipped", len(out.Skipped)))
	return res
}

func (p *Publisher) fail(res Result, err error) Result {
	res.State = Failed
	res.Error = err.Error()
	return res
}

// upToDate reports whether every output is present and newer than the
// profile and every source. The oldest output is the reference. No outputs,
// a missing output or an unknown source time forces a rebuild.
func (p *Publisher) upToDate(sources, outputs []string) bool {
	if len(outputs) == 0 {
		return false
	}
	var dest time.Time
	for i, o := range outputs {
		t, ok := p.opt.Writer.WriteTime(o)
		if !ok {
			return false
		}
		if i == 0 || t.Before(dest) {
			dest = t
		}
	}
	if !p.opt.ProfileTime.IsZero() && p.opt.ProfileTime.After(dest) {
		return false
	}
	for _, s := range sources {
		t, ok := p.opt.Reader.WriteTime(s)
		if !ok || t.After(dest) {
			return false
		}
	}
	return true
}
