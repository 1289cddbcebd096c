package pipeline

import (
	"errors"
	"os"
)

// pipe links stage i to stage i+1. The parent holds both ends only until
// the stage consuming each end has been launched.
type pipe struct {
	r *os.File
	w *os.File
}

func (p *pipe) closeReader() error {
	if p.r == nil {
		return nil
	}
	err := p.r.Close()
	p.r = nil
	return err
}

func (p *pipe) closeWriter() error {
	if p.w == nil {
		return nil
	}
	err := p.w.Close()
	p.w = nil
	return err
}

// pipes owns every end the parent still holds. Close is idempotent, so it
// can both be deferred and called early.
type pipes []*pipe

func openPipes(n int, newPipe func() (*os.File, *os.File, error)) (pipes, error) {
	ps := make(pipes, 0, n)
	for i := 0; i < n; i++ {
		r, w, err := newPipe()
		if err != nil {
			ps.Close()
			return nil, &PipeError{Index: i, Err: err}
		}
		ps = append(ps, &pipe{r: r, w: w})
	}
	return ps, nil
}

func (ps pipes) Close() error {
	var errs []error
	for _, p := range ps {
		errs = append(errs, p.closeReader(), p.closeWriter())
	}
	return errors.Join(errs...)
}
