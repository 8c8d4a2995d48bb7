// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remap

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"rsc.io/remap/classfile"
)

// A Unit is one class to remap and the name of the file it came from.
type Unit struct {
	Path  string
	Class *classfile.Class
	Err   error // set by Run when the class could not be remapped
}

// Stats counts the outcome of a Run.
type Stats struct {
	Done   int64
	Failed int64
}

// Run remaps every unit's class in place using up to jobs goroutines
// (all CPUs when jobs <= 0). Classes are independent: a class that fails
// records its error in its Unit and the others carry on. Cancelling ctx
// stops Run from starting more classes; classes already finished stay
// valid. The returned error combines every per-class error with the
// context's error, if any.
func Run(ctx context.Context, r *Resolver, cfg Config, units []*Unit, jobs int) (Stats, error) {
	var done, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(jobs)
	t := NewClassTransformer(r, cfg)
	for _, u := range units {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := t.Transform(u.Class); err != nil {
				u.Err = fmt.Errorf("%s: %w", u.Path, err)
				failed.Inc()
				return nil
			}
			done.Inc()
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	for _, u := range units {
		err = multierr.Append(err, u.Err)
	}
	return Stats{Done: done.Load(), Failed: failed.Load()}, err
}
