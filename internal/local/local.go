// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package local is an in-process implementation of the engine contract, used
// for local[N] masters, development, and tests.
//
// Datasets are slices of partitions evaluated lazily from an op graph.
// Partitions run in parallel on a bounded worker pool, and every function
// spec is round-tripped through its wire encoding before it is resolved, so
// closures that aren't self-contained fail here the same way they would fail
// on a real remote worker.
package local

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"plume.dev/plume-go/engine"
	"plume.dev/plume-go/fns"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

// Options configure a local engine.
type Options struct {
	// Parallelism bounds concurrent partition tasks and is the default
	// partition count for sources. Zero means one.
	Parallelism int
	// TextEncoding is the IANA name of the character encoding of text
	// sources. Empty means UTF-8.
	TextEncoding string
}

// Engine evaluates collection pipelines in-process.
type Engine struct {
	log      *slog.Logger
	resolver *fns.Resolver
	opts     Options
	tmpDir   string

	mu      sync.Mutex
	buckets map[string]*blob.Bucket
	stopped bool
}

// New returns a running local engine. Stop releases its spill directory and
// open buckets.
func New(log *slog.Logger, resolver *fns.Resolver, opts Options) (*Engine, error) {
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	tmp, err := os.MkdirTemp("", "plume-local-*")
	if err != nil {
		return nil, errors.Wrap(err, "local: creating spill dir")
	}
	return &Engine{
		log:      log,
		resolver: resolver,
		opts:     opts,
		tmpDir:   tmp,
		buckets:  map[string]*blob.Bucket{},
	}, nil
}

var _ engine.Engine = (*Engine)(nil)

const (
	srcMem      = "mem"
	srcText     = "text"
	srcSequence = "sequence"
)

type source struct {
	kind  string
	elems []any
	parts int
	uri   string
}

// node is both the graph vertex and the engine.Handle for the dataset it
// produces.
type node struct {
	id     string
	src    *source
	op     engine.Op
	parent *node
	cache  *cacheCell
}

func (n *node) ID() string { return n.id }

func newNode() *node { return &node{id: uuid.NewString()} }

func (e *Engine) TextFile(uri string) engine.Handle {
	n := newNode()
	n.src = &source{kind: srcText, uri: uri}
	return n
}

func (e *Engine) SequenceFile(uri string) engine.Handle {
	n := newNode()
	n.src = &source{kind: srcSequence, uri: uri}
	return n
}

func (e *Engine) Materialize(elems []any, partitions int) engine.Handle {
	if partitions <= 0 {
		partitions = e.opts.Parallelism
	}
	n := newNode()
	n.src = &source{kind: srcMem, elems: elems, parts: partitions}
	return n
}

func (e *Engine) Apply(in engine.Handle, op engine.Op) engine.Handle {
	n := newNode()
	n.op = op
	n.parent = in.(*node)
	return n
}

func (e *Engine) Persist(h engine.Handle, level engine.StorageLevel) engine.Handle {
	n := newNode()
	n.parent = h.(*node)
	n.cache = &cacheCell{level: level}
	return n
}

// runJob evaluates a handle for an action, with start/finish logging.
func (e *Engine) runJob(ctx context.Context, h engine.Handle, action string) ([][]any, error) {
	jobID := uuid.NewString()
	start := time.Now()
	e.log.Debug("job started", "job", jobID, "action", action)
	parts, err := e.eval(ctx, h.(*node))
	if err != nil {
		e.log.Error("job failed", "job", jobID, "action", action, "elapsed", time.Since(start), "err", err)
		return nil, err
	}
	e.log.Info("job finished", "job", jobID, "action", action, "partitions", len(parts), "elapsed", time.Since(start))
	return parts, nil
}

func (e *Engine) Collect(ctx context.Context, h engine.Handle) ([]any, error) {
	parts, err := e.runJob(ctx, h, "collect")
	if err != nil {
		return nil, err
	}
	return flatten(parts), nil
}

func (e *Engine) Take(ctx context.Context, h engine.Handle, n int) ([]any, error) {
	parts, err := e.runJob(ctx, h, "take")
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, n)
	for _, part := range parts {
		for _, v := range part {
			if len(out) == n {
				return out, nil
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func (e *Engine) Count(ctx context.Context, h engine.Handle) (int64, error) {
	parts, err := e.runJob(ctx, h, "count")
	if err != nil {
		return 0, err
	}
	var total int64
	for _, part := range parts {
		total += int64(len(part))
	}
	return total, nil
}

func (e *Engine) Reduce(ctx context.Context, h engine.Handle, f *fns.Spec) (any, error) {
	parts, err := e.runJob(ctx, h, "reduce")
	if err != nil {
		return nil, err
	}
	// Per-partition reduction in parallel, then a final merge of the
	// partials on the driver.
	partials, err := e.mapPartitions(ctx, "reduce", parts, func(part []any) ([]any, error) {
		if len(part) == 0 {
			return nil, nil
		}
		red, err := e.reducer(ctx, "reduce", f)
		if err != nil {
			return nil, err
		}
		acc := part[0]
		for _, v := range part[1:] {
			acc = red(acc, v)
		}
		return []any{acc}, nil
	})
	if err != nil {
		return nil, err
	}
	flat := flatten(partials)
	if len(flat) == 0 {
		return nil, errors.New("local: reduce of an empty collection")
	}
	red, err := e.reducer(ctx, "reduce", f)
	if err != nil {
		return nil, err
	}
	return runScalarTask("reduce", func() (any, error) {
		acc := flat[0]
		for _, v := range flat[1:] {
			acc = red(acc, v)
		}
		return acc, nil
	})
}

func (e *Engine) Aggregate(ctx context.Context, h engine.Handle, zero any, seqOp, combOp *fns.Spec) (any, error) {
	parts, err := e.runJob(ctx, h, "aggregate")
	if err != nil {
		return nil, err
	}
	partials, err := e.mapPartitions(ctx, "aggregate", parts, func(part []any) ([]any, error) {
		seq, err := e.reducer(ctx, "aggregate", seqOp)
		if err != nil {
			return nil, err
		}
		acc := zero
		for _, v := range part {
			acc = seq(acc, v)
		}
		return []any{acc}, nil
	})
	if err != nil {
		return nil, err
	}
	comb, err := e.reducer(ctx, "aggregate", combOp)
	if err != nil {
		return nil, err
	}
	return runScalarTask("aggregate", func() (any, error) {
		acc := zero
		for _, partial := range flatten(partials) {
			acc = comb(acc, partial)
		}
		return acc, nil
	})
}

func (e *Engine) Foreach(ctx context.Context, h engine.Handle, f *fns.Spec) error {
	parts, err := e.runJob(ctx, h, "foreach")
	if err != nil {
		return err
	}
	_, err = e.mapPartitions(ctx, "foreach", parts, func(part []any) ([]any, error) {
		fn, err := e.callable(ctx, "foreach", f)
		if err != nil {
			return nil, err
		}
		eff := fn.(fns.Effector)
		for _, v := range part {
			eff(v)
		}
		return nil, nil
	})
	return err
}

func (e *Engine) Save(ctx context.Context, h engine.Handle, uri string, format engine.SaveFormat) error {
	parts, err := e.runJob(ctx, h, "save")
	if err != nil {
		return err
	}
	return e.writeParts(ctx, uri, parts, format)
}

func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return nil
	}
	e.stopped = true
	var firstErr error
	for url, b := range e.buckets {
		if err := b.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "local: closing bucket %s", url)
		}
	}
	if err := os.RemoveAll(e.tmpDir); err != nil && firstErr == nil {
		firstErr = errors.Wrap(err, "local: removing spill dir")
	}
	e.log.Info("engine stopped")
	return firstErr
}

// callable rebuilds the closure a spec describes, round-tripping the spec
// through its wire form first. Failures surface as execution failures of the
// running operation.
func (e *Engine) callable(ctx context.Context, opName string, spec *fns.Spec) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shipped, err := fns.Roundtrip(spec)
	if err != nil {
		return nil, &engine.ExecError{Op: opName, Err: err}
	}
	fn, err := e.resolver.Build(shipped)
	if err != nil {
		return nil, &engine.ExecError{Op: opName, Err: err}
	}
	return fn, nil
}

func (e *Engine) reducer(ctx context.Context, opName string, spec *fns.Spec) (fns.Reducer, error) {
	fn, err := e.callable(ctx, opName, spec)
	if err != nil {
		return nil, err
	}
	return fn.(fns.Reducer), nil
}

func flatten(parts [][]any) []any {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make([]any, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
