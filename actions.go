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

package plume

import (
	"context"

	"github.com/pkg/errors"
	"plume.dev/plume-go/fns"
	"plume.dev/plume-go/tuple"
)

// Actions force computation of the pipeline composed so far and block until
// the engine finishes or fails. A failure inside a user closure surfaces as
// an *engine.ExecError wrapping the closure's panic or error.

// Collect returns every element of the collection, in partition order.
func Collect[E Element](ctx context.Context, d DColl[E]) ([]E, error) {
	vs, err := d.ctx.eng.Collect(ctx, d.h)
	if err != nil {
		return nil, err
	}
	out := make([]E, len(vs))
	for i, v := range vs {
		out[i] = as[E](v)
	}
	return out, nil
}

// Count returns the number of elements.
func Count[E Element](ctx context.Context, d DColl[E]) (int64, error) {
	return d.ctx.eng.Count(ctx, d.h)
}

// Take returns up to n elements, in partition order.
func Take[E Element](ctx context.Context, d DColl[E], n int) ([]E, error) {
	vs, err := d.ctx.eng.Take(ctx, d.h, n)
	if err != nil {
		return nil, err
	}
	out := make([]E, len(vs))
	for i, v := range vs {
		out[i] = as[E](v)
	}
	return out, nil
}

// First returns the first element, failing on an empty collection.
func First[E Element](ctx context.Context, d DColl[E]) (E, error) {
	vs, err := Take(ctx, d, 1)
	if err != nil {
		var zero E
		return zero, err
	}
	if len(vs) == 0 {
		var zero E
		return zero, errors.New("plume: first of an empty collection")
	}
	return vs[0], nil
}

// Reduce merges all elements with f, which must be associative and
// commutative. Reducing an empty collection fails.
func Reduce[E Element](ctx context.Context, d DColl[E], f func(E, E) E) (E, error) {
	spec := d.ctx.bind(fns.KindReduce, "reduce", fns.Reducer(func(a, b any) any {
		return f(as[E](a), as[E](b))
	}))
	v, err := d.ctx.eng.Reduce(ctx, d.h, spec)
	if err != nil {
		var zero E
		return zero, err
	}
	return as[E](v), nil
}

// Aggregate folds the collection into an accumulator of a different type:
// each partition folds from zero with seqOp, and the per-partition results
// merge with combOp, again from zero. zero must be a neutral element.
func Aggregate[A, E Element](ctx context.Context, d DColl[E], zero A, seqOp func(A, E) A, combOp func(A, A) A) (A, error) {
	seq := d.ctx.bind(fns.KindReduce, "aggregateSeq", fns.Reducer(func(a, v any) any {
		return seqOp(as[A](a), as[E](v))
	}))
	comb := d.ctx.bind(fns.KindReduce, "aggregateComb", fns.Reducer(func(a, b any) any {
		return combOp(as[A](a), as[A](b))
	}))
	v, err := d.ctx.eng.Aggregate(ctx, d.h, zero, seq, comb)
	if err != nil {
		var zeroA A
		return zeroA, err
	}
	return as[A](v), nil
}

// Fold is Aggregate with a single closure and an accumulator of the element
// type.
func Fold[E Element](ctx context.Context, d DColl[E], zero E, f func(E, E) E) (E, error) {
	return Aggregate(ctx, d, zero, f, f)
}

// Foreach applies f to every element for its side effect. Partitions run
// concurrently; f must be safe for concurrent use.
func Foreach[E Element](ctx context.Context, d DColl[E], f func(E)) error {
	spec := d.ctx.bind(fns.KindForeach, "foreach", fns.Effector(func(v any) {
		f(as[E](v))
	}))
	return d.ctx.eng.Foreach(ctx, d.h, spec)
}

// CountByKey counts the elements of each key of a pair-shaped collection and
// returns the counts as a driver-local map.
func CountByKey(ctx context.Context, d DColl[tuple.Seq]) (map[any]int64, error) {
	ones := Map(d, func(s tuple.Seq) tuple.Seq {
		p, err := tuple.ToPair(s)
		if err != nil {
			panic(err)
		}
		return tuple.Seq{p.Key, int64(1)}
	})
	counted := ReduceByKey(ones, func(a, b any) any {
		return as[int64](a) + as[int64](b)
	})
	seqs, err := Collect(ctx, counted)
	if err != nil {
		return nil, err
	}
	out := make(map[any]int64, len(seqs))
	for _, s := range seqs {
		p, err := tuple.ToPair(s)
		if err != nil {
			return nil, err
		}
		out[p.Key] = as[int64](p.Value)
	}
	return out, nil
}
