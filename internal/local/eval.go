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

package local

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"plume.dev/plume-go/engine"
	"plume.dev/plume-go/fns"
	"plume.dev/plume-go/tuple"
)

// eval produces the partitions of a node, recursively evaluating parents.
// Narrow ops keep the parent's partitioning and per-partition element order;
// wide ops shuffle.
func (e *Engine) eval(ctx context.Context, n *node) ([][]any, error) {
	if n.cache != nil {
		return n.cache.load(e, func() ([][]any, error) { return e.eval(ctx, n.parent) })
	}
	if n.src != nil {
		return e.evalSource(ctx, n.src)
	}
	in, err := e.eval(ctx, n.parent)
	if err != nil {
		return nil, err
	}

	op := n.op
	switch op.Kind {
	case engine.OpMap:
		return e.mapPartitions(ctx, "map", in, func(part []any) ([]any, error) {
			fn, err := e.callable(ctx, "map", op.Fn)
			if err != nil {
				return nil, err
			}
			out := make([]any, 0, len(part))
			switch m := fn.(type) {
			case fns.Mapper:
				for _, v := range part {
					out = append(out, m(v))
				}
			case fns.Pairer:
				for _, v := range part {
					out = append(out, m(v))
				}
			default:
				return nil, errors.Errorf("map spec resolved to %T", fn)
			}
			return out, nil
		})
	case engine.OpFilter:
		return e.mapPartitions(ctx, "filter", in, func(part []any) ([]any, error) {
			fn, err := e.callable(ctx, "filter", op.Fn)
			if err != nil {
				return nil, err
			}
			keep := fn.(fns.Predicate)
			var out []any
			for _, v := range part {
				if keep(v) {
					out = append(out, v)
				}
			}
			return out, nil
		})
	case engine.OpFlatMap:
		return e.mapPartitions(ctx, "flatMap", in, func(part []any) ([]any, error) {
			fn, err := e.callable(ctx, "flatMap", op.Fn)
			if err != nil {
				return nil, err
			}
			fm := fn.(fns.FlatMapper)
			var out []any
			for _, v := range part {
				out = append(out, fm(v)...)
			}
			return out, nil
		})
	case engine.OpGlom:
		return e.mapPartitions(ctx, "glom", in, func(part []any) ([]any, error) {
			return []any{append([]any(nil), part...)}, nil
		})
	case engine.OpDistinct:
		return runPartsTask("distinct", func() ([][]any, error) {
			seen := map[any]bool{}
			var out []any
			for _, v := range flatten(in) {
				if !seen[v] {
					seen[v] = true
					out = append(out, v)
				}
			}
			return splitChunks(out, len(in)), nil
		})
	case engine.OpCoalesce:
		return splitChunks(flatten(in), op.Partitions), nil
	case engine.OpReduceByKey:
		return e.reduceByKey(ctx, op, in)
	case engine.OpGroupByKey:
		return e.groupByKey(ctx, in)
	case engine.OpCombineByKey:
		return e.combineByKey(ctx, op, in)
	case engine.OpSortByKey:
		return e.sortByKey(ctx, op, in)
	case engine.OpJoin, engine.OpLeftOuterJoin:
		other, err := e.eval(ctx, op.Other.(*node))
		if err != nil {
			return nil, err
		}
		return e.join(ctx, op, in, other)
	}
	return nil, errors.Errorf("local: unknown op kind %q", op.Kind)
}

// mapPartitions runs a task per partition on a bounded pool. A task panic is
// captured as an execution failure and aborts the job.
func (e *Engine) mapPartitions(ctx context.Context, opName string, in [][]any, task func(part []any) ([]any, error)) ([][]any, error) {
	out := make([][]any, len(in))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Parallelism)
	for i, part := range in {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := runTask(opName, func() ([]any, error) { return task(part) })
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func runTask(opName string, f func() ([]any, error)) (res []any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = execErr(opName, r)
		}
	}()
	return f()
}

func runPartsTask(opName string, f func() ([][]any, error)) (res [][]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = execErr(opName, r)
		}
	}()
	return f()
}

func runScalarTask(opName string, f func() (any, error)) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = execErr(opName, r)
		}
	}()
	return f()
}

func execErr(opName string, r any) error {
	if err, ok := r.(error); ok {
		return &engine.ExecError{Op: opName, Err: err}
	}
	return &engine.ExecError{Op: opName, Err: errors.Errorf("%v", r)}
}

// pairsOf gathers the elements of a pair-shaped dataset in partition order,
// converting each 2-sequence into the native pair. Elements of any other
// shape fail the operation.
func pairsOf(opName string, in [][]any) ([]tuple.Pair, error) {
	var out []tuple.Pair
	for _, part := range in {
		for _, v := range part {
			seq, ok := v.(tuple.Seq)
			if !ok {
				return nil, &engine.ExecError{Op: opName, Err: errors.Errorf("element %T is not pair-shaped", v)}
			}
			p, err := tuple.ToPair(seq)
			if err != nil {
				return nil, &engine.ExecError{Op: opName, Err: err}
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func (e *Engine) reduceByKey(ctx context.Context, op engine.Op, in [][]any) ([][]any, error) {
	pairs, err := pairsOf("reduceByKey", in)
	if err != nil {
		return nil, err
	}
	fn, err := e.callable(ctx, "reduceByKey", op.Fn)
	if err != nil {
		return nil, err
	}
	red := fn.(fns.Reducer)
	return runPartsTask("reduceByKey", func() ([][]any, error) {
		acc := map[any]any{}
		var keys []any
		for _, p := range pairs {
			if cur, ok := acc[p.Key]; ok {
				acc[p.Key] = red(cur, p.Value)
			} else {
				acc[p.Key] = p.Value
				keys = append(keys, p.Key)
			}
		}
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, tuple.Pair{Key: k, Value: acc[k]})
		}
		return partitionByKey(out, len(in)), nil
	})
}

func (e *Engine) groupByKey(ctx context.Context, in [][]any) ([][]any, error) {
	pairs, err := pairsOf("groupByKey", in)
	if err != nil {
		return nil, err
	}
	return runPartsTask("groupByKey", func() ([][]any, error) {
		groups := map[any][]any{}
		var keys []any
		for _, p := range pairs {
			if _, ok := groups[p.Key]; !ok {
				keys = append(keys, p.Key)
			}
			groups[p.Key] = append(groups[p.Key], p.Value)
		}
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, tuple.Pair{Key: k, Value: groups[k]})
		}
		return partitionByKey(out, len(in)), nil
	})
}

func (e *Engine) combineByKey(ctx context.Context, op engine.Op, in [][]any) ([][]any, error) {
	create, err := e.callable(ctx, "combineByKey", op.Fn)
	if err != nil {
		return nil, err
	}
	mergeValue, err := e.reducer(ctx, "combineByKey", op.MergeValue)
	if err != nil {
		return nil, err
	}
	mergeCombiners, err := e.reducer(ctx, "combineByKey", op.MergeCombiners)
	if err != nil {
		return nil, err
	}
	comb := fns.Combiner{
		Create:         create.(fns.Mapper),
		MergeValue:     mergeValue,
		MergeCombiners: mergeCombiners,
	}

	// Phase one: combine within each partition.
	combined, err := e.mapPartitions(ctx, "combineByKey", in, func(part []any) ([]any, error) {
		acc := map[any]any{}
		var keys []any
		for _, v := range part {
			seq, ok := v.(tuple.Seq)
			if !ok {
				return nil, errors.Errorf("element %T is not pair-shaped", v)
			}
			p, err := tuple.ToPair(seq)
			if err != nil {
				return nil, err
			}
			if cur, ok := acc[p.Key]; ok {
				acc[p.Key] = comb.MergeValue(cur, p.Value)
			} else {
				acc[p.Key] = comb.Create(p.Value)
				keys = append(keys, p.Key)
			}
		}
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, tuple.Pair{Key: k, Value: acc[k]})
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	// Phase two: merge partial combiners across partitions.
	return runPartsTask("combineByKey", func() ([][]any, error) {
		acc := map[any]any{}
		var keys []any
		for _, part := range combined {
			for _, v := range part {
				p := v.(tuple.Pair)
				if cur, ok := acc[p.Key]; ok {
					acc[p.Key] = comb.MergeCombiners(cur, p.Value)
				} else {
					acc[p.Key] = p.Value
					keys = append(keys, p.Key)
				}
			}
		}
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, tuple.Pair{Key: k, Value: acc[k]})
		}
		return partitionByKey(out, len(in)), nil
	})
}

func (e *Engine) sortByKey(ctx context.Context, op engine.Op, in [][]any) ([][]any, error) {
	pairs, err := pairsOf("sortByKey", in)
	if err != nil {
		return nil, err
	}
	compare := fns.Comparator(fns.NaturalCompare)
	if op.Comparator != nil {
		fn, err := e.callable(ctx, "sortByKey", op.Comparator)
		if err != nil {
			return nil, err
		}
		compare = fn.(fns.Comparator)
	}
	return runPartsTask("sortByKey", func() ([][]any, error) {
		sort.SliceStable(pairs, func(i, j int) bool {
			c := compare(pairs[i].Key, pairs[j].Key)
			if op.Ascending {
				return c < 0
			}
			return c > 0
		})
		out := make([]any, len(pairs))
		for i, p := range pairs {
			out[i] = p
		}
		// Contiguous chunks keep the global order across partitions.
		return splitChunks(out, len(in)), nil
	})
}

// join matches left and right pairs on key equality. Output mirrors the left
// side's partitioning and order. Inner joins drop unmatched left elements;
// left outer joins keep them with a nil in the right-value slot.
func (e *Engine) join(ctx context.Context, op engine.Op, left, right [][]any) ([][]any, error) {
	opName := string(op.Kind)
	// Building the lookup hashes right-side keys, so an unhashable key must
	// fail the action the way it does in the other shuffles.
	var lookup map[any][]any
	if _, err := runScalarTask(opName, func() (any, error) {
		rightPairs, err := pairsOf(opName, right)
		if err != nil {
			return nil, err
		}
		lookup = make(map[any][]any, len(rightPairs))
		for _, p := range rightPairs {
			lookup[p.Key] = append(lookup[p.Key], p.Value)
		}
		return nil, nil
	}); err != nil {
		return nil, err
	}
	outer := op.Kind == engine.OpLeftOuterJoin
	return e.mapPartitions(ctx, opName, left, func(part []any) ([]any, error) {
		var out []any
		for _, v := range part {
			seq, ok := v.(tuple.Seq)
			if !ok {
				return nil, errors.Errorf("element %T is not pair-shaped", v)
			}
			p, err := tuple.ToPair(seq)
			if err != nil {
				return nil, err
			}
			matches := lookup[p.Key]
			if len(matches) == 0 {
				if outer {
					out = append(out, tuple.Pair{Key: p.Key, Value: tuple.Pair{Key: p.Value, Value: nil}})
				}
				continue
			}
			for _, rv := range matches {
				out = append(out, tuple.Pair{Key: p.Key, Value: tuple.Pair{Key: p.Value, Value: rv}})
			}
		}
		return out, nil
	})
}

// partitionByKey spreads shuffled pairs over n partitions by key hash.
func partitionByKey(pairs []any, n int) [][]any {
	if n <= 0 {
		n = 1
	}
	out := make([][]any, n)
	for _, v := range pairs {
		p := v.(tuple.Pair)
		i := keyHash(p.Key) % n
		out[i] = append(out[i], v)
	}
	return out
}

func keyHash(k any) int {
	h := fnv.New32a()
	fmt.Fprintf(h, "%v", k)
	return int(h.Sum32() & 0x7fffffff)
}

// splitChunks slices elems into n contiguous partitions, preserving order.
// Trailing partitions may be empty.
func splitChunks(elems []any, n int) [][]any {
	if n <= 0 {
		n = 1
	}
	out := make([][]any, n)
	base := len(elems) / n
	rem := len(elems) % n
	idx := 0
	for i := range out {
		size := base
		if i < rem {
			size++
		}
		out[i] = elems[idx : idx+size]
		idx += size
	}
	return out
}
