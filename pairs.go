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
	"plume.dev/plume-go/engine"
	"plume.dev/plume-go/fns"
	"plume.dev/plume-go/tuple"
)

// Pair-shaped collections are DColl[tuple.Seq]: every element is the
// 2-sequence [key, value]. Engine shuffles consume that shape and emit
// native pairs, so each pair-shaped operation ends with one of the
// marshalling maps registered below to restore the sequence shape.

func init() {
	fns.Register("plume.pairToSeq", func(map[string]any) any {
		return fns.Mapper(func(v any) any { return tuple.ToSeq(v.(tuple.Pair)) })
	})
	fns.Register("plume.pairToSeqNested", func(map[string]any) any {
		return fns.Mapper(func(v any) any { return tuple.ToSeqNested(v.(tuple.Pair)) })
	})
}

func seqShape(c *Context, h engine.Handle) DColl[tuple.Seq] {
	spec := &fns.Spec{Kind: fns.KindMap, Name: "plume.pairToSeq"}
	return derive[tuple.Seq](c, c.eng.Apply(h, engine.Op{Kind: engine.OpMap, Fn: spec}))
}

func nestedSeqShape(c *Context, h engine.Handle) DColl[tuple.Seq] {
	spec := &fns.Spec{Kind: fns.KindMap, Name: "plume.pairToSeqNested"}
	return derive[tuple.Seq](c, c.eng.Apply(h, engine.Op{Kind: engine.OpMap, Fn: spec}))
}

// MapToPair derives a pair-shaped collection: f yields each element's key and
// value.
func MapToPair[E Element](in DColl[E], f func(E) (key, value any)) DColl[tuple.Seq] {
	spec := in.ctx.bind(fns.KindPair, "pair", fns.Pairer(func(v any) tuple.Pair {
		k, val := f(as[E](v))
		return tuple.Pair{Key: k, Value: val}
	}))
	return seqShape(in.ctx, in.apply(engine.Op{Kind: engine.OpMap, Fn: spec}))
}

// KeyBy keys every element by f(element), keeping the element as the value.
func KeyBy[E Element](in DColl[E], f func(E) any) DColl[tuple.Seq] {
	return MapToPair(in, func(e E) (any, any) { return f(e), e })
}

// PairUp promotes every element to a pair of itself, so a plain collection
// can enter pair-shaped operations.
func PairUp[E Element](in DColl[E]) DColl[tuple.Seq] {
	spec := in.ctx.bind(fns.KindPair, "pair", fns.Pairer(tuple.Promote))
	return seqShape(in.ctx, in.apply(engine.Op{Kind: engine.OpMap, Fn: spec}))
}

// ReduceByKey merges the values of each key with f. f must be associative
// and commutative: the values of one key may be merged in any grouping.
// Keys must be comparable with ==.
func ReduceByKey(in DColl[tuple.Seq], f func(any, any) any) DColl[tuple.Seq] {
	spec := in.ctx.bind(fns.KindReduce, "reduceByKey", fns.Reducer(f))
	return seqShape(in.ctx, in.apply(engine.Op{Kind: engine.OpReduceByKey, Fn: spec}))
}

// GroupByKey gathers the values of each key into a slice, in encounter
// order. Prefer ReduceByKey or CombineByKey when the grouped values are only
// folded again.
func GroupByKey(in DColl[tuple.Seq]) DColl[tuple.Seq] {
	return seqShape(in.ctx, in.apply(engine.Op{Kind: engine.OpGroupByKey}))
}

// GroupBy groups the elements of a plain collection by f(element).
func GroupBy[E Element](in DColl[E], f func(E) any) DColl[tuple.Seq] {
	return GroupByKey(KeyBy(in, f))
}

// CombineByKey folds the values of each key through the three-closure
// combine protocol: create builds a combiner from a key's first value,
// mergeValue folds further values of the same partition into it, and
// mergeCombiners merges the per-partition combiners.
func CombineByKey(in DColl[tuple.Seq], create func(any) any, mergeValue, mergeCombiners func(any, any) any) DColl[tuple.Seq] {
	op := engine.Op{
		Kind:           engine.OpCombineByKey,
		Fn:             in.ctx.bind(fns.KindMap, "combineCreate", fns.Mapper(create)),
		MergeValue:     in.ctx.bind(fns.KindReduce, "combineValue", fns.Reducer(mergeValue)),
		MergeCombiners: in.ctx.bind(fns.KindReduce, "combineMerge", fns.Reducer(mergeCombiners)),
	}
	return seqShape(in.ctx, in.apply(op))
}
