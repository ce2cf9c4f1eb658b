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
)

// Map derives a collection by applying f to every element. Per-partition
// element order is preserved.
func Map[E, V Element](in DColl[E], f func(E) V) DColl[V] {
	spec := in.ctx.bind(fns.KindMap, "map", fns.Mapper(func(v any) any {
		return f(as[E](v))
	}))
	return derive[V](in.ctx, in.apply(engine.Op{Kind: engine.OpMap, Fn: spec}))
}

// MapNamed is Map with a closure registered under name via fns.Register,
// rebuilt on workers from the given captured environment.
func MapNamed[E, V Element](in DColl[E], name string, env map[string]any) DColl[V] {
	spec := &fns.Spec{Kind: fns.KindMap, Name: name, Env: env}
	return derive[V](in.ctx, in.apply(engine.Op{Kind: engine.OpMap, Fn: spec}))
}

// FlatMap derives a collection from the concatenation of the slices f yields
// per element.
func FlatMap[E, V Element](in DColl[E], f func(E) []V) DColl[V] {
	spec := in.ctx.bind(fns.KindFlatMap, "flatMap", fns.FlatMapper(func(v any) []any {
		vs := f(as[E](v))
		out := make([]any, len(vs))
		for i, x := range vs {
			out[i] = x
		}
		return out
	}))
	return derive[V](in.ctx, in.apply(engine.Op{Kind: engine.OpFlatMap, Fn: spec}))
}

// FlatMapNamed is FlatMap with a registered closure.
func FlatMapNamed[E, V Element](in DColl[E], name string, env map[string]any) DColl[V] {
	spec := &fns.Spec{Kind: fns.KindFlatMap, Name: name, Env: env}
	return derive[V](in.ctx, in.apply(engine.Op{Kind: engine.OpFlatMap, Fn: spec}))
}

// Filter keeps the elements for which f returns a truthy value, under the
// truthiness rules of fns.Truthy. Returning a bool keeps the obvious meaning.
func Filter[E Element](in DColl[E], f func(E) any) DColl[E] {
	spec := in.ctx.bind(fns.KindFilter, "filter", fns.Predicate(func(v any) bool {
		return fns.Truthy(f(as[E](v)))
	}))
	return derive[E](in.ctx, in.apply(engine.Op{Kind: engine.OpFilter, Fn: spec}))
}

// FilterNamed is Filter with a registered closure.
func FilterNamed[E Element](in DColl[E], name string, env map[string]any) DColl[E] {
	spec := &fns.Spec{Kind: fns.KindFilter, Name: name, Env: env}
	return derive[E](in.ctx, in.apply(engine.Op{Kind: engine.OpFilter, Fn: spec}))
}

// Glom collapses each partition into a single slice element, preserving the
// partition's element order.
func Glom[E Element](in DColl[E]) DColl[[]E] {
	glommed := derive[[]any](in.ctx, in.apply(engine.Op{Kind: engine.OpGlom}))
	return Map(glommed, func(part []any) []E {
		out := make([]E, len(part))
		for i, v := range part {
			out[i] = as[E](v)
		}
		return out
	})
}
