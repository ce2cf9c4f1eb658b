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

import "plume.dev/plume-go/engine"

// Element covers the types a DColl may carry.
type Element interface {
	any
}

// DColl is an immutable distributed collection of elements of type E, split
// into partitions owned by the engine. Transformations compose new
// collections lazily; nothing is computed until an action forces it.
// A DColl is a small value and is safe to share across goroutines.
type DColl[E Element] struct {
	ctx *Context
	h   engine.Handle
}

// Context returns the pipeline context the collection belongs to.
func (d DColl[E]) Context() *Context { return d.ctx }

func derive[V Element](c *Context, h engine.Handle) DColl[V] {
	return DColl[V]{ctx: c, h: h}
}

func (d DColl[E]) apply(op engine.Op) engine.Handle {
	return d.ctx.eng.Apply(d.h, op)
}

// Persist marks the collection for retention at the given storage level, so
// the first action computes it and later actions reuse the stored result.
// Like every transformation it is lazy.
func (d DColl[E]) Persist(level StorageLevel) DColl[E] {
	return derive[E](d.ctx, d.ctx.eng.Persist(d.h, level))
}

// Cache is Persist at the deserialized in-memory level.
func (d DColl[E]) Cache() DColl[E] {
	return d.Persist(MemoryOnly)
}

// Coalesce repartitions the collection into n partitions, preserving element
// order. Values below one are treated as one.
func (d DColl[E]) Coalesce(n int) DColl[E] {
	if n < 1 {
		n = 1
	}
	return derive[E](d.ctx, d.apply(engine.Op{Kind: engine.OpCoalesce, Partitions: n}))
}

// Distinct removes duplicate elements, keeping the first occurrence of each.
// Elements must be comparable with ==.
func (d DColl[E]) Distinct() DColl[E] {
	return derive[E](d.ctx, d.apply(engine.Op{Kind: engine.OpDistinct}))
}

// as recovers a typed element from the engine's dynamic representation. A nil
// stays the zero value, so closures over concrete types survive
// null-equivalent elements such as the absent side of a left outer join.
func as[E Element](v any) E {
	if v == nil {
		var zero E
		return zero
	}
	return v.(E)
}
