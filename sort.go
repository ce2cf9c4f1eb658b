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

// SortOption configures SortByKey.
type SortOption interface {
	applySort(*sortOpts)
}

type sortOpts struct {
	descending bool
	comparator func(any, any) int
}

type sortOptFn func(*sortOpts)

func (f sortOptFn) applySort(o *sortOpts) { f(o) }

// Ascending sorts keys in increasing order. This is the default.
func Ascending() SortOption {
	return sortOptFn(func(o *sortOpts) { o.descending = false })
}

// Descending sorts keys in decreasing order.
func Descending() SortOption {
	return sortOptFn(func(o *sortOpts) { o.descending = true })
}

// WithComparator orders keys with cmp instead of the natural key order. cmp
// returns a negative, zero, or positive ordering signal, and is shipped to
// workers like any other closure.
func WithComparator(cmp func(any, any) int) SortOption {
	return sortOptFn(func(o *sortOpts) { o.comparator = cmp })
}

// SortByKey globally sorts a pair-shaped collection by key. The sort is
// stable: equal keys keep their encounter order. Without WithComparator,
// keys order naturally per fns.NaturalCompare.
func SortByKey(in DColl[tuple.Seq], opts ...SortOption) DColl[tuple.Seq] {
	var o sortOpts
	for _, opt := range opts {
		opt.applySort(&o)
	}
	op := engine.Op{Kind: engine.OpSortByKey, Ascending: !o.descending}
	if o.comparator != nil {
		op.Comparator = in.ctx.bind(fns.KindCompare, "compare", fns.Comparator(o.comparator))
	}
	return seqShape(in.ctx, in.apply(op))
}
