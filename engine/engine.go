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

// Package engine declares the boundary with the distributed collection
// engine: the execution substrate that schedules tasks, manages partitions,
// and recomputes on failure.
//
// The API layer composes lazy operations onto opaque handles and hands the
// engine serializable function specs; scheduling, shuffling, and fault
// tolerance are entirely the engine's concern. Actions block until the
// engine finishes or fails, and failures propagate unchanged; no recovery
// or retry happens above this boundary.
package engine

import (
	"context"
	"fmt"

	"plume.dev/plume-go/fns"
)

// Handle is an opaque reference to a partitioned dataset owned by an engine.
// Handles are immutable: operations derive new handles and never mutate an
// existing one, so a handle may be shared freely across goroutines.
type Handle interface {
	ID() string
}

// OpKind names a lazy transformation primitive.
type OpKind string

const (
	OpMap           OpKind = "map"
	OpFlatMap       OpKind = "flatMap"
	OpFilter        OpKind = "filter"
	OpReduceByKey   OpKind = "reduceByKey"
	OpGroupByKey    OpKind = "groupByKey"
	OpCombineByKey  OpKind = "combineByKey"
	OpSortByKey     OpKind = "sortByKey"
	OpJoin          OpKind = "join"
	OpLeftOuterJoin OpKind = "leftOuterJoin"
	OpDistinct      OpKind = "distinct"
	OpCoalesce      OpKind = "coalesce"
	OpGlom          OpKind = "glom"
)

// Op describes one lazy transformation. Exactly which fields are meaningful
// depends on Kind; unused fields are zero.
type Op struct {
	Kind OpKind

	// Fn is the primary closure: the mapper, predicate, reducer, or the
	// create-combiner of a combine-by-key. Nil for closure-free ops.
	Fn *fns.Spec
	// MergeValue and MergeCombiners complete the combine-by-key triple.
	MergeValue     *fns.Spec
	MergeCombiners *fns.Spec
	// Comparator orders keys for sort-by-key; nil selects the natural order.
	Comparator *fns.Spec
	// Ascending is the sort direction for sort-by-key.
	Ascending bool
	// Partitions is the target partition count for coalesce.
	Partitions int
	// Other is the second input of join-style ops.
	Other Handle
}

// SaveFormat selects the on-storage representation of a save operation.
// There is no format negotiation: the format is the operation itself.
type SaveFormat string

const (
	// SaveText writes one line of text per element.
	SaveText SaveFormat = "text"
	// SaveSequence writes the engine's native serialized record format.
	SaveSequence SaveFormat = "sequence"
)

// Engine is the execution substrate the collection API drives.
//
// Source and Apply calls never block: they compose handles. Action methods
// block the caller until the distributed computation completes or fails.
type Engine interface {
	// TextFile returns a handle over the lines of a stored text object.
	// The read happens when an action forces it; a missing or unreadable
	// object fails that action.
	TextFile(uri string) Handle
	// SequenceFile returns a handle over records stored in the engine's
	// native serialized format.
	SequenceFile(uri string) Handle
	// Materialize returns a handle over an in-memory sequence split into
	// the given number of partitions.
	Materialize(elems []any, partitions int) Handle

	// Apply composes a transformation onto a handle.
	Apply(in Handle, op Op) Handle
	// Persist marks a handle for retention at the given storage level.
	// It does not trigger computation.
	Persist(h Handle, level StorageLevel) Handle

	Collect(ctx context.Context, h Handle) ([]any, error)
	Take(ctx context.Context, h Handle, n int) ([]any, error)
	Count(ctx context.Context, h Handle) (int64, error)
	Reduce(ctx context.Context, h Handle, f *fns.Spec) (any, error)
	// Aggregate folds each partition from zero with seqOp, then merges the
	// per-partition results with combOp, again starting from zero.
	Aggregate(ctx context.Context, h Handle, zero any, seqOp, combOp *fns.Spec) (any, error)
	Foreach(ctx context.Context, h Handle, f *fns.Spec) error
	Save(ctx context.Context, h Handle, uri string, format SaveFormat) error

	// Stop releases all engine-side resources. Handles from this engine are
	// invalid afterwards.
	Stop() error
}

// ExecError reports a failure raised by a user closure while executing on a
// worker. It propagates unchanged as the failure of the triggering action.
type ExecError struct {
	Op  string
	Err error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("engine: %s failed: %v", e.Op, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }
