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
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"plume.dev/plume-go/engine"
	"plume.dev/plume-go/tuple"
)

func TestReduce(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	nums := Parallelize(c, []int{1, 2, 3, 4})
	got, err := Reduce(ctx, nums, func(a, b int) int { return a + b })
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if got != 10 {
		t.Errorf("Reduce = %v, want 10", got)
	}
}

func TestReduceEmpty(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	nums := Parallelize(c, []int{})
	if got, err := Reduce(ctx, nums, func(a, b int) int { return a + b }); err == nil {
		t.Errorf("Reduce of empty collection = %v, want error", got)
	}
}

func TestFold(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	nums := Parallelize(c, []int{1, 2, 3})
	got, err := Fold(ctx, nums, 0, func(a, b int) int { return a + b })
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if got != 6 {
		t.Errorf("Fold = %v, want 6", got)
	}
}

func TestAggregate(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	words := Parallelize(c, []string{"ab", "cde", "f"})
	got, err := Aggregate(ctx, words, 0,
		func(acc int, s string) int { return acc + len(s) },
		func(a, b int) int { return a + b },
	)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if got != 6 {
		t.Errorf("Aggregate = %v, want 6", got)
	}
}

func TestForeach(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	var total atomic.Int64
	nums := Parallelize(c, []int{1, 2, 3})
	if err := Foreach(ctx, nums, func(v int) { total.Add(int64(v)) }); err != nil {
		t.Fatalf("Foreach: %v", err)
	}
	if total.Load() != 6 {
		t.Errorf("side-effect total = %v, want 6", total.Load())
	}
}

func TestPersistComputesOnce(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	var calls atomic.Int64
	nums := Parallelize(c, []int{1, 2, 3})
	counted := Map(nums, func(v int) int {
		calls.Add(1)
		return v * 10
	}).Cache()

	want := []int{10, 20, 30}
	for i := 0; i < 2; i++ {
		got, err := Collect(ctx, counted)
		if err != nil {
			t.Fatalf("Collect #%d: %v", i+1, err)
		}
		if d := cmp.Diff(want, got); d != "" {
			t.Errorf("Collect #%d mismatch (-want +got):\n%v", i+1, d)
		}
	}
	if calls.Load() != 3 {
		t.Errorf("mapper ran %v times, want 3", calls.Load())
	}
}

func TestClosurePanicFailsAction(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	nums := Parallelize(c, []int{1, 2, 3})
	exploding := Map(nums, func(v int) int {
		if v == 2 {
			panic("boom")
		}
		return v
	})

	_, err := Collect(ctx, exploding)
	if err == nil {
		t.Fatalf("Collect over a panicking closure succeeded")
	}
	var execErr *engine.ExecError
	if !errors.As(err, &execErr) {
		t.Errorf("Collect error = %v, want *engine.ExecError", err)
	}
}

func TestPairOpOnMisshapenElements(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	bad := Parallelize(c, []tuple.Seq{{"a", 1, "extra"}}, 1)
	_, err := Collect(ctx, ReduceByKey(bad, Sum[int]()))
	if err == nil {
		t.Fatalf("ReduceByKey over a 3-sequence succeeded")
	}
	var shapeErr *tuple.ShapeError
	if !errors.As(err, &shapeErr) {
		t.Errorf("error = %v, want *tuple.ShapeError in the chain", err)
	}
	if shapeErr != nil && shapeErr.Len != 3 {
		t.Errorf("ShapeError.Len = %v, want 3", shapeErr.Len)
	}
}

func TestUnresolvableClosureFailsAction(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	nums := Parallelize(c, []int{1})
	unknown := MapNamed[int, int](nums, "plumetest.unregistered", nil)

	var execErr *engine.ExecError
	if _, err := Collect(ctx, unknown); !errors.As(err, &execErr) {
		t.Errorf("Collect error = %v, want *engine.ExecError", err)
	}
}
