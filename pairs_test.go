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
	"testing"

	"github.com/google/go-cmp/cmp"
	"plume.dev/plume-go/tuple"
)

// pairsToMap gathers a collected pair-shaped result into a map, since
// shuffled output has no inter-partition order guarantee.
func pairsToMap(t *testing.T, seqs []tuple.Seq) map[any]any {
	t.Helper()
	out := map[any]any{}
	for _, s := range seqs {
		p, err := tuple.ToPair(s)
		if err != nil {
			t.Fatalf("collected element %v: %v", s, err)
		}
		out[p.Key] = p.Value
	}
	return out
}

func TestMapToPairShape(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	words := Parallelize(c, []string{"ab", "c"}, 1)
	pairs := MapToPair(words, func(s string) (any, any) { return s, len(s) })

	got, err := Collect(ctx, pairs)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := []tuple.Seq{{"ab", 2}, {"c", 1}}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("pair sequences mismatch (-want +got):\n%v", d)
	}
}

func TestReduceByKey(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	words := Parallelize(c, []string{"a", "b", "a", "b", "a"})
	ones := MapToPair(words, func(s string) (any, any) { return s, 1 })
	counts := ReduceByKey(ones, Sum[int]())

	got, err := Collect(ctx, counts)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := map[any]any{"a": 3, "b": 2}
	if d := cmp.Diff(want, pairsToMap(t, got)); d != "" {
		t.Errorf("reduced values mismatch (-want +got):\n%v", d)
	}
}

func TestGroupByKey(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	pairs := Parallelize(c, []tuple.Seq{{"a", 1}, {"b", 2}, {"a", 3}}, 1)
	grouped := GroupByKey(pairs)

	got, err := Collect(ctx, grouped)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := map[any]any{"a": []any{1, 3}, "b": []any{2}}
	if d := cmp.Diff(want, pairsToMap(t, got)); d != "" {
		t.Errorf("grouped values mismatch (-want +got):\n%v", d)
	}
}

func TestGroupBy(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	nums := Parallelize(c, []int{1, 2, 3, 4, 5}, 1)
	byParity := GroupBy(nums, func(v int) any { return v % 2 })

	got, err := Collect(ctx, byParity)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := map[any]any{1: []any{1, 3, 5}, 0: []any{2, 4}}
	if d := cmp.Diff(want, pairsToMap(t, got)); d != "" {
		t.Errorf("groups mismatch (-want +got):\n%v", d)
	}
}

func TestCombineByKey(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	pairs := Parallelize(c, []tuple.Seq{{"a", 1}, {"a", 2}, {"b", 3}, {"a", 4}}, 2)
	combined := CombineByKey(pairs,
		func(v any) any { return []any{v} },
		func(acc, v any) any { return append(acc.([]any), v) },
		func(a, b any) any { return append(a.([]any), b.([]any)...) },
	)

	got, err := Collect(ctx, combined)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	gotMap := pairsToMap(t, got)
	if vs := gotMap["a"].([]any); len(vs) != 3 {
		t.Errorf("combiner for a holds %v, want 3 values", vs)
	}
	if d := cmp.Diff([]any{3}, gotMap["b"]); d != "" {
		t.Errorf("combiner for b mismatch (-want +got):\n%v", d)
	}
}

func TestKeyByAndPairUp(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	words := Parallelize(c, []string{"ab", "cde"}, 1)

	keyed, err := Collect(ctx, KeyBy(words, func(s string) any { return len(s) }))
	if err != nil {
		t.Fatalf("Collect keyed: %v", err)
	}
	if d := cmp.Diff([]tuple.Seq{{2, "ab"}, {3, "cde"}}, keyed); d != "" {
		t.Errorf("keyed sequences mismatch (-want +got):\n%v", d)
	}

	promoted, err := Collect(ctx, PairUp(words))
	if err != nil {
		t.Fatalf("Collect promoted: %v", err)
	}
	if d := cmp.Diff([]tuple.Seq{{"ab", "ab"}, {"cde", "cde"}}, promoted); d != "" {
		t.Errorf("promoted sequences mismatch (-want +got):\n%v", d)
	}
}

func TestCountByKey(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	words := Parallelize(c, []string{"a", "b", "a"})
	pairs := MapToPair(words, func(s string) (any, any) { return s, s })

	got, err := CountByKey(ctx, pairs)
	if err != nil {
		t.Fatalf("CountByKey: %v", err)
	}
	want := map[any]int64{"a": 2, "b": 1}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("counts mismatch (-want +got):\n%v", d)
	}
}
