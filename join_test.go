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
	"testing"

	"github.com/google/go-cmp/cmp"
	"plume.dev/plume-go/engine"
	"plume.dev/plume-go/tuple"
)

func TestJoin(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	left := Parallelize(c, []tuple.Seq{{"a", 1}, {"b", 2}}, 1)
	right := Parallelize(c, []tuple.Seq{{"a", "x"}, {"a", "y"}, {"c", "z"}}, 1)

	got, err := Collect(ctx, Join(left, right))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := []tuple.Seq{
		{"a", tuple.Seq{1, "x"}},
		{"a", tuple.Seq{1, "y"}},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("joined sequences mismatch (-want +got):\n%v", d)
	}
}

func TestLeftOuterJoin(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	left := Parallelize(c, []tuple.Seq{{"a", 1}, {"b", 2}}, 1)
	right := Parallelize(c, []tuple.Seq{{"a", "x"}}, 1)

	got, err := Collect(ctx, LeftOuterJoin(left, right))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := []tuple.Seq{
		{"a", tuple.Seq{1, "x"}},
		{"b", tuple.Seq{2, nil}},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("joined sequences mismatch (-want +got):\n%v", d)
	}
}

func TestJoinOnUnhashableKey(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()

	left := Parallelize(c, []tuple.Seq{{"a", 1}}, 1)
	right := Parallelize(c, []tuple.Seq{{[]int{1, 2}, "x"}}, 1)

	_, err := Collect(ctx, Join(left, right))
	if err == nil {
		t.Fatalf("Join with an unhashable right-side key succeeded")
	}
	var execErr *engine.ExecError
	if !errors.As(err, &execErr) {
		t.Errorf("Collect error = %v, want *engine.ExecError", err)
	}
}

func TestJoinAcrossContexts(t *testing.T) {
	c1 := newTestContext(t)
	c2, err := New("local", t.Name()+"-other")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c2.Stop() })

	left := Parallelize(c1, []tuple.Seq{{"a", 1}}, 1)
	right := Parallelize(c2, []tuple.Seq{{"a", 2}}, 1)

	defer func() {
		if recover() == nil {
			t.Errorf("Join across contexts did not panic")
		}
	}()
	Join(left, right)
}
