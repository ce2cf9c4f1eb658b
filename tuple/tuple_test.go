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

package tuple

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPairSeqRoundTrip(t *testing.T) {
	pairs := []Pair{
		{Key: "a", Value: 1},
		{Key: 3, Value: "c"},
		{Key: nil, Value: nil},
		{Key: "k", Value: []any{1, 2, 3}},
	}
	for _, want := range pairs {
		got, err := ToPair(ToSeq(want))
		if err != nil {
			t.Fatalf("ToPair(ToSeq(%v)) failed: %v", want, err)
		}
		if d := cmp.Diff(want, got); d != "" {
			t.Errorf("round trip of %v diverged (-want, +got):\n%v", want, d)
		}
	}
}

func TestSeqPairRoundTrip(t *testing.T) {
	seqs := []Seq{
		{"a", 1},
		{nil, "x"},
		{[]any{"nested", "key"}, 42},
	}
	for _, want := range seqs {
		p, err := ToPair(want)
		if err != nil {
			t.Fatalf("ToPair(%v) failed: %v", want, err)
		}
		if d := cmp.Diff(want, ToSeq(p)); d != "" {
			t.Errorf("round trip of %v diverged (-want, +got):\n%v", want, d)
		}
	}
}

func TestToPairShapeError(t *testing.T) {
	for _, bad := range []Seq{nil, {}, {1}, {1, 2, 3}, {1, 2, 3, 4}} {
		_, err := ToPair(bad)
		var shape *ShapeError
		if !errors.As(err, &shape) {
			t.Errorf("ToPair(%v) = %v, want *ShapeError", bad, err)
			continue
		}
		if got, want := shape.Len, len(bad); got != want {
			t.Errorf("ShapeError.Len = %v, want %v", got, want)
		}
	}
}

func TestToSeqNested(t *testing.T) {
	join := Pair{Key: "a", Value: Pair{Key: 1, Value: "x"}}
	if d := cmp.Diff(Seq{"a", []any{1, "x"}}, ToSeqNested(join)); d != "" {
		t.Errorf("nested flatten diverged (-want, +got):\n%v", d)
	}
	// Only one level is flattened.
	deep := Pair{Key: "a", Value: Pair{Key: 1, Value: Pair{Key: 2, Value: 3}}}
	if d := cmp.Diff(Seq{"a", []any{1, Pair{Key: 2, Value: 3}}}, ToSeqNested(deep)); d != "" {
		t.Errorf("deep flatten diverged (-want, +got):\n%v", d)
	}
	plain := Pair{Key: "a", Value: 1}
	if d := cmp.Diff(Seq{"a", 1}, ToSeqNested(plain)); d != "" {
		t.Errorf("plain value flatten diverged (-want, +got):\n%v", d)
	}
}

func TestPromote(t *testing.T) {
	p := Promote("elem")
	if p.Key != "elem" || p.Value != "elem" {
		t.Errorf("Promote(elem) = %v, want identity pairing", p)
	}
}
