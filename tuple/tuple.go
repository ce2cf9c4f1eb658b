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

// Package tuple converts between the engine's native key/value pair and the
// uniform sequence-of-values representation exposed to API callers.
//
// Both directions are total and order preserving: the key and value positions
// of a pair are never swapped, and round tripping a pair through its sequence
// form yields the identical pair. The only failing conversion is building a
// pair from a sequence that doesn't have exactly two elements.
package tuple

import "fmt"

// Pair is the engine's native two-element key/value tuple.
type Pair struct {
	Key   any `json:"k"`
	Value any `json:"v"`
}

// Seq is an ordered, fixed-length sequence of values. Simple pairs marshal to
// a 2-sequence; join results marshal to a 2-sequence whose second element is
// itself a 2-sequence: [key, [leftValue, rightValue]].
type Seq = []any

// ToSeq converts a pair to its 2-sequence form. Always succeeds.
func ToSeq(p Pair) Seq {
	return Seq{p.Key, p.Value}
}

// ToSeqNested flattens a pair whose value is itself a pair, as produced by
// join-style operations, into [outerKey, [innerKey, innerValue]]. Only one
// level is flattened; a pair with a plain value converts as ToSeq does.
func ToSeqNested(p Pair) Seq {
	if inner, ok := p.Value.(Pair); ok {
		return Seq{p.Key, ToSeq(inner)}
	}
	return ToSeq(p)
}

// ToPair converts a 2-sequence back into a pair. Sequences of any other
// length fail with a *ShapeError.
func ToPair(s Seq) (Pair, error) {
	if len(s) != 2 {
		return Pair{}, &ShapeError{Len: len(s)}
	}
	return Pair{Key: s[0], Value: s[1]}, nil
}

// Promote pairs an element with itself, so plain collections can enter
// pair-shaped operations uniformly. The promotion is reversed by projecting
// the key or value once the pair-shaped operation completes.
func Promote(v any) Pair {
	return Pair{Key: v, Value: v}
}

// ShapeError reports a sequence whose arity doesn't match the pair contract.
type ShapeError struct {
	Len int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("tuple: pair sequence must have exactly 2 elements, got %d", e.Len)
}
