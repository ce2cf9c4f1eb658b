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

// Package fns bridges user closures to the fixed function-object contracts
// the execution engine invokes on workers.
//
// Every user closure is carried across the process boundary as a [Spec]: a
// registered constructor name plus an explicit map of captured variables.
// The worker side rebuilds the callable with [Resolver.Build] and [Adapt],
// which coerces the closure into one of the contract types below, checking
// arity eagerly where possible.
package fns

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
	"plume.dev/plume-go/tuple"
)

// Kind names the contract a closure is wrapped into.
type Kind string

const (
	KindMap     Kind = "map"     // one argument, one result
	KindFlatMap Kind = "flatMap" // one argument, zero or more results
	KindFilter  Kind = "filter"  // one argument, truthy-coerced result
	KindReduce  Kind = "reduce"  // two arguments, one result
	KindPair    Kind = "pair"    // one argument, (key, value) result
	KindForeach Kind = "foreach" // one argument, result discarded
	KindCompare Kind = "compare" // two arguments, ordering signal result
)

// The contract types invoked by the engine. Each wraps a single user closure
// together with whatever environment it captured.
type (
	// Mapper is invoked once per input element and yields one output.
	Mapper func(any) any
	// FlatMapper yields zero or more outputs per input element; the engine
	// flattens the per-element slices into one output collection.
	FlatMapper func(any) []any
	// Predicate decides whether an element is retained.
	Predicate func(any) bool
	// Reducer merges two values into one. Associativity is the caller's
	// responsibility; it is not enforced here.
	Reducer func(any, any) any
	// Pairer produces the engine's native pair from an element.
	Pairer func(any) tuple.Pair
	// Effector is invoked for its side effect only.
	Effector func(any)
	// Comparator returns a negative, zero, or positive ordering signal.
	Comparator func(any, any) int
)

// Combiner is the three-closure combine-by-key protocol: create-combiner
// (V -> C), merge-value (C, V -> C), and merge-combiners (C, C -> C).
type Combiner struct {
	Create         Mapper
	MergeValue     Reducer
	MergeCombiners Reducer
}

// ArityError reports a closure whose argument count doesn't match the
// contract it was wrapped into. This is a caller programming error.
type ArityError struct {
	Kind      Kind
	Got, Want int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("fns: %v contract takes %d argument(s), closure takes %d", e.Kind, e.Want, e.Got)
}

func arity(kind Kind) int {
	switch kind {
	case KindReduce, KindCompare:
		return 2
	}
	return 1
}

// Adapt coerces fn into the contract type for kind. Closures already of the
// contract type pass through unchanged; any other func is wrapped via
// reflection, with arity mismatches reported eagerly as *ArityError. Results
// of filter closures are coerced with [Truthy], so closures returning
// non-boolean truthy values still behave as filters.
func Adapt(kind Kind, fn any) (any, error) {
	switch f := fn.(type) {
	case Mapper:
		if kind == KindMap {
			return f, nil
		}
	case FlatMapper:
		if kind == KindFlatMap {
			return f, nil
		}
	case Predicate:
		if kind == KindFilter {
			return f, nil
		}
	case Reducer:
		if kind == KindReduce {
			return f, nil
		}
	case Pairer:
		if kind == KindPair {
			return f, nil
		}
	case Effector:
		if kind == KindForeach {
			return f, nil
		}
	case Comparator:
		if kind == KindCompare {
			return f, nil
		}
	}

	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return nil, errors.Errorf("fns: %v contract needs a func, got %T", kind, fn)
	}
	rt := rv.Type()
	if rt.IsVariadic() || rt.NumIn() != arity(kind) {
		return nil, &ArityError{Kind: kind, Got: rt.NumIn(), Want: arity(kind)}
	}

	switch kind {
	case KindMap:
		if rt.NumOut() != 1 {
			return nil, errors.Errorf("fns: map closure must return one value, returns %d", rt.NumOut())
		}
		return Mapper(func(v any) any { return call1(rv, v) }), nil
	case KindFlatMap:
		if rt.NumOut() != 1 {
			return nil, errors.Errorf("fns: flatMap closure must return one value, returns %d", rt.NumOut())
		}
		return FlatMapper(func(v any) []any {
			res := call1(rv, v)
			if res == nil {
				return nil
			}
			sv := reflect.ValueOf(res)
			if sv.Kind() != reflect.Slice && sv.Kind() != reflect.Array {
				panic(fmt.Sprintf("fns: flatMap closure returned %T, want a slice", res))
			}
			out := make([]any, sv.Len())
			for i := range out {
				out[i] = sv.Index(i).Interface()
			}
			return out
		}), nil
	case KindFilter:
		if rt.NumOut() != 1 {
			return nil, errors.Errorf("fns: filter closure must return one value, returns %d", rt.NumOut())
		}
		return Predicate(func(v any) bool { return Truthy(call1(rv, v)) }), nil
	case KindReduce:
		if rt.NumOut() != 1 {
			return nil, errors.Errorf("fns: reduce closure must return one value, returns %d", rt.NumOut())
		}
		return Reducer(func(a, b any) any { return call2(rv, a, b) }), nil
	case KindPair:
		switch rt.NumOut() {
		case 1:
			return Pairer(func(v any) tuple.Pair {
				res := call1(rv, v)
				p, ok := res.(tuple.Pair)
				if !ok {
					panic(fmt.Sprintf("fns: pair closure returned %T, want tuple.Pair or (key, value)", res))
				}
				return p
			}), nil
		case 2:
			return Pairer(func(v any) tuple.Pair {
				outs := rv.Call([]reflect.Value{argOf(rt.In(0), v)})
				return tuple.Pair{Key: outs[0].Interface(), Value: outs[1].Interface()}
			}), nil
		default:
			return nil, errors.Errorf("fns: pair closure must return a pair or (key, value), returns %d values", rt.NumOut())
		}
	case KindForeach:
		return Effector(func(v any) {
			rv.Call([]reflect.Value{argOf(rt.In(0), v)})
		}), nil
	case KindCompare:
		if rt.NumOut() != 1 || !isIntKind(rt.Out(0).Kind()) {
			return nil, errors.Errorf("fns: compare closure must return an integer ordering signal")
		}
		return Comparator(func(a, b any) int {
			outs := rv.Call([]reflect.Value{argOf(rt.In(0), a), argOf(rt.In(1), b)})
			return int(outs[0].Int())
		}), nil
	}
	return nil, errors.Errorf("fns: unknown contract kind %q", kind)
}

func call1(rv reflect.Value, v any) any {
	outs := rv.Call([]reflect.Value{argOf(rv.Type().In(0), v)})
	return outs[0].Interface()
}

func call2(rv reflect.Value, a, b any) any {
	rt := rv.Type()
	outs := rv.Call([]reflect.Value{argOf(rt.In(0), a), argOf(rt.In(1), b)})
	return outs[0].Interface()
}

// argOf builds a call argument, substituting a typed zero for nil so that
// closures over concrete types can still receive null-equivalent values.
func argOf(t reflect.Type, v any) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	return reflect.ValueOf(v)
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}
