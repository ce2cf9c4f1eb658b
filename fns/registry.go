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

package fns

import (
	"sync"

	"github.com/go-json-experiment/json"
	"github.com/pkg/errors"
)

// Spec is the self-contained, serializable form of a wrapped closure: the
// contract it satisfies, a code identifier understood by both driver and
// worker runtimes, and an explicit map of captured variables. It carries no
// references to driver-local mutable state.
type Spec struct {
	Kind Kind           `json:"kind"`
	Name string         `json:"name"`
	Env  map[string]any `json:"env,omitempty"`
}

// Ctor rebuilds a closure from its captured environment. The returned value
// is coerced into its contract with [Adapt] by the resolver.
type Ctor func(env map[string]any) any

var (
	regMu    sync.RWMutex
	registry = map[string]Ctor{}
)

// Register makes a closure constructor resolvable by name on any process
// that links this package. Register from init or main, before pipelines run.
// Registering the same name twice panics.
func Register(name string, ctor Ctor) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("fns: duplicate registration of " + name)
	}
	registry[name] = ctor
}

// Resolver rebuilds callables from specs for a single pipeline. Raw lambdas
// passed directly to the collection API live in a driver-local table keyed by
// generated op names; they resolve only in-process. Registered constructors
// resolve anywhere.
type Resolver struct {
	mu   sync.RWMutex
	meta map[string]any
}

func NewResolver() *Resolver {
	return &Resolver{meta: map[string]any{}}
}

// Bind attaches a driver-local lightweight closure under key.
func (r *Resolver) Bind(key string, fn any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meta[key] = fn
}

// Build reconstructs the callable a spec describes and coerces it to the
// spec's contract.
func (r *Resolver) Build(spec *Spec) (any, error) {
	if spec == nil {
		return nil, errors.New("fns: nil function spec")
	}
	if r != nil {
		r.mu.RLock()
		fn, ok := r.meta[spec.Name]
		r.mu.RUnlock()
		if ok {
			return Adapt(spec.Kind, fn)
		}
	}
	regMu.RLock()
	ctor, ok := registry[spec.Name]
	regMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("fns: no function registered as %q", spec.Name)
	}
	return Adapt(spec.Kind, ctor(spec.Env))
}

// Roundtrip passes a spec through its wire encoding, the way shipping it to
// a worker would. Engines use this before resolving so that a spec that
// isn't self-contained fails locally the same way it would fail remotely.
func Roundtrip(spec *Spec) (*Spec, error) {
	b, err := json.Marshal(spec)
	if err != nil {
		return nil, errors.Wrap(err, "fns: encoding function spec")
	}
	var out Spec
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, errors.Wrap(err, "fns: decoding function spec")
	}
	return &out, nil
}
