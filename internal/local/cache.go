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

package local

import (
	"os"
	"sync"

	"github.com/go-json-experiment/json"
	"github.com/pkg/errors"
	"plume.dev/plume-go/engine"
)

// cacheCell retains a computed dataset at a storage level. Deserialized
// memory levels keep the partition slices as-is. Serialized and disk levels
// round trip elements through the record codec, so elements must survive
// that encoding (the same constraint sequence files have); numbers come back
// as float64. Replication is meaningless in a single process and ignored.
type cacheCell struct {
	level engine.StorageLevel

	mu    sync.Mutex
	ready bool
	mem   [][]any
	ser   [][]byte
	files []string
}

// load returns the retained partitions, computing and storing them on first
// use. Concurrent actions on the same cached collection serialize here and
// then read the same stored data.
func (c *cacheCell) load(e *Engine, compute func() ([][]any, error)) ([][]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		parts, err := compute()
		if err != nil {
			return nil, err
		}
		if err := c.store(e, parts); err != nil {
			return nil, err
		}
		c.ready = true
	}
	return c.fetch()
}

func (c *cacheCell) store(e *Engine, parts [][]any) error {
	if c.level.UseMemory && !c.level.Serialized {
		c.mem = parts
		return nil
	}
	encoded := make([][]byte, len(parts))
	for i, part := range parts {
		b, err := json.Marshal(part)
		if err != nil {
			return errors.Wrap(err, "local: serializing cached partition")
		}
		encoded[i] = b
	}
	if c.level.UseMemory {
		c.ser = encoded
		return nil
	}
	c.files = make([]string, len(encoded))
	for i, b := range encoded {
		f, err := os.CreateTemp(e.tmpDir, "cache-*.json")
		if err != nil {
			return errors.Wrap(err, "local: spilling cached partition")
		}
		if _, err := f.Write(b); err != nil {
			f.Close()
			return errors.Wrap(err, "local: spilling cached partition")
		}
		if err := f.Close(); err != nil {
			return errors.Wrap(err, "local: spilling cached partition")
		}
		c.files[i] = f.Name()
	}
	return nil
}

func (c *cacheCell) fetch() ([][]any, error) {
	if c.mem != nil {
		return c.mem, nil
	}
	encoded := c.ser
	if encoded == nil {
		encoded = make([][]byte, len(c.files))
		for i, name := range c.files {
			b, err := os.ReadFile(name)
			if err != nil {
				return nil, errors.Wrap(err, "local: reading spilled partition")
			}
			encoded[i] = b
		}
	}
	parts := make([][]any, len(encoded))
	for i, b := range encoded {
		var part []any
		if err := json.Unmarshal(b, &part); err != nil {
			return nil, errors.Wrap(err, "local: deserializing cached partition")
		}
		parts[i] = part
	}
	return parts, nil
}
