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

	"plume.dev/plume-go/engine"
)

// Storage locations are bucket URIs, e.g. file:///data/words or
// mem://scratch/words. Saves write one part object per partition under the
// location; reads accept either a single object or a saved part set.

// TextFile reads a stored text object as a collection of its lines, decoded
// per the context's text encoding. The read is lazy; a missing object fails
// the first action.
func TextFile(c *Context, uri string) DColl[string] {
	return derive[string](c, c.eng.TextFile(uri))
}

// SequenceFile reads records saved with SaveAsSequenceFile. Records come
// back as the serializer's generic values: numbers as float64, objects as
// map[string]any.
func SequenceFile(c *Context, uri string) DColl[any] {
	return derive[any](c, c.eng.SequenceFile(uri))
}

// Parallelize distributes an in-memory slice as a collection, split into the
// given partition count or the context default.
func Parallelize[E Element](c *Context, elems []E, partitions ...int) DColl[E] {
	vs := make([]any, len(elems))
	for i, e := range elems {
		vs[i] = e
	}
	n := c.conf.DefaultPartitions
	if len(partitions) > 0 {
		n = partitions[0]
	}
	return derive[E](c, c.eng.Materialize(vs, n))
}

// SaveAsTextFile writes one line of text per element under uri, one part
// object per partition.
func SaveAsTextFile[E Element](ctx context.Context, d DColl[E], uri string) error {
	return d.ctx.eng.Save(ctx, d.h, uri, engine.SaveText)
}

// SaveAsSequenceFile writes the collection in the engine's serialized record
// format, readable back with SequenceFile. Elements must survive the record
// codec.
func SaveAsSequenceFile[E Element](ctx context.Context, d DColl[E], uri string) error {
	return d.ctx.eng.Save(ctx, d.h, uri, engine.SaveSequence)
}
