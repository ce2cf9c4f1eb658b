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
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/go-json-experiment/json"
	"github.com/pkg/errors"
	"gocloud.dev/blob"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
	"plume.dev/plume-go/engine"
)

// Locations are bucket URIs: scheme://bucket-path/object-name. The final
// path segment is the object key; saves append one part object per
// partition under that key.

// evalSource reads a source into partitions.
func (e *Engine) evalSource(ctx context.Context, src *source) ([][]any, error) {
	switch src.kind {
	case srcMem:
		return splitChunks(src.elems, src.parts), nil
	case srcText:
		lineParts, single, err := e.readLines(ctx, src.uri)
		if err != nil {
			return nil, err
		}
		parts := make([][]any, len(lineParts))
		for i, lines := range lineParts {
			parts[i] = make([]any, len(lines))
			for j, line := range lines {
				parts[i][j] = line
			}
		}
		if single {
			return splitChunks(flatten(parts), e.opts.Parallelism), nil
		}
		return parts, nil
	case srcSequence:
		lineParts, single, err := e.readLines(ctx, src.uri)
		if err != nil {
			return nil, err
		}
		parts := make([][]any, len(lineParts))
		for i, lines := range lineParts {
			parts[i] = make([]any, len(lines))
			for j, line := range lines {
				var v any
				if err := json.Unmarshal([]byte(line), &v); err != nil {
					return nil, errors.Wrapf(err, "local: decoding record from %s", src.uri)
				}
				parts[i][j] = v
			}
		}
		if single {
			return splitChunks(flatten(parts), e.opts.Parallelism), nil
		}
		return parts, nil
	}
	return nil, errors.Errorf("local: unknown source kind %q", src.kind)
}

// readLines reads either a single object (single=true, one slice) or its
// part objects, one slice per part in key order.
func (e *Engine) readLines(ctx context.Context, uri string) (parts [][]string, single bool, err error) {
	bucketURL, key, err := splitURI(uri)
	if err != nil {
		return nil, false, err
	}
	bucket, err := e.bucketFor(ctx, bucketURL)
	if err != nil {
		return nil, false, err
	}
	enc, err := e.textEncoding()
	if err != nil {
		return nil, false, err
	}

	exists, err := bucket.Exists(ctx, key)
	if err != nil {
		return nil, false, errors.Wrapf(err, "local: probing %s", uri)
	}
	if exists {
		lines, err := readObjectLines(ctx, bucket, key, enc)
		if err != nil {
			return nil, false, errors.Wrapf(err, "local: reading %s", uri)
		}
		return [][]string{lines}, true, nil
	}

	iter := bucket.List(&blob.ListOptions{Prefix: key + "/part-"})
	var keys []string
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, errors.Wrapf(err, "local: listing parts of %s", uri)
		}
		keys = append(keys, obj.Key)
	}
	if len(keys) == 0 {
		return nil, false, errors.Errorf("local: no object or part objects at %s", uri)
	}
	for _, k := range keys {
		lines, err := readObjectLines(ctx, bucket, k, enc)
		if err != nil {
			return nil, false, errors.Wrapf(err, "local: reading %s", uri)
		}
		parts = append(parts, lines)
	}
	return parts, false, nil
}

func readObjectLines(ctx context.Context, bucket *blob.Bucket, key string, enc encoding.Encoding) ([]string, error) {
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var src io.Reader = r
	if enc != nil {
		src = transform.NewReader(src, enc.NewDecoder())
	}
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func (e *Engine) writeParts(ctx context.Context, uri string, parts [][]any, format engine.SaveFormat) error {
	bucketURL, key, err := splitURI(uri)
	if err != nil {
		return err
	}
	bucket, err := e.bucketFor(ctx, bucketURL)
	if err != nil {
		return err
	}
	for i, part := range parts {
		partKey := fmt.Sprintf("%s/part-%05d", key, i)
		if err := writeObject(ctx, bucket, partKey, part, format); err != nil {
			return errors.Wrapf(err, "local: writing %s/part-%05d", uri, i)
		}
	}
	return nil
}

func writeObject(ctx context.Context, bucket *blob.Bucket, key string, part []any, format engine.SaveFormat) error {
	w, err := bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return err
	}
	for _, elem := range part {
		switch format {
		case engine.SaveText:
			_, err = fmt.Fprintln(w, elem)
		case engine.SaveSequence:
			var b []byte
			if b, err = json.Marshal(elem); err == nil {
				b = append(b, '\n')
				_, err = w.Write(b)
			}
		default:
			err = errors.Errorf("unknown save format %q", format)
		}
		if err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

// bucketFor opens a bucket once per engine and caches it, so in-memory
// buckets stay visible between a save and a later load within one context.
func (e *Engine) bucketFor(ctx context.Context, bucketURL string) (*blob.Bucket, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return nil, errors.New("local: engine is stopped")
	}
	if b, ok := e.buckets[bucketURL]; ok {
		return b, nil
	}
	b, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "local: opening bucket %s", bucketURL)
	}
	e.buckets[bucketURL] = b
	return b, nil
}

func splitURI(uri string) (bucketURL, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", errors.Wrapf(err, "local: parsing location %q", uri)
	}
	if u.Scheme == "" {
		return "", "", errors.Errorf("local: location %q needs a scheme, e.g. file:// or mem://", uri)
	}
	key = path.Base(u.Path)
	if key == "." || key == "/" || key == "" {
		return "", "", errors.Errorf("local: location %q has no object name", uri)
	}
	dir := path.Dir(u.Path)
	if dir == "." {
		dir = ""
	}
	u.Path = dir
	return u.String(), key, nil
}

func (e *Engine) textEncoding() (encoding.Encoding, error) {
	name := e.opts.TextEncoding
	if name == "" {
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, errors.Wrapf(err, "local: unknown text encoding %q", name)
	}
	if enc == nil {
		return nil, errors.Errorf("local: unsupported text encoding %q", name)
	}
	return enc, nil
}
