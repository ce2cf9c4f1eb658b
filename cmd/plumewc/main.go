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

// plumewc counts words in a text file and prints or saves the counts in
// descending count order.
//
//	plumewc -master 'local[*]' -in file:///data/book.txt
//	plumewc -conf plume.yaml -in mem://scratch/in -out mem://scratch/counts
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	plume "plume.dev/plume-go"
	"plume.dev/plume-go/fns"
	"plume.dev/plume-go/tuple"
)

var (
	master   = flag.String("master", "local[*]", "execution master, e.g. local, local[4]")
	confPath = flag.String("conf", "", "optional YAML configuration file; overrides -master")
	in       = flag.String("in", "", "input text location, e.g. file:///data/book.txt")
	out      = flag.String("out", "", "optional output location; counts print to stdout when unset")
	top      = flag.Int("top", 20, "number of words to print when -out is unset")
)

func init() {
	// Registered rather than passed as a raw closure so it would resolve on
	// remote workers too.
	fns.Register("plumewc.words", func(map[string]any) any {
		return fns.FlatMapper(func(v any) []any {
			fields := strings.Fields(v.(string))
			out := make([]any, len(fields))
			for i, f := range fields {
				out[i] = strings.ToLower(strings.Trim(f, `.,;:!?"'()`))
			}
			return out
		})
	})
}

func main() {
	flag.Parse()
	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	c, err := newContext()
	if err != nil {
		log.Fatalf("starting context: %v", err)
	}
	defer c.Stop()
	ctx := context.Background()

	words := plume.FlatMapNamed[string, string](plume.TextFile(c, *in), "plumewc.words", nil)
	nonEmpty := plume.Filter(words, func(s string) any { return s })
	ones := plume.MapToPair(nonEmpty, func(s string) (any, any) { return s, 1 })
	counts := plume.ReduceByKey(ones, plume.Sum[int]())

	// Flip to count-keyed pairs so the sort orders by frequency.
	byCount := plume.MapToPair(counts, func(s tuple.Seq) (any, any) { return s[1], s[0] })
	ranked := plume.SortByKey(byCount, plume.Descending())

	if *out != "" {
		lines := plume.Map(ranked, func(s tuple.Seq) string {
			return fmt.Sprintf("%v\t%v", s[1], s[0])
		})
		if err := plume.SaveAsTextFile(ctx, lines, *out); err != nil {
			log.Fatalf("saving counts: %v", err)
		}
		return
	}

	rows, err := plume.Take(ctx, ranked, *top)
	if err != nil {
		log.Fatalf("counting words: %v", err)
	}
	for _, row := range rows {
		fmt.Printf("%6v  %v\n", row[0], row[1])
	}
}

func newContext() (*plume.Context, error) {
	if *confPath == "" {
		return plume.New(*master, "plumewc")
	}
	conf, err := plume.LoadConf(*confPath)
	if err != nil {
		return nil, err
	}
	if conf.AppName == "" {
		conf.AppName = "plumewc"
	}
	return plume.NewWithConf(conf)
}
