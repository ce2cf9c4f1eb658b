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
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jba/slog/handlers/loghandler"
	"github.com/pkg/errors"
	"plume.dev/plume-go/engine"
	"plume.dev/plume-go/fns"
	"plume.dev/plume-go/internal/local"
)

// Context owns one pipeline's connection to an execution engine, along with
// the resolver that rebuilds its closures on workers. Collections from
// different contexts cannot be combined. Stop the context to release engine
// resources; every handle derived from it is invalid afterwards.
type Context struct {
	id       string
	conf     Conf
	log      *slog.Logger
	eng      engine.Engine
	resolver *fns.Resolver

	mu      sync.Mutex
	seq     map[string]int
	stopped bool
}

// New starts a pipeline context against the given master with defaults for
// everything else. Use NewWithConf for full control.
func New(master, appName string) (*Context, error) {
	return NewWithConf(Conf{Master: master, AppName: appName})
}

// NewWithConf starts a pipeline context from a full configuration.
func NewWithConf(conf Conf) (*Context, error) {
	if conf.Serializer != "" && conf.Serializer != "json" {
		return nil, errors.Errorf("plume: unsupported serializer %q", conf.Serializer)
	}
	parallelism, err := parseMaster(conf.Master)
	if err != nil {
		return nil, err
	}
	if conf.DefaultPartitions <= 0 {
		conf.DefaultPartitions = parallelism
	}
	log, err := newLogger(conf)
	if err != nil {
		return nil, err
	}
	resolver := fns.NewResolver()
	eng, err := local.New(log, resolver, local.Options{
		Parallelism:  parallelism,
		TextEncoding: conf.TextEncoding,
	})
	if err != nil {
		return nil, err
	}
	c := &Context{
		id:       uuid.NewString(),
		conf:     conf,
		log:      log,
		eng:      eng,
		resolver: resolver,
		seq:      map[string]int{},
	}
	log.Info("context started", "context", c.id, "master", conf.Master, "parallelism", parallelism)
	return c, nil
}

// parseMaster maps a master URL to the engine parallelism it requests.
func parseMaster(master string) (int, error) {
	switch {
	case master == "local":
		return 1, nil
	case master == "local[*]":
		return runtime.NumCPU(), nil
	case strings.HasPrefix(master, "local[") && strings.HasSuffix(master, "]"):
		n, err := strconv.Atoi(master[len("local[") : len(master)-1])
		if err != nil || n <= 0 {
			return 0, errors.Errorf("plume: malformed local master %q", master)
		}
		return n, nil
	}
	return 0, errors.Errorf("plume: unsupported master %q", master)
}

func newLogger(conf Conf) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(conf.LogLevel) {
	case "", "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, errors.Errorf("plume: unknown log level %q", conf.LogLevel)
	}
	h := loghandler.New(os.Stderr, &slog.HandlerOptions{Level: level})
	log := slog.New(h)
	if conf.AppName != "" {
		log = log.With("app", conf.AppName)
	}
	return log, nil
}

// Conf returns the configuration the context was started with, with defaults
// filled in.
func (c *Context) Conf() Conf { return c.conf }

// Logger returns the context's structured logger.
func (c *Context) Logger() *slog.Logger { return c.log }

// Stop shuts the engine down and releases its resources. Stopping twice is
// harmless.
func (c *Context) Stop() error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	c.mu.Unlock()
	c.log.Info("context stopped", "context", c.id)
	return c.eng.Stop()
}

// nextKey generates a fresh op name under prefix, in composition order.
func (c *Context) nextKey(prefix string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.seq[prefix]
	c.seq[prefix]++
	return fmt.Sprintf("%s%03d", prefix, n)
}

// bind wraps a raw driver-local closure into a spec resolvable within this
// context. Closures bound this way run on the in-process engine only; use
// fns.Register for closures that must resolve on remote workers.
func (c *Context) bind(kind fns.Kind, prefix string, fn any) *fns.Spec {
	key := c.nextKey(prefix)
	c.resolver.Bind(key, fn)
	return &fns.Spec{Kind: kind, Name: key}
}
