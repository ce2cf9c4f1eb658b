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
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Conf configures a pipeline context. The zero value of every field selects
// a sensible default; see the field comments.
type Conf struct {
	// Master selects the execution engine: "local", "local[*]", or
	// "local[N]" for an in-process engine with the given parallelism.
	Master string `yaml:"master"`
	// AppName labels the pipeline in logs.
	AppName string `yaml:"app_name"`
	// DefaultPartitions is the partition count of sources that don't
	// request one. Zero means the engine's parallelism.
	DefaultPartitions int `yaml:"default_partitions"`
	// Serializer names the record codec used for shipped closures, cached
	// datasets, and sequence files. Empty or "json".
	Serializer string `yaml:"serializer"`
	// TextEncoding is the IANA name of the character encoding of text file
	// sources. Empty means UTF-8.
	TextEncoding string `yaml:"text_encoding"`
	// LogLevel is the minimum level logged: debug, info, warn, or error.
	// Empty means info.
	LogLevel string `yaml:"log_level"`
}

// LoadConf reads a YAML pipeline configuration from path.
func LoadConf(path string) (Conf, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Conf{}, errors.Wrap(err, "plume: reading configuration")
	}
	var c Conf
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Conf{}, errors.Wrapf(err, "plume: parsing configuration %s", path)
	}
	return c, nil
}
