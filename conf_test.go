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
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plume.yaml")
	conf := `master: local[4]
app_name: wordcount
default_partitions: 8
serializer: json
text_encoding: ISO-8859-1
log_level: debug
`
	if err := os.WriteFile(path, []byte(conf), 0o644); err != nil {
		t.Fatalf("writing conf: %v", err)
	}

	got, err := LoadConf(path)
	if err != nil {
		t.Fatalf("LoadConf: %v", err)
	}
	want := Conf{
		Master:            "local[4]",
		AppName:           "wordcount",
		DefaultPartitions: 8,
		Serializer:        "json",
		TextEncoding:      "ISO-8859-1",
		LogLevel:          "debug",
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("loaded conf mismatch (-want +got):\n%v", d)
	}
}

func TestLoadConfMissing(t *testing.T) {
	if got, err := LoadConf(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("LoadConf of a missing file = %+v, want error", got)
	}
}
