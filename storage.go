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

import "plume.dev/plume-go/engine"

// StorageLevel selects where and how a persisted collection is retained.
type StorageLevel = engine.StorageLevel

// The standard storage levels, re-exported for use with DColl.Persist.
var (
	MemoryOnly       = engine.MemoryOnly
	MemoryOnlySer    = engine.MemoryOnlySer
	MemoryOnly2      = engine.MemoryOnly2
	MemoryAndDisk    = engine.MemoryAndDisk
	MemoryAndDisk2   = engine.MemoryAndDisk2
	MemoryAndDiskSer = engine.MemoryAndDiskSer
	DiskOnly         = engine.DiskOnly
	DiskOnly2        = engine.DiskOnly2
)
