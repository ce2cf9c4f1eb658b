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

package engine

// StorageLevel describes where and how a persisted collection is retained.
// The set below is closed; levels are hints to the engine, not locks, and
// are immutable once applied to a collection.
type StorageLevel struct {
	UseMemory   bool
	UseDisk     bool
	Serialized  bool
	Replication int
}

var (
	MemoryOnly       = StorageLevel{UseMemory: true, Replication: 1}
	MemoryOnlySer    = StorageLevel{UseMemory: true, Serialized: true, Replication: 1}
	MemoryOnly2      = StorageLevel{UseMemory: true, Replication: 2}
	MemoryAndDisk    = StorageLevel{UseMemory: true, UseDisk: true, Replication: 1}
	MemoryAndDisk2   = StorageLevel{UseMemory: true, UseDisk: true, Replication: 2}
	MemoryAndDiskSer = StorageLevel{UseMemory: true, UseDisk: true, Serialized: true, Replication: 1}
	DiskOnly         = StorageLevel{UseDisk: true, Replication: 1}
	DiskOnly2        = StorageLevel{UseDisk: true, Replication: 2}
)
