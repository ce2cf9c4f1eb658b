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
	"plume.dev/plume-go/engine"
	"plume.dev/plume-go/tuple"
)

// Join matches two pair-shaped collections on key equality, emitting
// [key, [leftValue, rightValue]] for every matching combination. Left
// elements without a match are dropped. Output order follows the left side.
func Join(left, right DColl[tuple.Seq]) DColl[tuple.Seq] {
	checkSameContext(left, right)
	return nestedSeqShape(left.ctx, left.apply(engine.Op{Kind: engine.OpJoin, Other: right.h}))
}

// LeftOuterJoin is Join that keeps unmatched left elements, emitting them as
// [key, [leftValue, nil]].
func LeftOuterJoin(left, right DColl[tuple.Seq]) DColl[tuple.Seq] {
	checkSameContext(left, right)
	return nestedSeqShape(left.ctx, left.apply(engine.Op{Kind: engine.OpLeftOuterJoin, Other: right.h}))
}

func checkSameContext(left, right DColl[tuple.Seq]) {
	if left.ctx != right.ctx {
		panic("plume: joining collections from different contexts")
	}
}
