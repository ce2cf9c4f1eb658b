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

// Package plume is a functional API for building and executing distributed
// data-processing pipelines over a general-purpose collection engine.
//
// A pipeline is a chain of closures applied to an immutable distributed
// collection, DColl. Transformations (Map, Filter, ReduceByKey, Join, ...)
// are lazy: they wrap the user's closure into a serializable function object
// and compose a new handle without computing anything. Actions (Collect,
// Reduce, Count, the save operations) block until the engine has produced
// the full result, or fail with the first error the computation raised.
//
// Key/value shaped collections carry their elements in the uniform sequence
// form of the tuple package: 2-sequences [key, value], and for join results
// [key, [leftValue, rightValue]]. Every pair-shaped operation converts to
// the engine's native pair on the way in and back to sequences on the way
// out; the conversions are lossless and never reorder elements.
package plume
