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

import "golang.org/x/exp/constraints"

// Prebuilt reducers for ReduceByKey and Reduce over collections of a known
// numeric or ordered element type.

// Number is any integer or floating point type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Sum returns a reducer that adds values of type E.
func Sum[E Number]() func(any, any) any {
	return func(a, b any) any { return as[E](a) + as[E](b) }
}

// Min returns a reducer that keeps the smaller of two values of type E.
func Min[E constraints.Ordered]() func(any, any) any {
	return func(a, b any) any {
		x, y := as[E](a), as[E](b)
		if y < x {
			return y
		}
		return x
	}
}

// Max returns a reducer that keeps the larger of two values of type E.
func Max[E constraints.Ordered]() func(any, any) any {
	return func(a, b any) any {
		x, y := as[E](a), as[E](b)
		if y > x {
			return y
		}
		return x
	}
}
