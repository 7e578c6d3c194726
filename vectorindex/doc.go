// Copyright 2025 Jotted Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package vectorindex defines the contract for the external approximate
// nearest neighbor index that mirrors note embeddings, plus a Manager that
// tracks the index's availability.
//
// The index is a derived cache over the primary note store: every mirrored
// vector carries a payload snapshot (title, truncated body, creation time)
// so semantic search can answer without a round trip to storage. Losing the
// index never loses data.
//
// Availability follows a one-way state machine: an index starts
// Unconfigured or Initializing and settles into Ready or Failed. A failed
// index stays failed for the life of the process; recovery is a restart
// concern, not a runtime one.
package vectorindex
