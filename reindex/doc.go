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


// Package reindex rebuilds note embeddings and the vector index from the
// primary store.
//
// The vector index is a derived cache, so it can be reconstructed at any
// time: every note is re-embedded with the configured embedder, the new
// embedding is written back to storage, and the vector is mirrored into
// the index. Failed notes are retried with exponential backoff and
// progress is reported as the walk proceeds.
package reindex
