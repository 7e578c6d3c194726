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


// Package notes orchestrates the note lifecycle across primary storage,
// the embedding provider, and the external vector index.
//
// Primary storage is the source of truth. Embeddings are computed on
// create and recomputed on every title or body change; mirroring into the
// vector index happens on a background worker pool and is best effort. A
// mirror failure is logged and never surfaces to the caller, since the
// index is a derived cache that can be rebuilt.
package notes
