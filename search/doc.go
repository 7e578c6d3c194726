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


// Package search provides the two retrieval strategies over notes.
//
// Lexical search runs a weighted full-text query (titles count double) and
// degrades to a pattern scan over the primary store when the text index
// cannot serve the query. Semantic search embeds the query and asks the
// external vector index for nearest neighbors; when the index is
// unavailable it reports that instead of silently degrading, since lexical
// and semantic results are not interchangeable.
package search
