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


// Package storage provides the storage abstraction layer for jotted.
//
// The NoteRepository interface decouples the note domain from any concrete
// backend. The badger sub-package implements it on BadgerDB with an
// embedded bleve full-text index for the weighted text query primitive.
//
// Consumers hold the interface, so a different backend (or an in-memory
// repository for tests) swaps in without changes.
//
// The repository is the source of truth for notes. The vector index holds
// only a derived projection and lives behind its own package.
package storage
