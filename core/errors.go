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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidNote indicates a Note failed validation.
	ErrInvalidNote = errors.New("invalid note")

	// ErrEmptyTitle indicates the title is empty after trimming.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrTitleTooLong indicates the title exceeds TitleMaxLen.
	ErrTitleTooLong = errors.New("title too long")

	// ErrEmptyBody indicates the body is empty after trimming.
	ErrEmptyBody = errors.New("body cannot be empty")

	// ErrBodyTooLong indicates the body exceeds BodyMaxLen.
	ErrBodyTooLong = errors.New("body too long")

	// ErrInvalidInput indicates empty or otherwise unusable input to an
	// operation, such as embedding whitespace-only text.
	ErrInvalidInput = errors.New("invalid input")
)

// Retrieval errors
var (
	// ErrServiceUnavailable indicates the vector index cannot serve requests.
	// Semantic search reports it instead of silently degrading to lexical
	// results; callers that want lexical results must ask for them.
	ErrServiceUnavailable = errors.New("vector index unavailable")

	// ErrIndexing indicates a vector index write or an embedding step failed.
	// On the write path it is logged and swallowed; semantic search surfaces it.
	ErrIndexing = errors.New("indexing failed")
)
