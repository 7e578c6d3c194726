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


package vectorindex

import "errors"

var (
	// ErrUnavailable indicates the index is not configured, still
	// initializing, or has failed.
	ErrUnavailable = errors.New("vector index unavailable")

	// ErrIndexWrite indicates an upsert or delete against the index failed.
	ErrIndexWrite = errors.New("vector index write failed")
)
