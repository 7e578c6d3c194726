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


// Package ai provides the embedding abstractions used by jotted.
//
// The package defines the Embedder interface and two implementations that
// matter in production:
//
//   - ai/openai: remote embeddings via OpenAI-compatible APIs
//   - SyntheticEmbedder: a deterministic local generator
//
// FallbackEmbedder composes the two. It prefers the remote provider and
// silently degrades to the synthetic generator whenever the remote call
// fails, times out, trips the circuit breaker, or returns a vector of the
// wrong shape. Provider failures are therefore never surfaced to callers;
// they are logged and recovered locally.
//
// The synthetic generator is bit-reproducible: the same input text always
// yields the same unit-normalized vector. That property keeps semantic
// search self-consistent in deployments with no embedding service at all.
//
// ai/mock contains test doubles with injectable behavior.
package ai
