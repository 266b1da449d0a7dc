// Copyright 2025 Poiesic Systems
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


// Package oracle implements the similarity oracle: a cached, thread-safe
// front for the embedding model.
//
// Lookups go through three tiers. An in-process LRU keyed by (text, model)
// answers most requests. On a miss, an optional persistent
// storage.EmbeddingStore is consulted, and only then the model. Vocabulary
// embeddings live in a separate pinned map that is never evicted.
//
// The model handle is built lazily from an ai.ProviderFactory on the first
// request that needs it. Concurrent first callers share one construction;
// a failed construction is retried by the next request.
//
// Every model call is bounded by a timeout. A failure, a timeout or an empty
// vector is reported as ErrUnavailable so that callers can fall back to
// keyword scoring. A zero vector is never returned in place of an error.
package oracle
