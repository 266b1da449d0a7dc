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


// Package ai provides abstractions for the embedding model behind skill matching.
//
// The package defines the interfaces the rest of the module depends on:
//
//   - Embedder: Generates vector embeddings from text
//   - Provider: Owns an embedder and its lifecycle
//   - Oracle: Cached similarity service consumed by extraction and matching
//
// # Implementation Packages
//
//   - ai/openai: Production embedder using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without a model server
//
// Public constructors in ai/openai return interface types. Test constructors in
// ai/mock return concrete types so tests can inject behavior and assert call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithEmbeddingModel("nomic-embed-text"))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "python, data analysis")
package ai
