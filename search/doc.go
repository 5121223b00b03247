// Copyright 2025 Tanoret
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


// Package search provides hybrid retrieval over a validation-case database.
//
// The Searcher type ranks cases for a free-text query using one of two
// scorers:
//   - Semantic: cosine similarity between embeddings, when a provider is
//     configured, backed by a per-case embedding cache
//   - Lexical: deterministic TF-IDF cosine similarity, always available
//
// Semantic mode strictly preempts lexical; on any provider failure the same
// query is rescored lexically and the result set is marked degraded. Every
// hit carries provenance: one citation per declared source report, dangling
// references included.
package search
