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


// Package ai defines the embedding provider boundary for semantic search.
//
// The Embedder interface abstracts text-to-vector services so the search
// layer does not depend on any concrete provider. The openai subpackage
// implements it for OpenAI-compatible APIs; the mock subpackage provides a
// deterministic test double. Semantic search is an optional capability:
// when no provider is configured the interface is simply absent (nil) and
// retrieval degrades to lexical scoring.
package ai
