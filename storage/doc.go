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


// Package storage defines the embedding cache abstraction and its wire
// format. The validation database itself is an in-memory snapshot (see
// core.Database); the only state that outlives a process is the per-case
// embedding cache, persisted through the EmbeddingCache interface. The
// badger subpackage provides the BadgerDB implementation.
package storage
