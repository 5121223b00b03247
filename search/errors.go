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


package search

import "errors"

var (
	// ErrDatabaseRequired is returned when a database is not provided.
	ErrDatabaseRequired = errors.New("database required")

	// ErrInvalidQuery is returned for queries that are empty after
	// normalization. Recoverable: the caller should re-prompt.
	ErrInvalidQuery = errors.New("query cannot be empty")

	// ErrSearchUnavailable is returned when both the semantic and the
	// lexical scoring paths failed for a query. Fatal for that query only.
	ErrSearchUnavailable = errors.New("search unavailable")
)
