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


package core

import "errors"

// Domain errors
var (
	// ErrMalformedDatabase indicates the database source violates the schema.
	// It is fatal at load time; the process must not start on a bad database.
	ErrMalformedDatabase = errors.New("malformed database")

	// ErrNotFound indicates a case or report id is absent from the database.
	// Callers decide whether a missing key is fatal.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateCase indicates two cases share an id at load time.
	ErrDuplicateCase = errors.New("duplicate case id")

	// ErrDuplicateReport indicates two reports share an id at load time.
	ErrDuplicateReport = errors.New("duplicate report id")

	// ErrInvalidCase indicates a Case failed validation.
	ErrInvalidCase = errors.New("invalid case")

	// ErrInvalidReport indicates a Report failed validation.
	ErrInvalidReport = errors.New("invalid report")

	// ErrEmptyCaseId indicates the case Id field is empty.
	ErrEmptyCaseId = errors.New("case id cannot be empty")

	// ErrEmptyReportId indicates the report Id field is empty.
	ErrEmptyReportId = errors.New("report id cannot be empty")
)
