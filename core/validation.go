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

import "fmt"

// ValidateCase validates a Case according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//
// NOT validated:
//   - SourceReports referring to unknown report ids (dangling references are
//     surfaced at provenance resolution, never rejected at load)
//   - free-text fields (empty title or summary is legal, just hard to find)
func ValidateCase(c *Case) error {
	if c == nil {
		return fmt.Errorf("%w: case is nil", ErrInvalidCase)
	}

	if c.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCase, ErrEmptyCaseId)
	}

	return nil
}

// ValidateReport validates a Report according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//
// FileName is optional; a report without a local artifact is still citable.
func ValidateReport(r *Report) error {
	if r == nil {
		return fmt.Errorf("%w: report is nil", ErrInvalidReport)
	}

	if r.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidReport, ErrEmptyReportId)
	}

	return nil
}
