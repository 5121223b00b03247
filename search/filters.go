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

import (
	"strings"

	"github.com/tanoret/validation-databse/core"
)

// Filters narrows the candidate set before scoring. All matching is
// case-insensitive. An empty field imposes no constraint; a nil Filters
// matches every case. Constraints combine with AND: a case must satisfy
// every populated field.
type Filters struct {
	// VVTypes accepts cases whose VVType equals any listed value.
	VVTypes []string

	// Scopes accepts cases whose Scope equals any listed value.
	Scopes []string

	// Tools accepts cases whose Tools intersect the listed values.
	Tools []string

	// Tags accepts cases whose Tags intersect the listed values.
	Tags []string

	// Phenomena accepts cases whose Phenomena intersect the listed values.
	Phenomena []string

	// SystemContains accepts cases whose System contains this substring.
	SystemContains string
}

func containsFold(values []string, value string) bool {
	for _, v := range values {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

// intersects reports whether sel and values share at least one element,
// ignoring case. An empty selection imposes no constraint.
func intersects(sel, values []string) bool {
	if len(sel) == 0 {
		return true
	}
	for _, v := range values {
		if containsFold(sel, v) {
			return true
		}
	}
	return false
}

// Matches reports whether the case satisfies every populated constraint.
func (f *Filters) Matches(c *core.Case) bool {
	if f == nil {
		return true
	}
	if len(f.VVTypes) > 0 && !containsFold(f.VVTypes, c.VVType) {
		return false
	}
	if len(f.Scopes) > 0 && !containsFold(f.Scopes, c.Scope) {
		return false
	}
	if !intersects(f.Tools, c.Tools) {
		return false
	}
	if !intersects(f.Tags, c.Tags) {
		return false
	}
	if !intersects(f.Phenomena, c.Phenomena) {
		return false
	}
	if f.SystemContains != "" {
		if !strings.Contains(strings.ToLower(c.System), strings.ToLower(f.SystemContains)) {
			return false
		}
	}
	return true
}
