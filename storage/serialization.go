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


package storage

import (
	"fmt"

	"github.com/tanoret/validation-databse/core"
)

// MarshalEmbeddingEntry serializes an EmbeddingEntry to bytes.
func MarshalEmbeddingEntry(entry *core.EmbeddingEntry) []byte {
	buf := make([]byte, core.EmbeddingEntryMUS.Size(*entry))
	core.EmbeddingEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalEmbeddingEntry deserializes an EmbeddingEntry from bytes.
func UnmarshalEmbeddingEntry(data []byte) (*core.EmbeddingEntry, error) {
	entry, _, err := core.EmbeddingEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &entry, nil
}
