package badger

// Key prefixes for different data types
const (
	embeddingEntryPrefix = "embent"
)

// makeEmbeddingEntryKey generates a key for a cache entry by case id.
func makeEmbeddingEntryKey(caseID string) []byte {
	return []byte(embeddingEntryPrefix + ":" + caseID)
}
