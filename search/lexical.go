package search

import (
	"math"
	"sort"

	"github.com/tanoret/validation-databse/core"
)

// match is a scored case id, the common currency of both scorers.
type match struct {
	CaseId string
	Score  float32
}

// sortMatches orders matches by score descending, breaking ties by ascending
// case id so repeated queries against an unchanged database always return
// identical ordering.
func sortMatches(matches []match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].CaseId < matches[j].CaseId
	})
}

type posting struct {
	doc    int // index into caseIds
	weight float64
}

// LexicalIndex is a TF-IDF index over case documents. It is built once from
// a database snapshot and read-only afterwards; scoring is pure. This scorer
// needs no external dependency and serves as the always-available fallback.
type LexicalIndex struct {
	caseIds  []string             // ascending; doc index -> case id
	postings map[string][]posting // term -> docs containing it, weights l2-normalized
	idf      map[string]float64
}

// BuildLexicalIndex indexes every case document in the database.
func BuildLexicalIndex(db *core.Database) *LexicalIndex {
	idx := &LexicalIndex{
		caseIds:  db.CaseIds(),
		postings: make(map[string][]posting),
		idf:      make(map[string]float64),
	}

	n := len(idx.caseIds)
	termFreqs := make([]map[string]int, n)
	df := make(map[string]int)

	for i, id := range idx.caseIds {
		doc, err := db.Document(id)
		if err != nil {
			continue
		}
		tf := make(map[string]int)
		for _, term := range tokenize(doc) {
			tf[term]++
		}
		termFreqs[i] = tf
		for term := range tf {
			df[term]++
		}
	}

	// Smoothed idf, so terms present in every document still carry weight
	// and unseen-document counts can't divide by zero.
	for term, count := range df {
		idx.idf[term] = math.Log(float64(1+n)/float64(1+count)) + 1
	}

	for i, tf := range termFreqs {
		if tf == nil {
			continue
		}
		var norm float64
		for term, count := range tf {
			w := float64(count) * idx.idf[term]
			norm += w * w
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			continue
		}
		for term, count := range tf {
			w := float64(count) * idx.idf[term] / norm
			idx.postings[term] = append(idx.postings[term], posting{doc: i, weight: w})
		}
	}

	return idx
}

// Len returns the number of indexed documents.
func (idx *LexicalIndex) Len() int {
	return len(idx.caseIds)
}

// Score ranks cases by cosine similarity between the query's TF-IDF vector
// and each document vector. Only documents sharing at least one query term
// are visited, so the cost is proportional to the posting lists of the
// query terms, not to the whole corpus. Documents with score 0 are excluded
// rather than ranked last.
func (idx *LexicalIndex) Score(query string) []match {
	return idx.score(query, nil)
}

// score is Score restricted to the allowed candidate set. A nil set means
// every document is a candidate. Restriction happens before match
// construction, so filtered-out documents never influence the results;
// idf weights are corpus-wide either way, matching an index built over the
// full database.
func (idx *LexicalIndex) score(query string, allowed map[string]bool) []match {
	terms := tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	qtf := make(map[string]int)
	for _, term := range terms {
		qtf[term]++
	}

	var qnorm float64
	qweights := make(map[string]float64, len(qtf))
	for term, count := range qtf {
		idf, ok := idx.idf[term]
		if !ok {
			// Term absent from the corpus contributes nothing to any score.
			continue
		}
		w := float64(count) * idf
		qweights[term] = w
		qnorm += w * w
	}
	if len(qweights) == 0 {
		return nil
	}
	qnorm = math.Sqrt(qnorm)

	scores := make(map[int]float64)
	for term, qw := range qweights {
		for _, p := range idx.postings[term] {
			if allowed != nil && !allowed[idx.caseIds[p.doc]] {
				continue
			}
			scores[p.doc] += (qw / qnorm) * p.weight
		}
	}

	matches := make([]match, 0, len(scores))
	for doc, score := range scores {
		if score <= 0 {
			continue
		}
		matches = append(matches, match{CaseId: idx.caseIds[doc], Score: float32(score)})
	}
	sortMatches(matches)
	return matches
}
