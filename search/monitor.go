package search

import "github.com/tanoret/validation-databse/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	ScorerSelected(mode Mode)
	Degraded(err error)
	AfterScoring(mode Mode, hits int)
	AfterProvenance(results []*core.SearchResult)
	Finish(results *ResultSet)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                          {}
func (n *noopMonitor) ScorerSelected(_ Mode)                   {}
func (n *noopMonitor) Degraded(_ error)                        {}
func (n *noopMonitor) AfterScoring(_ Mode, _ int)              {}
func (n *noopMonitor) AfterProvenance(_ []*core.SearchResult)  {}
func (n *noopMonitor) Finish(_ *ResultSet)                     {}
