package search

import "github.com/jotted/jotted/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterTextSearch(ids []string)
	TextIndexFallback(reason error)
	AfterPatternScan(ids []string)
	AfterQueryEmbedding(dimensions int)
	AfterIndexSearch(ids []string)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                  {}
func (n *noopMonitor) AfterTextSearch(_ []string)      {}
func (n *noopMonitor) TextIndexFallback(_ error)       {}
func (n *noopMonitor) AfterPatternScan(_ []string)     {}
func (n *noopMonitor) AfterQueryEmbedding(_ int)       {}
func (n *noopMonitor) AfterIndexSearch(_ []string)     {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)   {}
