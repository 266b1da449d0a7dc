package matching

import "github.com/poiesic/skillmatch/core"

// Monitor observes a ranking run. Scoring happens on worker goroutines, so
// implementations must be safe for concurrent use.
type Monitor interface {
	// Start is called once with the query's ID and the number of entries to score.
	Start(queryID string, entries int)
	// QueryFallback is called when the query itself could not be embedded;
	// every entry is then keyword scored.
	QueryFallback(err error)
	// SemanticScored is called for each entry scored by similarity.
	SemanticScored(id string, score float64)
	// KeywordScored is called for each entry scored by skill overlap.
	// cause is the oracle error that forced the fallback, or nil.
	KeywordScored(id string, score float64, cause error)
	// Finish is called with the final ranking.
	Finish(ranking core.Ranking)
}

type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)                      {}
func (n *noopMonitor) QueryFallback(_ error)                      {}
func (n *noopMonitor) SemanticScored(_ string, _ float64)         {}
func (n *noopMonitor) KeywordScored(_ string, _ float64, _ error) {}
func (n *noopMonitor) Finish(_ core.Ranking)                      {}
