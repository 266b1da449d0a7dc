package oracle

// Stats is a snapshot of oracle counters.
type Stats struct {
	Hits          int64 // LRU hits
	Misses        int64 // LRU misses
	Evictions     int64
	StoreHits     int64 // misses answered by the persistent store
	ModelCalls    int64 // requests sent to the model, single or batch
	Failures      int64 // model calls that ended in ErrUnavailable
	Constructions int64 // provider constructions
	CacheLen      int
	VocabularyLen int
}

// Stats returns current counters.
func (o *Oracle) Stats() Stats {
	o.vocabMu.RLock()
	vocabLen := len(o.vocab)
	o.vocabMu.RUnlock()

	return Stats{
		Hits:          o.hits.Load(),
		Misses:        o.misses.Load(),
		Evictions:     o.evictions.Load(),
		StoreHits:     o.storeHits.Load(),
		ModelCalls:    o.modelCalls.Load(),
		Failures:      o.failures.Load(),
		Constructions: o.constructions.Load(),
		CacheLen:      o.cache.Len(),
		VocabularyLen: vocabLen,
	}
}
