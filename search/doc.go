// Package search provides semantic search over the penal code and precedent
// collections, and the indexer that fills them.
//
// A Searcher embeds the query, asks a Store for the nearest passages and
// applies an optional language filter taken from an inline hint:
//
//	s := search.NewSearcher(store, embedder, cfg.IPCCollection, cfg.TopK)
//	passages, err := s.Search(ctx, "punishment for theft [hindi]", 0)
//
// WeaviateStore is the production Store. Agents reach a Searcher through
// the tools returned by IPCTool and PrecedentTool.
package search
