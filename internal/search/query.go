package search

import (
	"sort"
	"strings"
)

// SearchExact scores every document by how closely its name matches query:
// 1.0 for an exact match, 0.9 for a prefix match, and for any other
// substring match a base of 0.7 plus a 0.1 bonus if the match starts at
// position 0 and a further 0.05 bonus if the match starts on a word
// boundary (position 0 or preceded by a space). Ties are broken by node ID
// ascending so results are deterministic across repeated calls.
func (idx *Index) SearchExact(query string, limit int) []Result {
	queryLower := strings.ToLower(query)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var results []Result
	for nodeID, doc := range idx.documents {
		nameLower := strings.ToLower(doc.Name)
		pos := strings.Index(nameLower, queryLower)
		if pos < 0 {
			continue
		}

		var score float64
		switch {
		case nameLower == queryLower:
			score = 1.0
		case strings.HasPrefix(nameLower, queryLower):
			score = 0.9
		default:
			score = 0.7
			if pos == 0 {
				score += 0.1
			}
			if pos == 0 || nameLower[pos-1] == ' ' {
				score += 0.05
			}
		}

		results = append(results, Result{
			NodeID:    nodeID,
			Name:      doc.Name,
			Score:     score,
			AccountID: doc.AccountID,
			Provider:  doc.Provider,
		})
	}

	return topByScore(results, limit)
}

// SearchPrefix restricts candidates to documents reachable through the
// name word index for each word in query, then keeps the ones whose full
// name starts with query. Every surviving match scores 0.95 flat.
func (idx *Index) SearchPrefix(query string, limit int) []Result {
	queryLower := strings.ToLower(query)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	seen := make(map[string]bool)
	var results []Result
	for _, word := range strings.Fields(queryLower) {
		for _, nodeID := range idx.nameIndex[word] {
			if seen[nodeID] {
				continue
			}
			doc, ok := idx.documents[nodeID]
			if !ok {
				continue
			}
			if !strings.HasPrefix(strings.ToLower(doc.Name), queryLower) {
				continue
			}
			seen[nodeID] = true
			results = append(results, Result{
				NodeID:    nodeID,
				Name:      doc.Name,
				Score:     0.95,
				AccountID: doc.AccountID,
				Provider:  doc.Provider,
			})
		}
	}

	return topByScore(results, limit)
}

// SearchByAccount restricts the search to documents belonging to
// accountID, using the same exact/prefix/contains scoring tiers as
// SearchExact but without the position and word-boundary bonuses.
func (idx *Index) SearchByAccount(query, accountID string, limit int) []Result {
	queryLower := strings.ToLower(query)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var results []Result
	for _, nodeID := range idx.accountIndex[accountID] {
		doc, ok := idx.documents[nodeID]
		if !ok {
			continue
		}
		nameLower := strings.ToLower(doc.Name)
		if !strings.Contains(nameLower, queryLower) {
			continue
		}

		var score float64
		switch {
		case nameLower == queryLower:
			score = 1.0
		case strings.HasPrefix(nameLower, queryLower):
			score = 0.9
		default:
			score = 0.7
		}

		results = append(results, Result{
			NodeID:    nodeID,
			Name:      doc.Name,
			Score:     score,
			AccountID: doc.AccountID,
			Provider:  doc.Provider,
		})
	}

	return topByScore(results, limit)
}

// topByScore sorts results by score descending, node ID ascending on ties,
// then truncates to limit (0 or negative means unlimited).
func topByScore(results []Result, limit int) []Result {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].NodeID < results[j].NodeID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
