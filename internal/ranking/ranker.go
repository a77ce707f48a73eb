package ranking

import (
	"math"
	"sort"

	"github.com/temcen/hybrec/internal/catalog"
	"github.com/temcen/hybrec/pkg/models"
)

// ItemResolver resolves item ids to catalog entries.
type ItemResolver interface {
	Lookup(id string) (catalog.Item, bool)
}

// Ranker turns a score vector aligned to item indices into a top-K list.
type Ranker struct {
	idx2item map[int]string
	items    ItemResolver
}

// NewRanker creates a ranker. idx2item must be derived from the item mapping
// with InvertItemMapping.
func NewRanker(idx2item map[int]string, items ItemResolver) *Ranker {
	return &Ranker{
		idx2item: idx2item,
		items:    items,
	}
}

// InvertItemMapping derives the index -> id direction from item2idx. When
// several ids share an index the lexicographically smallest id wins, so the
// result does not depend on map iteration order.
func InvertItemMapping(item2idx map[string]int) map[int]string {
	ids := make([]string, 0, len(item2idx))
	for id := range item2idx {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	idx2item := make(map[int]string, len(item2idx))
	for _, id := range ids {
		idx := item2idx[id]
		if _, taken := idx2item[idx]; !taken {
			idx2item[idx] = id
		}
	}
	return idx2item
}

// TopK returns at most limit distinct items ordered by descending score.
// Equal scores are ordered by ascending item index. NaN and infinite scores,
// unmapped indices, the excluded id and ids missing from the catalog are
// skipped. An empty exclude disables exclusion.
func (r *Ranker) TopK(scores []float64, limit int, exclude string) []models.Recommendation {
	out := make([]models.Recommendation, 0, max(0, min(limit, len(scores))))
	if limit <= 0 {
		return out
	}

	candidates := make([]int, 0, len(scores))
	for i, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			continue
		}
		candidates = append(candidates, i)
	}

	sort.Slice(candidates, func(a, b int) bool {
		ia, ib := candidates[a], candidates[b]
		if scores[ia] != scores[ib] {
			return scores[ia] > scores[ib]
		}
		return ia < ib
	})

	seen := make(map[string]struct{}, limit)
	for _, i := range candidates {
		if len(out) >= limit {
			break
		}

		itemID, ok := r.idx2item[i]
		if !ok {
			continue
		}
		if exclude != "" && itemID == exclude {
			continue
		}
		if _, dup := seen[itemID]; dup {
			continue
		}
		seen[itemID] = struct{}{}

		item, ok := r.items.Lookup(itemID)
		if !ok {
			continue
		}

		out = append(out, ToRecommendation(itemID, item, scores[i]))
	}

	return out
}

// ToRecommendation builds the wire representation of a ranked item.
func ToRecommendation(itemID string, item catalog.Item, score float64) models.Recommendation {
	return models.Recommendation{
		ItemID:   itemID,
		Title:    item.Title,
		Brand:    item.Brand,
		Category: item.Category,
		ImageURL: item.ImageURL,
		Score:    score,
	}
}
