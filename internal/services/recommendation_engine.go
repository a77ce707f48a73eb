package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/temcen/hybrec/internal/artifacts"
	"github.com/temcen/hybrec/internal/catalog"
	"github.com/temcen/hybrec/internal/interactions"
	"github.com/temcen/hybrec/internal/ranking"
	"github.com/temcen/hybrec/internal/similarity"
	"github.com/temcen/hybrec/internal/vectorstore"
	"github.com/temcen/hybrec/pkg/models"
)

// Outcome is the state a request ended in.
type Outcome string

const (
	HybridOK    Outcome = "HYBRID_OK"
	UnknownUser Outcome = "UNKNOWN_USER"
	HybridEmpty Outcome = "HYBRID_EMPTY"
	ContentOK   Outcome = "CONTENT_OK"
	NoHistory   Outcome = "NO_HISTORY"
	BadSeed     Outcome = "BAD_SEED"
	Popularity  Outcome = "POPULARITY"
	UnknownItem Outcome = "UNKNOWN_ITEM"
	SimilarOK   Outcome = "SIMILAR_OK"
)

const (
	OperationUser    = "user"
	OperationContent = "content"
	OperationSimilar = "similar"
	OperationPopular = "popular"
)

// Result is a ranked list together with the state that produced it.
type Result struct {
	Items   []models.Recommendation `json:"items"`
	Outcome Outcome                 `json:"outcome"`
}

// Recommender serves the three public recommendation operations.
type Recommender interface {
	ForUser(ctx context.Context, userID string, limit int) Result
	SimilarTo(ctx context.Context, itemID string, limit int) Result
	Popular(ctx context.Context, limit int) Result
}

// EngineStats describes the loaded snapshot.
type EngineStats struct {
	Users             int
	Items             int
	InteractionsUsers int
	CatalogItems      int
	WCF               float64
	WContent          float64
	MatrixShapes      map[string]string
	SwappedCF         bool
}

// RecommendationEngine scores and ranks items from an immutable snapshot.
// Every operation degrades through the fallback chain instead of failing.
type RecommendationEngine struct {
	logger   *logrus.Logger
	mappings *artifacts.Mappings
	store    *vectorstore.Store
	catalog  *catalog.Catalog
	history  *interactions.Index
	ranker   *ranking.Ranker

	outcomes *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewRecommendationEngine takes ownership of snapshot.
func NewRecommendationEngine(snapshot *artifacts.Snapshot, logger *logrus.Logger) *RecommendationEngine {
	history := snapshot.Interactions
	if history == nil {
		history = interactions.Empty()
	}

	return &RecommendationEngine{
		logger:   logger,
		mappings: snapshot.Mappings,
		store:    snapshot.Store,
		catalog:  snapshot.Catalog,
		history:  history,
		ranker:   ranking.NewRanker(ranking.InvertItemMapping(snapshot.Mappings.Item2Idx), snapshot.Catalog),
		outcomes: newOutcomeCounter(logger),
		latency:  newLatencyHistogram(logger),
	}
}

// RecommendForUser ranks items for userID, falling back to content-based
// and then popularity recommendations.
func (e *RecommendationEngine) RecommendForUser(userID string, limit int) []models.Recommendation {
	return e.ForUser(context.Background(), userID, limit).Items
}

// RecommendContentBased ranks items by content similarity to the user's
// oldest recorded interaction.
func (e *RecommendationEngine) RecommendContentBased(userID string, limit int) []models.Recommendation {
	start := time.Now()
	result := e.contentBased(userID, limit)
	e.observe(OperationContent, result.Outcome, start)
	return result.Items
}

// GetSimilarItems ranks items by hybrid similarity to itemID. Unknown items
// yield an empty list.
func (e *RecommendationEngine) GetSimilarItems(itemID string, limit int) []models.Recommendation {
	return e.SimilarTo(context.Background(), itemID, limit).Items
}

// GetPopular returns the first limit catalog entries with a zero score.
func (e *RecommendationEngine) GetPopular(limit int) []models.Recommendation {
	return e.Popular(context.Background(), limit).Items
}

func (e *RecommendationEngine) ForUser(_ context.Context, userID string, limit int) Result {
	start := time.Now()
	result := e.forUser(userID, limit)
	e.observe(OperationUser, result.Outcome, start)
	return result
}

func (e *RecommendationEngine) SimilarTo(_ context.Context, itemID string, limit int) Result {
	start := time.Now()
	result := e.similarTo(itemID, limit)
	e.observe(OperationSimilar, result.Outcome, start)
	return result
}

func (e *RecommendationEngine) Popular(_ context.Context, limit int) Result {
	start := time.Now()
	result := e.popular(limit)
	e.observe(OperationPopular, result.Outcome, start)
	return result
}

// Stats reports the snapshot dimensions and hybrid weights.
func (e *RecommendationEngine) Stats() EngineStats {
	return EngineStats{
		Users:             len(e.mappings.User2Idx),
		Items:             len(e.mappings.Item2Idx),
		InteractionsUsers: e.history.UserCount(),
		CatalogItems:      e.catalog.Len(),
		WCF:               e.mappings.WCF,
		WContent:          e.mappings.WContent,
		MatrixShapes: map[string]string{
			"user_factors": e.store.UserCF().Shape(),
			"item_factors": e.store.ItemCF().Shape(),
			"user_content": e.store.UserContent().Shape(),
			"item_content": e.store.ItemContent().Shape(),
		},
		SwappedCF: e.store.Swapped(),
	}
}

func (e *RecommendationEngine) forUser(userID string, limit int) Result {
	uIdx, ok := e.mappings.User2Idx[userID]
	if !ok || !vectorstore.InRange(e.store.UserCF(), uIdx) {
		e.transition(userID, "", UnknownUser)
		return e.contentBased(userID, limit)
	}

	cfVec := e.store.UserCF().Row(uIdx)
	contentVec := vectorstore.RowOrZero(e.store.UserContent(), uIdx, len(cfVec))

	recs := e.ranker.TopK(e.hybridScores(cfVec, contentVec), limit, "")
	if len(recs) == 0 {
		e.transition(userID, "", HybridEmpty)
		return e.contentBased(userID, limit)
	}

	return Result{Items: recs, Outcome: HybridOK}
}

func (e *RecommendationEngine) contentBased(userID string, limit int) Result {
	seed, ok := e.history.Seed(userID)
	if !ok {
		e.transition(userID, "", NoHistory)
		return e.popular(limit)
	}

	seedIdx, ok := e.mappings.Item2Idx[seed]
	if !ok || !vectorstore.InRange(e.store.ItemContent(), seedIdx) {
		e.transition(userID, seed, BadSeed)
		return e.popular(limit)
	}

	itemContent := e.store.ItemContent()
	seedVec := itemContent.Row(seedIdx)
	scores := make([]float64, itemContent.Rows())
	for i := range scores {
		scores[i] = similarity.Cosine(seedVec, itemContent.Row(i))
	}

	return Result{Items: e.ranker.TopK(scores, limit, seed), Outcome: ContentOK}
}

func (e *RecommendationEngine) similarTo(itemID string, limit int) Result {
	idx, ok := e.mappings.Item2Idx[itemID]
	if !ok || !vectorstore.InRange(e.store.ItemCF(), idx) {
		e.transition("", itemID, UnknownItem)
		return Result{Items: []models.Recommendation{}, Outcome: UnknownItem}
	}

	cfVec := e.store.ItemCF().Row(idx)
	contentVec := vectorstore.RowOrZero(e.store.ItemContent(), idx, len(cfVec))

	return Result{
		Items:   e.ranker.TopK(e.hybridScores(cfVec, contentVec), limit, itemID),
		Outcome: SimilarOK,
	}
}

func (e *RecommendationEngine) popular(limit int) Result {
	head := e.catalog.Head(limit)
	recs := make([]models.Recommendation, 0, len(head))
	for _, item := range head {
		recs = append(recs, ranking.ToRecommendation(item.ID, item, 0))
	}
	return Result{Items: recs, Outcome: Popularity}
}

// hybridScores blends CF and content similarity for every item present in
// both item matrices.
func (e *RecommendationEngine) hybridScores(cfVec, contentVec []float64) []float64 {
	itemCF := e.store.ItemCF()
	itemContent := e.store.ItemContent()
	wCF, wContent := e.mappings.WCF, e.mappings.WContent

	scores := make([]float64, vectorstore.CommonRowCount(itemCF, itemContent))
	for i := range scores {
		scores[i] = wCF*similarity.Cosine(cfVec, itemCF.Row(i)) +
			wContent*similarity.Cosine(contentVec, itemContent.Row(i))
	}
	return scores
}

func (e *RecommendationEngine) transition(userID, itemID string, state Outcome) {
	if e.logger == nil {
		return
	}
	e.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"item_id": itemID,
		"state":   state,
	}).Debug("Recommendation fallback")
}

func (e *RecommendationEngine) observe(operation string, outcome Outcome, start time.Time) {
	e.outcomes.WithLabelValues(operation, string(outcome)).Inc()
	e.latency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
