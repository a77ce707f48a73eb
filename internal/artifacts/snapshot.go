package artifacts

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/temcen/hybrec/internal/catalog"
	"github.com/temcen/hybrec/internal/config"
	"github.com/temcen/hybrec/internal/database"
	"github.com/temcen/hybrec/internal/interactions"
	"github.com/temcen/hybrec/internal/similarity"
	"github.com/temcen/hybrec/internal/vectorstore"
)

// Snapshot is the immutable model state served by the engine. It is built
// once by Load and handed over to the engine.
type Snapshot struct {
	Mappings     *Mappings
	Store        *vectorstore.Store
	Catalog      *catalog.Catalog
	Interactions *interactions.Index
}

// Load reads every artifact in order. Failures on mappings, matrices or the
// item table are returned; the interactions table is optional.
func Load(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Snapshot, error) {
	paths := cfg.Artifacts
	logger.Info("Loading recommender artifacts")

	mappings, err := LoadMappings(paths.Path(paths.Mappings))
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"users":            len(mappings.User2Idx),
		"items":            len(mappings.Item2Idx),
		"hybrid_w_cf":      mappings.WCF,
		"hybrid_w_content": mappings.WContent,
	}).Info("Loaded mappings")
	checkWeights(mappings, logger)

	matrices := make([]*vectorstore.Matrix, 4)
	for i, p := range []string{paths.UserFactors, paths.ItemFactors, paths.UserContent, paths.ItemContent} {
		m, err := LoadMatrix(paths.Path(p))
		if err != nil {
			return nil, err
		}
		matrices[i] = m
	}
	store := vectorstore.New(matrices[0], matrices[1], matrices[2], matrices[3], logger)
	logShapes(store, mappings, logger)

	items, err := LoadItems(paths.Path(paths.Items))
	if err != nil {
		return nil, err
	}
	cat := catalog.New(items)
	logger.WithField("items", cat.Len()).Info("Loaded item catalog")

	history := loadInteractions(ctx, cfg, logger)
	logger.WithFields(logrus.Fields{
		"interactions":      history.Total(),
		"users_with_events": history.UserCount(),
	}).Info("Loaded interactions")

	logger.Info("Artifacts successfully loaded")

	return &Snapshot{
		Mappings:     mappings,
		Store:        store,
		Catalog:      cat,
		Interactions: history,
	}, nil
}

func loadInteractions(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *interactions.Index {
	if cfg.Interactions.Source == "postgres" {
		if cfg.Database.URL == "" {
			logger.Warn("Interactions source is postgres but database.url is empty, continuing without interactions")
			return interactions.Empty()
		}

		timeout := cfg.Database.ConnectTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		connectCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		pool, err := database.NewPostgres(connectCtx, cfg, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to connect for interactions, continuing without them")
			return interactions.Empty()
		}
		defer pool.Close()

		idx, err := LoadInteractionsPostgres(ctx, pool)
		if err != nil {
			logger.WithError(err).Warn("Failed to read interactions, continuing without them")
			return interactions.Empty()
		}
		return idx
	}

	path := cfg.Artifacts.Path(cfg.Artifacts.Interactions)
	idx, err := LoadInteractionsCSV(path, logger)
	switch {
	case errors.Is(err, ErrNotFound):
		logger.WithField("path", path).Info("Interactions file not found, continuing without it")
		return interactions.Empty()
	case err != nil:
		logger.WithError(err).Warn("Failed to read interactions file, continuing without it")
		return interactions.Empty()
	}
	return idx
}

func checkWeights(m *Mappings, logger *logrus.Logger) {
	if m.WCF < 0 || m.WContent < 0 || math.Abs(m.WCF+m.WContent-1) > 1e-6 {
		logger.WithFields(logrus.Fields{
			"hybrid_w_cf":      m.WCF,
			"hybrid_w_content": m.WContent,
		}).Warn("Hybrid weights are negative or do not sum to 1, using them as-is")
	}
}

func logShapes(store *vectorstore.Store, m *Mappings, logger *logrus.Logger) {
	named := []struct {
		name   string
		matrix *vectorstore.Matrix
	}{
		{"user_factors", store.UserCF()},
		{"item_factors", store.ItemCF()},
		{"user_content", store.UserContent()},
		{"item_content", store.ItemContent()},
	}

	for _, n := range named {
		logger.WithFields(logrus.Fields{
			"matrix":            n.name,
			"shape":             n.matrix.Shape(),
			"sample_row_norm":   fmt.Sprintf("%.6f", similarity.Norm(vectorstore.RowOrZero(n.matrix, 0, 0))),
			"swapped_cf_layout": store.Swapped(),
		}).Info("Loaded matrix")
	}

	if store.UserCF().Rows() != len(m.User2Idx) {
		logger.WithFields(logrus.Fields{
			"rows":     store.UserCF().Rows(),
			"mappings": len(m.User2Idx),
		}).Warn("User factor count differs from user mapping count, some users were filtered")
	}
	if store.ItemCF().Rows() != len(m.Item2Idx) {
		logger.WithFields(logrus.Fields{
			"rows":     store.ItemCF().Rows(),
			"mappings": len(m.Item2Idx),
		}).Warn("Item factor count differs from item mapping count, some items were filtered")
	}
}
