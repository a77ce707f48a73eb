package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/hybrec/internal/messaging"
	"github.com/temcen/hybrec/internal/services"
	"github.com/temcen/hybrec/pkg/models"
)

const (
	StrategyHeader         = "X-Recommendation-Strategy"
	RecommendationIDHeader = "X-Recommendation-ID"
)

type RecommendationHandler struct {
	recommender  services.Recommender
	publisher    messaging.Publisher
	logger       *logrus.Logger
	validator    *validator.Validate
	defaultLimit int
	maxLimit     int
}

func NewRecommendationHandler(
	recommender services.Recommender,
	publisher messaging.Publisher,
	defaultLimit, maxLimit int,
	logger *logrus.Logger,
) *RecommendationHandler {
	return &RecommendationHandler{
		recommender:  recommender,
		publisher:    publisher,
		logger:       logger,
		validator:    validator.New(),
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// ForUser handles GET /api/v1/recommendations?user_id=&limit=
func (h *RecommendationHandler) ForUser(c *gin.Context) {
	var req models.RecommendationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "INVALID_REQUEST", "Invalid query parameters", err)
		return
	}
	h.serveUser(c, &req)
}

// ForUserBody handles POST /api/v1/recommendations
func (h *RecommendationHandler) ForUserBody(c *gin.Context) {
	var req models.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "INVALID_REQUEST", "Invalid request format", err)
		return
	}
	h.serveUser(c, &req)
}

func (h *RecommendationHandler) serveUser(c *gin.Context, req *models.RecommendationRequest) {
	if err := h.validator.Struct(req); err != nil {
		h.badRequest(c, "VALIDATION_FAILED", "Request validation failed", err)
		return
	}
	limit, ok := h.limit(c, req.Limit)
	if !ok {
		return
	}

	result := h.recommender.ForUser(c.Request.Context(), req.UserID, limit)
	h.respond(c, models.RecommendationServed{
		Operation: services.OperationUser,
		UserID:    req.UserID,
	}, result)
}

// Similar handles GET /api/v1/items/:itemId/similar
func (h *RecommendationHandler) Similar(c *gin.Context) {
	var req models.SimilarItemsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "INVALID_REQUEST", "Invalid query parameters", err)
		return
	}
	req.ItemID = c.Param("itemId")

	if err := h.validator.Struct(&req); err != nil {
		h.badRequest(c, "VALIDATION_FAILED", "Request validation failed", err)
		return
	}
	limit, ok := h.limit(c, req.Limit)
	if !ok {
		return
	}

	result := h.recommender.SimilarTo(c.Request.Context(), req.ItemID, limit)
	h.respond(c, models.RecommendationServed{
		Operation: services.OperationSimilar,
		ItemID:    req.ItemID,
	}, result)
}

// Popular handles GET /api/v1/popular
func (h *RecommendationHandler) Popular(c *gin.Context) {
	var req models.PopularRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "INVALID_REQUEST", "Invalid query parameters", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.badRequest(c, "VALIDATION_FAILED", "Request validation failed", err)
		return
	}
	limit, ok := h.limit(c, req.Limit)
	if !ok {
		return
	}

	result := h.recommender.Popular(c.Request.Context(), limit)
	h.respond(c, models.RecommendationServed{Operation: services.OperationPopular}, result)
}

// limit applies the default and the configured ceiling.
func (h *RecommendationHandler) limit(c *gin.Context, requested *int) (int, bool) {
	if requested == nil {
		return h.defaultLimit, true
	}
	if h.maxLimit > 0 && *requested > h.maxLimit {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "LIMIT_TOO_LARGE",
				"message": "Limit exceeds the configured maximum",
				"details": gin.H{"max_limit": h.maxLimit},
			},
		})
		return 0, false
	}
	return *requested, true
}

func (h *RecommendationHandler) respond(c *gin.Context, event models.RecommendationServed, result services.Result) {
	items := result.Items
	if items == nil {
		items = []models.Recommendation{}
	}

	event.RecommendationID = uuid.New()
	event.Strategy = string(result.Outcome)
	event.Timestamp = time.Now().UTC()
	event.ItemIDs = make([]string, len(items))
	for i, item := range items {
		event.ItemIDs[i] = item.ItemID
	}

	c.Header(StrategyHeader, event.Strategy)
	c.Header(RecommendationIDHeader, event.RecommendationID.String())
	c.JSON(http.StatusOK, items)

	h.logger.WithFields(logrus.Fields{
		"recommendation_id": event.RecommendationID,
		"operation":         event.Operation,
		"user_id":           event.UserID,
		"item_id":           event.ItemID,
		"strategy":          event.Strategy,
		"count":             len(items),
	}).Debug("Served recommendations")

	h.publisher.Publish(c.Request.Context(), event)
}

func (h *RecommendationHandler) badRequest(c *gin.Context, code, message string, err error) {
	h.logger.WithError(err).Debug(message)
	c.JSON(http.StatusBadRequest, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": err.Error(),
		},
	})
}
