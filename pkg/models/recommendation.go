package models

import (
	"time"

	"github.com/google/uuid"
)

// Recommendation is a single ranked item as returned over the wire.
type Recommendation struct {
	ItemID   string  `json:"item_id"`
	Title    string  `json:"title"`
	Brand    string  `json:"brand"`
	Category string  `json:"category"`
	ImageURL string  `json:"image_url"`
	Score    float64 `json:"score"`
}

type RecommendationRequest struct {
	UserID string `json:"user_id" form:"user_id" validate:"required,max=256"`
	Limit  *int   `json:"limit,omitempty" form:"limit" validate:"omitempty,min=0"`
}

type SimilarItemsRequest struct {
	ItemID string `json:"item_id" form:"-" validate:"required,max=256"`
	Limit  *int   `form:"limit" validate:"omitempty,min=0"`
}

type PopularRequest struct {
	Limit *int `form:"limit" validate:"omitempty,min=0"`
}

// RecommendationServed is published after a response has been produced.
type RecommendationServed struct {
	RecommendationID uuid.UUID `json:"recommendation_id"`
	Operation        string    `json:"operation"`
	UserID           string    `json:"user_id,omitempty"`
	ItemID           string    `json:"item_id,omitempty"`
	Strategy         string    `json:"strategy"`
	ItemIDs          []string  `json:"item_ids"`
	Timestamp        time.Time `json:"timestamp"`
}

type HybridWeights struct {
	CF      float64 `json:"cf"`
	Content float64 `json:"content"`
}

type HealthResponse struct {
	Status            string            `json:"status"`
	Users             int               `json:"users"`
	Items             int               `json:"items"`
	InteractionsUsers int               `json:"interactionsUsers"`
	CatalogItems      int               `json:"catalogItems"`
	HybridWeights     HybridWeights     `json:"hybridWeights"`
	MatrixShapes      map[string]string `json:"matrixShapes"`
	SwappedCF         bool              `json:"swappedCF"`
	Services          map[string]string `json:"services,omitempty"`
	Timestamp         time.Time         `json:"timestamp"`
}
