package models

// WilsonScoreRequest is the request body for a standalone Wilson score
// computation.
type WilsonScoreRequest struct {
	PositiveEvents int `json:"positiveEvents" validate:"gte=0"`
	TotalEvents    int `json:"totalEvents" validate:"gte=0"`
}

// WilsonScoreResponse is the response for a standalone Wilson score
// computation.
type WilsonScoreResponse struct {
	Score          float64 `json:"score"`
	PositiveEvents int     `json:"positiveEvents"`
	TotalEvents    int     `json:"totalEvents"`
}

// ReputationEventRequest is the request body for recording a reputation event.
type ReputationEventRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Positive bool   `json:"positive"`
}

// ReputationResponse is a user's reputation record.
type ReputationResponse struct {
	UserID         string     `json:"userId"`
	Score          float64    `json:"score"`
	Standing       string     `json:"standing"`
	PositiveEvents int        `json:"positiveEvents"`
	TotalEvents    int        `json:"totalEvents"`
	UpdatedAt      *Timestamp `json:"updatedAt,omitempty"`
}
