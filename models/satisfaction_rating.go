package models

import "time"

// DETRACTOR_MAX_RATING: notas até aqui vão para revisão manual.
const DETRACTOR_MAX_RATING = 6

// SatisfactionRating nasce com rating nulo no auto-close e é atualizada
// no lugar quando chega uma resposta válida.
type SatisfactionRating struct {
	ID             string     `gorm:"primary_key;type:varchar(36)" json:"id"`
	ConversationID string     `gorm:"column:conversation_id;not null;index" json:"conversation_id"`
	TenantID       string     `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Rating         *int       `json:"rating"`
	RawResponse    *string    `gorm:"column:raw_response;type:text" json:"raw_response"`
	PendingReview  bool       `gorm:"column:pending_review;not null" json:"pending_review"`
	RespondedAt    *time.Time `gorm:"column:responded_at" json:"responded_at"`
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

// ApplyResponse records an extracted rating and flags detractors.
func (r *SatisfactionRating) ApplyResponse(rating int, raw string, at time.Time) {
	r.Rating = &rating
	r.RawResponse = &raw
	r.PendingReview = rating <= DETRACTOR_MAX_RATING
	r.RespondedAt = &at
}
