package entity

import "time"

// TokenID maps an externally assigned numeric id to a token identifier.
type TokenID struct {
	ID        uint64    `db:"id" json:"id"`
	Token     string    `db:"token" json:"token"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (TokenID) TableName() string {
	return "token_ids"
}
