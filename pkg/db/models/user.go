package models

import "time"

// User is an identifier-only entity, created implicitly the first time a
// cart is requested for an unknown user id.
type User struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
