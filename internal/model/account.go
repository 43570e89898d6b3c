package model

import "time"

type Account struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
