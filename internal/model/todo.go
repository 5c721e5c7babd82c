package model

import "time"

type Todo struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TodoFilter narrows a todo listing. Completed is a tri-state: nil means
// "either".
type TodoFilter struct {
	Completed *bool
	Query     string
}
