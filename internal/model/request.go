package model

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateTodoRequest struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// UpdateTodoRequest carries a partial update; absent fields are left
// untouched.
type UpdateTodoRequest struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}
