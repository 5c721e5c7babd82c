package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"go-todo-api/internal/model"
	"go-todo-api/pkg/apierror"
)

const (
	minDescriptionLength = 1
	maxDescriptionLength = 250
)

type TodoStore interface {
	Create(ctx context.Context, todo model.Todo) error
	FindByID(ctx context.Context, id string, userID string) (model.Todo, error)
	List(ctx context.Context, userID string, filter model.TodoFilter) ([]model.Todo, error)
	Update(ctx context.Context, todo model.Todo) error
	Delete(ctx context.Context, id string, userID string) error
}

// TodoService owns todo CRUD. Every operation is scoped to the
// authenticated user's id; a todo belonging to someone else is
// indistinguishable from a missing one.
type TodoService struct {
	todos TodoStore
}

func NewTodoService(todos TodoStore) *TodoService {
	return &TodoService{todos: todos}
}

func (s *TodoService) Create(ctx context.Context, userID string, req model.CreateTodoRequest) (model.Todo, error) {
	if err := validateDescription(req.Description); err != nil {
		return model.Todo{}, err
	}

	now := time.Now().UTC()
	todo := model.Todo{
		ID:          uuid.NewString(),
		UserID:      userID,
		Description: req.Description,
		Completed:   req.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.todos.Create(ctx, todo); err != nil {
		return model.Todo{}, fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}
	return todo, nil
}

func (s *TodoService) Get(ctx context.Context, userID string, id string) (model.Todo, error) {
	todo, err := s.todos.FindByID(ctx, id, userID)
	if err != nil {
		return model.Todo{}, wrapTodoStoreErr(err)
	}
	return todo, nil
}

func (s *TodoService) List(ctx context.Context, userID string, filter model.TodoFilter) ([]model.Todo, error) {
	todos, err := s.todos.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}
	return todos, nil
}

func (s *TodoService) Update(ctx context.Context, userID string, id string, req model.UpdateTodoRequest) (model.Todo, error) {
	todo, err := s.todos.FindByID(ctx, id, userID)
	if err != nil {
		return model.Todo{}, wrapTodoStoreErr(err)
	}

	if req.Description != nil {
		if err := validateDescription(*req.Description); err != nil {
			return model.Todo{}, err
		}
		todo.Description = *req.Description
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}
	todo.UpdatedAt = time.Now().UTC()

	if err := s.todos.Update(ctx, todo); err != nil {
		return model.Todo{}, wrapTodoStoreErr(err)
	}
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, userID string, id string) error {
	if err := s.todos.Delete(ctx, id, userID); err != nil {
		return wrapTodoStoreErr(err)
	}
	return nil
}

func validateDescription(description string) error {
	n := len([]rune(description))
	if n < minDescriptionLength || n > maxDescriptionLength {
		return apierror.Validation(
			fmt.Sprintf("description must be between %d and %d characters", minDescriptionLength, maxDescriptionLength),
			"description")
	}
	return nil
}

func wrapTodoStoreErr(err error) error {
	if errors.Is(err, model.ErrTodoNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}
