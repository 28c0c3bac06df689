// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/z5labs/todo"
	"github.com/z5labs/todo/rest"
	"github.com/z5labs/todo/todolist"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type createListHandler struct {
	tracer trace.Tracer
	log    *slog.Logger
	store  todolist.Store
}

// CreateList registers POST /lists.
func CreateList(store todolist.Store) rest.ApiOption {
	h := &createListHandler{
		tracer: otel.Tracer("github.com/z5labs/todo/endpoint"),
		log:    todo.Logger("github.com/z5labs/todo/endpoint"),
		store:  store,
	}

	return rest.Operation(
		http.MethodPost,
		rest.BasePath("/lists"),
		rest.HandleJson(h),
		rest.Summary("Create a todo list"),
		rest.Returns(http.StatusBadRequest, "Malformed request body"),
		rest.Returns(http.StatusInternalServerError, "No list could be created"),
	)
}

// CreateListResponse carries the id assigned to a new list.
type CreateListResponse struct {
	ID string `json:"id"`
}

func (h *createListHandler) Handle(ctx context.Context, req *ListBody) (*CreateListResponse, error) {
	spanCtx, span := h.tracer.Start(ctx, "createListHandler.Handle")
	defer span.End()

	id, err := h.store.Create(spanCtx, req.list())
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("todo.list.id", id.String()))

	h.log.InfoContext(spanCtx, "created todo list", slog.String("list_id", id.String()))

	return &CreateListResponse{ID: id.String()}, nil
}
