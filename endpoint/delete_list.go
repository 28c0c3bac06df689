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
	"go.opentelemetry.io/otel/trace"
)

type deleteListHandler struct {
	tracer trace.Tracer
	log    *slog.Logger
	store  todolist.Store
}

// DeleteList registers DELETE /lists/{id}.
func DeleteList(store todolist.Store) rest.ApiOption {
	h := &deleteListHandler{
		tracer: otel.Tracer("github.com/z5labs/todo/endpoint"),
		log:    todo.Logger("github.com/z5labs/todo/endpoint"),
		store:  store,
	}

	return rest.Operation(
		http.MethodDelete,
		listPath(),
		h,
		rest.Summary("Delete a todo list"),
		rest.Returns(http.StatusBadRequest, "Invalid list id"),
		rest.Returns(http.StatusNotFound, "List does not exist"),
	)
}

func (h *deleteListHandler) Handle(ctx context.Context, _ *rest.EmptyRequest) (*rest.EmptyResponse, error) {
	spanCtx, span := h.tracer.Start(ctx, "deleteListHandler.Handle")
	defer span.End()

	id, err := listID(spanCtx)
	if err != nil {
		return nil, err
	}

	err = h.store.Delete(spanCtx, id)
	if err != nil {
		return nil, storeError(id, err)
	}

	h.log.InfoContext(spanCtx, "deleted todo list", slog.String("list_id", id.String()))
	return &rest.EmptyResponse{}, nil
}
