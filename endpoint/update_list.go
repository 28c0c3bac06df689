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

type updateListHandler struct {
	tracer trace.Tracer
	log    *slog.Logger
	store  todolist.Store
}

// UpdateList registers PUT /lists/{id}. The body replaces the stored list.
func UpdateList(store todolist.Store) rest.ApiOption {
	h := &updateListHandler{
		tracer: otel.Tracer("github.com/z5labs/todo/endpoint"),
		log:    todo.Logger("github.com/z5labs/todo/endpoint"),
		store:  store,
	}

	return rest.Operation(
		http.MethodPut,
		listPath(),
		rest.ConsumeOnlyJson(h),
		rest.Summary("Replace a todo list"),
		rest.Returns(http.StatusBadRequest, "Invalid list id or malformed request body"),
		rest.Returns(http.StatusNotFound, "List does not exist"),
	)
}

func (h *updateListHandler) Consume(ctx context.Context, req *ListBody) error {
	spanCtx, span := h.tracer.Start(ctx, "updateListHandler.Consume")
	defer span.End()

	id, err := listID(spanCtx)
	if err != nil {
		return err
	}

	err = h.store.Update(spanCtx, id, req.list())
	if err != nil {
		return storeError(id, err)
	}

	h.log.InfoContext(spanCtx, "updated todo list", slog.String("list_id", id.String()))
	return nil
}
