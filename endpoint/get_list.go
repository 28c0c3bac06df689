// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"
	"net/http"

	"github.com/z5labs/todo/rest"
	"github.com/z5labs/todo/todolist"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type getListHandler struct {
	tracer trace.Tracer
	store  todolist.Store
}

// GetList registers GET /lists/{id}.
func GetList(store todolist.Store) rest.ApiOption {
	h := &getListHandler{
		tracer: otel.Tracer("github.com/z5labs/todo/endpoint"),
		store:  store,
	}

	return rest.Operation(
		http.MethodGet,
		listPath(),
		rest.ProduceJson(h),
		rest.Summary("Get a todo list"),
		rest.Returns(http.StatusBadRequest, "Invalid list id"),
		rest.Returns(http.StatusNotFound, "List does not exist"),
	)
}

// GetListResponse is a stored list along with its id.
type GetListResponse struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	Entries []todolist.Entry `json:"entries"`
}

func (h *getListHandler) Produce(ctx context.Context) (*GetListResponse, error) {
	spanCtx, span := h.tracer.Start(ctx, "getListHandler.Produce")
	defer span.End()

	id, err := listID(spanCtx)
	if err != nil {
		return nil, err
	}

	l, err := h.store.Get(spanCtx, id)
	if err != nil {
		return nil, storeError(id, err)
	}

	entries := l.Entries
	if entries == nil {
		entries = []todolist.Entry{}
	}

	return &GetListResponse{
		ID:      id.String(),
		Title:   l.Title,
		Entries: entries,
	}, nil
}
