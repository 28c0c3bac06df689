// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package endpoint exposes a [todolist.Store] over HTTP.
package endpoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/z5labs/todo/rest"
	"github.com/z5labs/todo/todolist"
)

var listIDPattern = regexp.MustCompile(`^[0-9]+$`)

func listPath() rest.Path {
	return rest.BasePath("/lists").Param("id", rest.Regex(listIDPattern))
}

// listID reads the id path parameter. Values outside the uint64 range pass
// the path pattern but are still rejected here.
func listID(ctx context.Context) (todolist.ID, error) {
	id, err := todolist.ParseID(rest.PathParamValue(ctx, "id"))
	if err != nil {
		return 0, rest.BadRequestError{
			Cause: rest.InvalidParameterValueError{
				Parameter: "id",
				In:        "path",
			},
		}
	}
	return id, nil
}

// ListNotFoundError is the problem details body for an unknown list id.
type ListNotFoundError struct {
	rest.ProblemDetail

	ListID string `json:"list_id"`
}

// storeError translates a store failure into an HTTP error. Anything
// other than a missing list is left for the generic 500 response.
func storeError(id todolist.ID, err error) error {
	if !errors.Is(err, todolist.ErrNotFound) {
		return err
	}

	return ListNotFoundError{
		ProblemDetail: rest.ProblemDetail{
			Type:   "about:blank",
			Title:  "List Not Found",
			Status: http.StatusNotFound,
			Detail: fmt.Sprintf("todo list %s does not exist", id),
		},
		ListID: id.String(),
	}
}

// ListBody is the JSON form of a list sent by clients.
type ListBody struct {
	Title   string           `json:"title"`
	Entries []todolist.Entry `json:"entries"`
}

func (b ListBody) list() todolist.List {
	return todolist.List{
		Title:   b.Title,
		Entries: b.Entries,
	}
}
