// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"
	"net/http"

	"github.com/z5labs/todo/rest"
)

// Index answers GET / so that probing the root of the service does not 404.
func Index() rest.ApiOption {
	return rest.Operation(
		http.MethodGet,
		rest.BasePath("/"),
		rest.ConsumeNothing(rest.ProducerFunc[rest.TextResponse](func(ctx context.Context) (*rest.TextResponse, error) {
			return &rest.TextResponse{Body: "Nothing here."}, nil
		})),
		rest.Summary("Service index"),
	)
}
