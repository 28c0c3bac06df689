// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"io"
	"net/http"

	"github.com/swaggest/openapi-go/openapi3"
	"github.com/z5labs/sdk-go/ptr"
)

// TextResponse writes a 200 text/plain body.
type TextResponse struct {
	Body string
}

// Spec implements the [TypedResponse] interface.
func (*TextResponse) Spec() (int, openapi3.ResponseOrRef, error) {
	return http.StatusOK, openapi3.ResponseOrRef{
		Response: &openapi3.Response{
			Description: http.StatusText(http.StatusOK),
			Content: map[string]openapi3.MediaType{
				"text/plain": {
					Schema: &openapi3.SchemaOrRef{
						Schema: &openapi3.Schema{
							Type: ptr.Ref(openapi3.SchemaTypeString),
						},
					},
				},
			},
		},
	}, nil
}

// WriteResponse implements the [ResponseWriter] interface.
func (tr *TextResponse) WriteResponse(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	_, err := io.WriteString(w, tr.Body)
	return err
}
