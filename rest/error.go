// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"fmt"
	"net/http"
)

// HttpResponseWriter is implemented by errors which know their HTTP status.
type HttpResponseWriter interface {
	WriteHttpResponse(context.Context, http.ResponseWriter)
}

// ErrorHandler writes the response for an error returned while serving
// an operation.
type ErrorHandler interface {
	OnError(context.Context, http.ResponseWriter, error)
}

// ErrorHandlerFunc is a func type of the [ErrorHandler] interface.
type ErrorHandlerFunc func(context.Context, http.ResponseWriter, error)

// OnError implements the [ErrorHandler] interface.
func (f ErrorHandlerFunc) OnError(ctx context.Context, w http.ResponseWriter, err error) {
	f(ctx, w, err)
}

// BadRequestError marks a failure caused by the client's request.
type BadRequestError struct {
	Cause error
}

func (e BadRequestError) Error() string {
	return fmt.Sprintf("bad request error: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e BadRequestError) Unwrap() error {
	return e.Cause
}

// WriteHttpResponse implements the [HttpResponseWriter] interface.
func (e BadRequestError) WriteHttpResponse(ctx context.Context, w http.ResponseWriter) {
	w.WriteHeader(http.StatusBadRequest)
}
