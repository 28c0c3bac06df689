// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/z5labs/todo"

	"github.com/swaggest/openapi-go/openapi3"
	"github.com/z5labs/sdk-go/try"
)

const problemContentType = "application/problem+json"

// internalErrorDetail is the only detail exposed for errors which do not
// describe themselves as a [ProblemDetail].
const internalErrorDetail = "An internal server error occurred."

// ProblemDetail is an RFC 7807 problem details body. Embed it in an error
// type to add extension members:
//
//	type ListNotFoundError struct {
//	    rest.ProblemDetail
//	    ListID string `json:"list_id"`
//	}
//
// Reference: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Error implements the [error] interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

type problemDetailMarker interface {
	statusCode() int
}

func (p ProblemDetail) statusCode() int {
	return p.Status
}

// ProblemDetailsErrorHandler renders errors as RFC 7807 problem details.
//
// Errors are classified in three tiers:
//  1. Errors embedding [ProblemDetail] are encoded as is, extension members included.
//  2. [BadRequestError]s become 400s typed by their cause.
//  3. Anything else becomes a 500 with a fixed detail message, so internal
//     error text never reaches clients.
//
// Every error is logged before the response is written.
type ProblemDetailsErrorHandler struct {
	defaultType string
	log         *slog.Logger
}

// ProblemDetailsOption configures a [ProblemDetailsErrorHandler].
type ProblemDetailsOption func(*ProblemDetailsErrorHandler)

// WithDefaultType sets the base URI that problem type names are appended to.
// Defaults to "about:blank", in which case every type is "about:blank".
func WithDefaultType(uri string) ProblemDetailsOption {
	return func(h *ProblemDetailsErrorHandler) {
		h.defaultType = uri
	}
}

// NewProblemDetailsErrorHandler creates a [ProblemDetailsErrorHandler].
func NewProblemDetailsErrorHandler(opts ...ProblemDetailsOption) *ProblemDetailsErrorHandler {
	h := &ProblemDetailsErrorHandler{
		defaultType: "about:blank",
		log:         todo.Logger("github.com/z5labs/todo/rest"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnError implements the [ErrorHandler] interface.
func (h *ProblemDetailsErrorHandler) OnError(ctx context.Context, w http.ResponseWriter, err error) {
	var body any
	var status int

	// Non-error panic values make PanicError.Unwrap panic, so a panic must
	// be matched before anything walks further down the chain.
	var panicErr try.PanicError
	var marker problemDetailMarker
	if errors.As(err, &panicErr) {
		pd := h.internalError()
		body, status = pd, pd.Status
	} else if errors.As(err, &marker) {
		body, status = marker, marker.statusCode()
	} else {
		pd := h.classify(err)
		body, status = pd, pd.Status
	}

	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(ctx, "sending error response", slog.Int("status", status), slog.Any("error", err))
	} else {
		h.log.WarnContext(ctx, "sending error response", slog.Int("status", status), slog.Any("error", err))
	}

	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(status)

	encErr := json.NewEncoder(w).Encode(body)
	if encErr != nil {
		h.log.ErrorContext(ctx, "failed to encode problem details", slog.Any("error", encErr))
	}
}

func (h *ProblemDetailsErrorHandler) internalError() ProblemDetail {
	return ProblemDetail{
		Type:   h.typeURI("internal-error"),
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
		Detail: internalErrorDetail,
	}
}

func (h *ProblemDetailsErrorHandler) classify(err error) ProblemDetail {
	var badRequest BadRequestError
	if !errors.As(err, &badRequest) {
		return h.internalError()
	}

	pd := ProblemDetail{
		Type:   h.typeURI("bad-request"),
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
		Detail: "The request could not be understood.",
	}

	var missingParam MissingRequiredParameterError
	var invalidParam InvalidParameterValueError
	var invalidContentType InvalidContentTypeError
	switch {
	case errors.As(badRequest.Cause, &missingParam):
		pd.Type = h.typeURI("missing-required-parameter")
		pd.Title = "Missing Required Parameter"
		pd.Detail = missingParam.Error()
	case errors.As(badRequest.Cause, &invalidParam):
		pd.Type = h.typeURI("invalid-parameter-value")
		pd.Title = "Invalid Parameter Value"
		pd.Detail = invalidParam.Error()
	case errors.As(badRequest.Cause, &invalidContentType):
		pd.Type = h.typeURI("invalid-content-type")
		pd.Title = "Invalid Content Type"
		pd.Detail = invalidContentType.Error()
	}
	return pd
}

func (h *ProblemDetailsErrorHandler) typeURI(problemType string) string {
	if h.defaultType == "about:blank" {
		return h.defaultType
	}
	return h.defaultType + problemType
}

func problemResponseSpec(description string) openapi3.ResponseOrRef {
	schema, err := jsonSchemaOf[ProblemDetail]()
	if err != nil {
		panic(err)
	}

	return openapi3.ResponseOrRef{
		Response: &openapi3.Response{
			Description: description,
			Content: map[string]openapi3.MediaType{
				problemContentType: {Schema: schema},
			},
		},
	}
}
