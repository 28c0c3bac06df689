// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"

	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/z5labs/sdk-go/ptr"
	"github.com/z5labs/sdk-go/try"
)

const jsonContentType = "application/json"

func jsonSchemaOf[T any]() (*openapi3.SchemaOrRef, error) {
	var t T
	var reflector jsonschema.Reflector

	schema, err := reflector.Reflect(t, jsonschema.InlineRefs)
	if err != nil {
		return nil, err
	}

	var schemaOrRef openapi3.SchemaOrRef
	schemaOrRef.FromJSONSchema(schema.ToSchemaOrBool())
	return &schemaOrRef, nil
}

// JsonResponse writes a T as a 200 application/json body.
type JsonResponse[T any] struct {
	inner *T
}

// Spec implements the [TypedResponse] interface.
func (*JsonResponse[T]) Spec() (int, openapi3.ResponseOrRef, error) {
	schema, err := jsonSchemaOf[T]()
	if err != nil {
		return 0, openapi3.ResponseOrRef{}, err
	}

	return http.StatusOK, openapi3.ResponseOrRef{
		Response: &openapi3.Response{
			Description: http.StatusText(http.StatusOK),
			Content: map[string]openapi3.MediaType{
				jsonContentType: {Schema: schema},
			},
		},
	}, nil
}

// WriteResponse implements the [ResponseWriter] interface.
func (jr *JsonResponse[T]) WriteResponse(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(http.StatusOK)

	return json.NewEncoder(w).Encode(jr.inner)
}

// ReturnJsonHandler adapts a [Handler] to respond with JSON.
type ReturnJsonHandler[Req, Resp any] struct {
	inner Handler[Req, Resp]
}

// ReturnJson initializes a [ReturnJsonHandler].
func ReturnJson[Req, Resp any](h Handler[Req, Resp]) *ReturnJsonHandler[Req, Resp] {
	return &ReturnJsonHandler[Req, Resp]{inner: h}
}

// Handle implements the [Handler] interface.
func (h *ReturnJsonHandler[Req, Resp]) Handle(ctx context.Context, req *Req) (*JsonResponse[Resp], error) {
	resp, err := h.inner.Handle(ctx, req)
	if err != nil {
		return nil, err
	}
	return &JsonResponse[Resp]{inner: resp}, nil
}

// InvalidContentTypeError is returned, wrapped in a [BadRequestError],
// when a request body is not of the expected media type.
type InvalidContentTypeError struct {
	ContentType string
}

func (e InvalidContentTypeError) Error() string {
	return "invalid content type for request: " + e.ContentType
}

// JsonRequest reads a T from an application/json request body.
type JsonRequest[T any] struct {
	inner T
}

// Spec implements the [TypedRequest] interface.
func (*JsonRequest[T]) Spec() (openapi3.RequestBodyOrRef, error) {
	schema, err := jsonSchemaOf[T]()
	if err != nil {
		return openapi3.RequestBodyOrRef{}, err
	}

	return openapi3.RequestBodyOrRef{
		RequestBody: &openapi3.RequestBody{
			Required: ptr.Ref(true),
			Content: map[string]openapi3.MediaType{
				jsonContentType: {Schema: schema},
			},
		},
	}, nil
}

// ReadRequest implements the [RequestReader] interface. Media type
// parameters such as charset are accepted.
func (jr *JsonRequest[T]) ReadRequest(ctx context.Context, r *http.Request) (err error) {
	defer try.Close(&err, r.Body)

	contentType := r.Header.Get("Content-Type")
	mediaType, _, parseErr := mime.ParseMediaType(contentType)
	if parseErr != nil || mediaType != jsonContentType {
		return BadRequestError{
			Cause: InvalidContentTypeError{ContentType: contentType},
		}
	}

	err = json.NewDecoder(r.Body).Decode(&jr.inner)
	if err != nil {
		return BadRequestError{Cause: err}
	}
	return nil
}

// ConsumeJsonHandler adapts a [Handler] to read its request from JSON.
type ConsumeJsonHandler[Req, Resp any] struct {
	inner Handler[Req, Resp]
}

// ConsumeJson initializes a [ConsumeJsonHandler].
func ConsumeJson[Req, Resp any](h Handler[Req, Resp]) *ConsumeJsonHandler[Req, Resp] {
	return &ConsumeJsonHandler[Req, Resp]{inner: h}
}

// Handle implements the [Handler] interface.
func (h *ConsumeJsonHandler[Req, Resp]) Handle(ctx context.Context, req *JsonRequest[Req]) (*Resp, error) {
	return h.inner.Handle(ctx, &req.inner)
}

// HandleJson reads a JSON request and writes a JSON response.
func HandleJson[Req, Resp any](h Handler[Req, Resp]) *ConsumeJsonHandler[Req, JsonResponse[Resp]] {
	return ConsumeJson(ReturnJson(h))
}

// ProduceJson writes a JSON response without reading a request body.
func ProduceJson[T any](p Producer[T]) *ReturnJsonHandler[EmptyRequest, T] {
	return ReturnJson(ConsumeNothing(p))
}

// ConsumeOnlyJson reads a JSON request and writes an empty response.
func ConsumeOnlyJson[T any](c Consumer[T]) *ConsumeJsonHandler[T, EmptyResponse] {
	return ConsumeJson(ProduceNothing(c))
}
