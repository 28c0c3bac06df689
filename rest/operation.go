// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/swaggest/openapi-go/openapi3"
	"github.com/z5labs/sdk-go/try"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// OperationOptions is what an [OperationOption] configures.
type OperationOptions struct {
	summary    string
	parameters []openapi3.ParameterOrRef
	transforms []func(*http.Request) (*http.Request, error)
	responses  []errorResponse
	errHandler ErrorHandler
}

type errorResponse struct {
	status      int
	description string
}

// OperationOption configures an operation registered with [Operation].
type OperationOption func(*OperationOptions)

// OnError replaces the default [ProblemDetailsErrorHandler] for an operation.
func OnError(eh ErrorHandler) OperationOption {
	return func(oo *OperationOptions) {
		oo.errHandler = eh
	}
}

// Summary sets the OpenAPI summary of an operation.
func Summary(s string) OperationOption {
	return func(oo *OperationOptions) {
		oo.summary = s
	}
}

// Returns documents an additional problem details response which the
// operation may produce.
func Returns(status int, description string) OperationOption {
	return func(oo *OperationOptions) {
		oo.responses = append(oo.responses, errorResponse{
			status:      status,
			description: description,
		})
	}
}

// Handler holds the core logic of an operation.
type Handler[Req, Resp any] interface {
	Handle(context.Context, *Req) (*Resp, error)
}

// HandlerFunc is a func type of the [Handler] interface.
type HandlerFunc[Req, Resp any] func(context.Context, *Req) (*Resp, error)

// Handle implements the [Handler] interface.
func (f HandlerFunc[Req, Resp]) Handle(ctx context.Context, req *Req) (*Resp, error) {
	return f(ctx, req)
}

// RequestReader is implemented by types which can read themselves from
// a [http.Request].
type RequestReader[T any] interface {
	*T

	ReadRequest(context.Context, *http.Request) error
}

// TypedRequest is a [RequestReader] which can describe itself in OpenAPI.
type TypedRequest[T any] interface {
	RequestReader[T]

	Spec() (openapi3.RequestBodyOrRef, error)
}

// ResponseWriter is implemented by types which can write themselves to
// a [http.ResponseWriter].
type ResponseWriter[T any] interface {
	*T

	WriteResponse(context.Context, http.ResponseWriter) error
}

// TypedResponse is a [ResponseWriter] which can describe itself in OpenAPI.
type TypedResponse[T any] interface {
	ResponseWriter[T]

	Spec() (int, openapi3.ResponseOrRef, error)
}

type operation[I, O any, Req TypedRequest[I], Resp TypedResponse[O]] struct {
	tracer     trace.Tracer
	errHandler ErrorHandler
	transforms []func(*http.Request) (*http.Request, error)
	handler    Handler[I, O]
}

// Operation registers h under method and path. Path parameters declared
// with [Path.Param] are extracted before h is called and can be read with
// [PathParamValue].
//
// Operation panics if the OpenAPI description of the operation cannot be
// built, which only happens for invalid request or response types.
func Operation[I, O any, Req TypedRequest[I], Resp TypedResponse[O]](method string, path Path, h Handler[I, O], opts ...OperationOption) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		for _, el := range path {
			v, ok := el.(pathParam)
			if !ok {
				continue
			}

			pathOpts := append([]ParameterOption{Required()}, v.opts...)
			opts = append([]OperationOption{param(v.name, openapi3.ParameterInPath, pathOpts...)}, opts...)
		}

		oo := &OperationOptions{
			errHandler: NewProblemDetailsErrorHandler(),
		}
		for _, opt := range opts {
			opt(oo)
		}

		var req Req
		requestBodySpec, err := req.Spec()
		if err != nil {
			panic(err)
		}

		var resp Resp
		status, respSpec, err := resp.Spec()
		if err != nil {
			panic(err)
		}

		responses := map[string]openapi3.ResponseOrRef{
			strconv.Itoa(status): respSpec,
		}
		for _, er := range oo.responses {
			responses[strconv.Itoa(er.status)] = problemResponseSpec(er.description)
		}

		op := openapi3.Operation{
			Responses: openapi3.Responses{
				MapOfResponseOrRefValues: responses,
			},
			Parameters: oo.parameters,
		}
		if oo.summary != "" {
			op.Summary = &oo.summary
		}
		if requestBodySpec.RequestBody != nil || requestBodySpec.RequestBodyReference != nil {
			op.RequestBody = &requestBodySpec
		}

		endpoint := path.String()

		err = ao.def.AddOperation(method, endpoint, op)
		if err != nil {
			panic(err)
		}

		ao.mux.Method(method, endpoint, otelhttp.WithRouteTag(endpoint, &operation[I, O, Req, Resp]{
			tracer:     otel.Tracer("github.com/z5labs/todo/rest"),
			errHandler: oo.errHandler,
			transforms: oo.transforms,
			handler:    h,
		}))
	})
}

// ServeHTTP implements the [http.Handler] interface.
func (o *operation[I, O, Req, Resp]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var err error
	defer func() {
		if err == nil {
			return
		}

		o.errHandler.OnError(ctx, w, err)
	}()
	defer try.Recover(&err)

	for _, transform := range o.transforms {
		r, err = transform(r)
		if err != nil {
			return
		}
	}
	ctx = r.Context()

	req, err := o.readRequest(ctx, r)
	if err != nil {
		return
	}

	resp, err := o.handler.Handle(ctx, &req)
	if err != nil {
		return
	}

	err = o.writeResponse(ctx, w, resp)
}

func (o *operation[I, O, Req, Resp]) readRequest(ctx context.Context, r *http.Request) (I, error) {
	spanCtx, span := o.tracer.Start(ctx, "operation.readRequest")
	defer span.End()

	var req I
	err := Req(&req).ReadRequest(spanCtx, r)
	return req, err
}

func (o *operation[I, O, Req, Resp]) writeResponse(ctx context.Context, w http.ResponseWriter, resp Resp) error {
	spanCtx, span := o.tracer.Start(ctx, "operation.writeResponse")
	defer span.End()

	return resp.WriteResponse(spanCtx, w)
}
