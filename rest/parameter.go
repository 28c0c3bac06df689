// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/z5labs/sdk-go/ptr"
)

// Header declares a request header read by the operation.
func Header(name string, opts ...ParameterOption) OperationOption {
	return param(name, openapi3.ParameterInHeader, opts...)
}

// QueryParam declares a URL query parameter read by the operation.
func QueryParam(name string, opts ...ParameterOption) OperationOption {
	return param(name, openapi3.ParameterInQuery, opts...)
}

type paramCtxKey struct {
	name string
	in   openapi3.ParameterIn
}

// PathParamValue returns the value of the path parameter name for the
// current request, or "" if the operation did not declare it.
func PathParamValue(ctx context.Context, name string) string {
	v, _ := ctx.Value(paramCtxKey{name: name, in: openapi3.ParameterInPath}).([]string)
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// HeaderValue returns the values of the declared header name.
func HeaderValue(ctx context.Context, name string) []string {
	v, _ := ctx.Value(paramCtxKey{name: http.CanonicalHeaderKey(name), in: openapi3.ParameterInHeader}).([]string)
	return v
}

// QueryParamValue returns the values of the declared query parameter name.
func QueryParamValue(ctx context.Context, name string) []string {
	v, _ := ctx.Value(paramCtxKey{name: name, in: openapi3.ParameterInQuery}).([]string)
	return v
}

func extractParam(name string, in openapi3.ParameterIn) func(*http.Request) []string {
	switch in {
	case openapi3.ParameterInPath:
		return func(r *http.Request) []string {
			v := chi.URLParam(r, name)
			if v == "" {
				return nil
			}
			return []string{v}
		}
	case openapi3.ParameterInHeader:
		return func(r *http.Request) []string {
			return r.Header.Values(name)
		}
	case openapi3.ParameterInQuery:
		return func(r *http.Request) []string {
			return r.URL.Query()[name]
		}
	default:
		panic("unsupported parameter location: " + in)
	}
}

func param(name string, in openapi3.ParameterIn, opts ...ParameterOption) OperationOption {
	return func(oo *OperationOptions) {
		key := paramCtxKey{name: name, in: in}
		if in == openapi3.ParameterInHeader {
			key.name = http.CanonicalHeaderKey(name)
		}

		po := &ParameterOptions{
			extract: extractParam(name, in),
			def: &openapi3.Parameter{
				Name: name,
				In:   in,
			},
		}
		for _, opt := range opts {
			opt(po)
		}

		oo.transforms = append(oo.transforms, func(r *http.Request) (*http.Request, error) {
			values := po.extract(r)
			for _, validate := range po.validators {
				err := validate(values)
				if err != nil {
					return nil, BadRequestError{Cause: err}
				}
			}
			return r.WithContext(context.WithValue(r.Context(), key, values)), nil
		})

		oo.parameters = append(oo.parameters, openapi3.ParameterOrRef{
			Parameter: po.def,
		})
	}
}

// ParameterOptions is what a [ParameterOption] configures.
type ParameterOptions struct {
	extract    func(*http.Request) []string
	validators []func([]string) error
	def        *openapi3.Parameter
}

// ParameterOption configures a parameter declared with [Header],
// [QueryParam] or [Path.Param].
type ParameterOption func(*ParameterOptions)

// MissingRequiredParameterError is returned, wrapped in a [BadRequestError],
// when a [Required] parameter is absent.
type MissingRequiredParameterError struct {
	Parameter string
	In        string
}

func (e MissingRequiredParameterError) Error() string {
	return fmt.Sprintf("missing required request parameter in %s: %s", e.In, e.Parameter)
}

// Required rejects requests where the parameter is absent.
func Required() ParameterOption {
	return func(po *ParameterOptions) {
		po.def.Required = ptr.Ref(true)

		name, in := po.def.Name, string(po.def.In)
		po.validators = append(po.validators, func(values []string) error {
			if len(values) == 0 {
				return MissingRequiredParameterError{Parameter: name, In: in}
			}
			return nil
		})
	}
}

// InvalidParameterValueError is returned, wrapped in a [BadRequestError],
// when a parameter value is malformed.
type InvalidParameterValueError struct {
	Parameter string
	In        string
}

func (e InvalidParameterValueError) Error() string {
	return fmt.Sprintf("invalid parameter value in %s: %s", e.In, e.Parameter)
}

// Regex rejects requests where any value of the parameter does not match re.
// The pattern is also published in the OpenAPI schema of the parameter.
func Regex(re *regexp.Regexp) ParameterOption {
	return func(po *ParameterOptions) {
		po.def.Schema = &openapi3.SchemaOrRef{
			Schema: &openapi3.Schema{
				Type:    ptr.Ref(openapi3.SchemaTypeString),
				Pattern: ptr.Ref(re.String()),
			},
		}

		name, in := po.def.Name, string(po.def.In)
		po.validators = append(po.validators, func(values []string) error {
			for _, v := range values {
				if !re.MatchString(v) {
					return InvalidParameterValueError{Parameter: name, In: in}
				}
			}
			return nil
		})
	}
}
