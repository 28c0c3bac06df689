// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package rest registers typed HTTP operations on a chi router and
// describes them in an OpenAPI 3.0 document served at /openapi.json.
//
// An operation is a [Handler] from a request type to a response type. The
// request and response types know how to read and write themselves, which
// lets [Operation] derive both the wire handling and the OpenAPI schema:
//
//	api := rest.NewApi(
//	    "todo",
//	    "v1.0.0",
//	    rest.Operation(
//	        http.MethodGet,
//	        rest.BasePath("/lists").Param("id"),
//	        rest.ProduceJson(getList),
//	    ),
//	)
//
// Errors returned by handlers are rendered as RFC 7807 problem details by
// default. See [ProblemDetailsErrorHandler].
package rest
