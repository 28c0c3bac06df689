// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"path"
)

// PathElement is one component of a [Path].
type PathElement interface {
	pathElement() string
}

// PathSegment is a static component of a [Path].
type PathSegment string

func (s PathSegment) pathElement() string {
	return string(s)
}

type pathParam struct {
	name string
	opts []ParameterOption
}

func (p pathParam) pathElement() string {
	return "{" + p.name + "}"
}

// Path is a URL path made of static segments and named parameters.
type Path []PathElement

// BasePath starts a [Path] with the static segment s.
func BasePath(s string) Path {
	return Path{PathSegment(s)}
}

// Segment appends a static segment.
func (p Path) Segment(s string) Path {
	return append(p, PathSegment(s))
}

// Param appends a named parameter. Its value is made available to the
// operation through [PathParamValue].
//
//	rest.BasePath("/lists").Param("id", rest.Regex(regexp.MustCompile(`^\d+$`)))
//	// /lists/{id}
func (p Path) Param(name string, opts ...ParameterOption) Path {
	return append(p, pathParam{name: name, opts: opts})
}

// String renders the path in chi and OpenAPI syntax.
func (p Path) String() string {
	ss := make([]string, len(p))
	for i, el := range p {
		ss[i] = el.pathElement()
	}
	return path.Join(ss...)
}
