// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package todolist defines the to-do list record model and the
// storage contract every list backend satisfies.
package todolist

import (
	"math"
	"strconv"
)

// Entry is a single item on a [List].
type Entry struct {
	Done bool   `json:"done"`
	Text string `json:"text"`
}

// List is a titled, ordered collection of [Entry]s.
//
// Lists are values. Stores never hand out references to the copy they
// hold, so mutating a List returned from a [Store] does not affect the
// stored record.
type List struct {
	Title   string  `json:"title"`
	Entries []Entry `json:"entries"`
}

// Clone returns a deep copy of l.
func (l List) Clone() List {
	c := List{Title: l.Title}
	if l.Entries != nil {
		c.Entries = make([]Entry, len(l.Entries))
		copy(c.Entries, l.Entries)
	}
	return c
}

// ID identifies a [List] within a single [Store].
// IDs are assigned by the store in allocation order and never reused.
type ID uint64

// MaxID is the largest representable [ID]. Once a store's next candidate
// equals MaxID the id space is considered exhausted.
const MaxID = ID(math.MaxUint64)

// String renders the id in base 10.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID parses a base 10 representation of an [ID].
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(n), nil
}
