// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

var (
	// ErrData marks malformed or missing source data: absent columns,
	// unmapped categorical values, unparseable temperature ranges. It is
	// fatal at load time.
	ErrData = errors.New("data error")

	// ErrParse marks a value that could not be parsed as a number or range.
	ErrParse = errors.New("parse error")

	// ErrSchemaMismatch marks a vector whose shape does not match the
	// feature schema.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrEmptyDataset marks a similarity search against zero reference rows.
	ErrEmptyDataset = errors.New("empty reference dataset")
)

// DataError locates a data problem in a source table.
type DataError struct {
	Source string
	Row    int
	Column string
	Err    error
}

func (e *DataError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("%s row %d, column %q: %v", e.Source, e.Row, e.Column, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("%s row %d: %v", e.Source, e.Row, e.Err)
	case e.Column != "":
		return fmt.Sprintf("%s column %q: %v", e.Source, e.Column, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	}
}

// Unwrap lets errors.Is see both ErrData and the underlying cause.
func (e *DataError) Unwrap() []error {
	return []error{ErrData, e.Err}
}

// LookupMiss reports that a city, region, category, or project was not
// found. It is a result value rather than an error so callers can render
// the message as guidance.
type LookupMiss struct {
	Kind    MissKind `json:"kind" yaml:"kind"`
	Key     string   `json:"key" yaml:"key"`
	Message string   `json:"message" yaml:"message"`
}

// MissKind distinguishes the reasons a lookup can come back empty.
type MissKind string

const (
	MissCity     MissKind = "city"
	MissCategory MissKind = "category"
	MissRegion   MissKind = "region"
	MissNoRows   MissKind = "no_rows"
	MissProject  MissKind = "project"
)

func (m *LookupMiss) String() string {
	if m == nil {
		return ""
	}
	return m.Message
}
