package domain

import "errors"

// ErrModelNotFound is returned when a model ID cannot be resolved by a loader.
var ErrModelNotFound = errors.New("model not found")

// ErrUnknownElementType is returned when a timeline entry carries a type tag outside the closed element set.
var ErrUnknownElementType = errors.New("unknown element type")

// ErrInvalidProducerKey is returned when a producedBy reference is not of the form "<command>-<tick>".
var ErrInvalidProducerKey = errors.New("invalid producedBy key")
