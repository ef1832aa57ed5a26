package domain

import "errors"

// ErrNotFound is returned when the requested day, share token or owner data
// does not exist in the store.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. duplicate location ids, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidReference is returned by a move whose source or target day does
// not exist, or whose source and target are the same day. It is always
// raised before any store I/O.
var ErrInvalidReference = errors.New("invalid reference")

// ErrInvalidTransition is returned when a lifecycle transition is not valid
// from the day's current state (publishing a published day, reverting a draft).
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// ErrBusy is returned when a write targets a day that already has a write
// outstanding in the same session.
var ErrBusy = errors.New("operation in progress")

// ErrReadOnly is returned when a viewer session attempts a write.
var ErrReadOnly = errors.New("read-only session")

// ErrTransport is returned when the store is unreachable, rejects a write, or
// cannot provide the atomicity an operation requires. The session keeps its
// prior state; the caller may retry the same action.
var ErrTransport = errors.New("transport failure")

// ErrPartialSeed is returned when first-time seeding of an owner's itinerary
// did not complete as one batch. It is fatal to that bootstrap attempt.
var ErrPartialSeed = errors.New("partial seed failure")
