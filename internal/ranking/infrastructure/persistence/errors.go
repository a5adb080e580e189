package persistence

import "errors"

// ErrConcurrentUpdate is returned when an optimistic update keeps losing
// to other writers.
var ErrConcurrentUpdate = errors.New("weight configuration changed concurrently")

// maxUpdateAttempts bounds optimistic read-modify-write retries.
const maxUpdateAttempts = 5
