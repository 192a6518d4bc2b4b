package ingest

import "fmt"

// FetchError is returned by every failed forecast or historical fetch.
type FetchError struct {
	Op  string // "forecast" or "historical"
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch failed: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
