package catalog

import (
	"fmt"
	"net/http"
)

// FetchError reports a failed page download. The chain aborts on it.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog: fetch %s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("catalog: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Code classifies the error for handler summaries.
func (e *FetchError) Code() string {
	if e.Status != 0 {
		return "fetch_http_status"
	}
	return "fetch_failed"
}
