package ports

import "net/http"

// HTTPClient sends webhook requests for the http sink. *http.Client
// satisfies it; tests substitute a round-tripper.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
