// Package api holds response bodies shared by every HTTP handler.
package api

// ErrorResponse is the JSON body written for any non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
