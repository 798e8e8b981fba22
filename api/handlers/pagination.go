package handlers

import (
	"net/http"
	"strconv"
)

const defaultLimit = 10

// getLimit parses the limit query param, falling back to the default when
// absent or not a positive integer.
func getLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	if limit > 100 {
		return 100
	}
	return limit
}

// getPage parses the zero-based page query param.
func getPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		return 0
	}
	return page
}
