package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pageQuery reads pageNo, pageSize, sortBy and sortDir from the query string.
// Malformed numbers fall back to zero.
func pageQuery(r *http.Request) models.PageQuery {
	q := r.URL.Query()
	pageNo, _ := strconv.Atoi(q.Get("pageNo"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	return models.PageQuery{
		PageNo:   pageNo,
		PageSize: pageSize,
		SortBy:   q.Get("sortBy"),
		SortDir:  q.Get("sortDir"),
	}
}
