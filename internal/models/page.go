package models

import (
	"net/url"
	"strconv"
)

// PageQuery follows the backend paging convention.
type PageQuery struct {
	PageNo   int    `json:"pageNo"`
	PageSize int    `json:"pageSize"`
	SortBy   string `json:"sortBy,omitempty"`
	SortDir  string `json:"sortDir,omitempty"`
}

// Values encodes the query, leaving unset fields out.
func (q PageQuery) Values() url.Values {
	v := url.Values{}
	if q.PageNo > 0 {
		v.Set("pageNo", strconv.Itoa(q.PageNo))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortDir != "" {
		v.Set("sortDir", q.SortDir)
	}
	return v
}

// PageInfo is the page metadata block of a list response.
type PageInfo struct {
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items []T      `json:"items"`
	Page  PageInfo `json:"page"`
}
