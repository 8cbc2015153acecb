package dto

import "rentals-api/filters"

// Response is the envelope of every JSON body the API writes. Msg is a
// string, or a list of strings for multi-field validation failures.
type Response struct {
	Success    bool                `json:"success"`
	Msg        any                 `json:"msg,omitempty"`
	Data       any                 `json:"data,omitempty"`
	Pagination *filters.Pagination `json:"pagination,omitempty"`
	Links      []Link              `json:"links,omitempty"`
}

func OK(msg string, data any, links ...Link) Response {
	r := Response{Success: true, Data: data, Links: links}
	if msg != "" {
		r.Msg = msg
	}
	return r
}

func Fail(msg any) Response {
	return Response{Success: false, Msg: msg}
}

// Page wraps one page of a list endpoint.
func Page(data any, p filters.Pagination, links []Link) Response {
	return Response{Success: true, Data: data, Pagination: &p, Links: links}
}
