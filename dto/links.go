package dto

import (
	"fmt"
	"net/url"
	"strconv"

	"rentals-api/filters"
)

// Link is a HATEOAS entry describing a related action.
type Link struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method"`
}

func UserLinks(id uint) []Link {
	base := fmt.Sprintf("/users/%d", id)
	return []Link{
		{Rel: "self", Href: base, Method: "GET"},
		{Rel: "update", Href: base, Method: "PATCH"},
		{Rel: "delete", Href: base, Method: "DELETE"},
		{Rel: "avatar", Href: base + "/avatar", Method: "PUT"},
		{Rel: "properties", Href: base + "/properties", Method: "GET"},
		{Rel: "bookings", Href: base + "/bookings", Method: "GET"},
	}
}

func PropertyLinks(id uint) []Link {
	base := fmt.Sprintf("/properties/%d", id)
	return []Link{
		{Rel: "self", Href: base, Method: "GET"},
		{Rel: "update", Href: base, Method: "PATCH"},
		{Rel: "delete", Href: base, Method: "DELETE"},
		{Rel: "photos", Href: base + "/photos", Method: "POST"},
		{Rel: "book", Href: "/bookings", Method: "POST"},
	}
}

func BookingLinks(id, propertyID uint) []Link {
	base := fmt.Sprintf("/bookings/%d", id)
	return []Link{
		{Rel: "self", Href: base, Method: "GET"},
		{Rel: "cancel", Href: base, Method: "DELETE"},
		{Rel: "rate", Href: base + "/rating", Method: "PATCH"},
		{Rel: "property", Href: fmt.Sprintf("/properties/%d", propertyID), Method: "GET"},
	}
}

// CollectionLinks describes a lookup collection such as /facilities.
func CollectionLinks(path string) []Link {
	return []Link{
		{Rel: "self", Href: path, Method: "GET"},
		{Rel: "create", Href: path, Method: "POST"},
	}
}

// ListLinks builds navigation links for a paginated list. Every accepted
// filter parameter is kept so following a link keeps the same result set.
func ListLinks(path string, params map[string]string, p filters.Pagination) []Link {
	href := func(page int) string {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		q.Set("limit", strconv.Itoa(p.Limit))
		q.Set("page", strconv.Itoa(page))
		return path + "?" + q.Encode()
	}

	links := []Link{
		{Rel: "self", Href: href(p.Current), Method: "GET"},
		{Rel: "first", Href: href(1), Method: "GET"},
	}
	if p.Previous != nil {
		links = append(links, Link{Rel: "previous", Href: href(*p.Previous), Method: "GET"})
	}
	if p.Next != nil {
		links = append(links, Link{Rel: "next", Href: href(*p.Next), Method: "GET"})
	}
	return append(links, Link{Rel: "last", Href: href(p.Pages), Method: "GET"})
}
