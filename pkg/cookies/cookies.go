// Package cookies provides Cookie and Set-Cookie helpers over header
// collections, for plugin code that inspects or rewrites cookies without
// touching raw header text.
package cookies

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/proxytools/go-proxybind/pkg/headers"
)

// Cookie is one request cookie from a Cookie field.
type Cookie struct {
	Name  string
	Value string
}

// SetCookie is one parsed Set-Cookie field.
type SetCookie struct {
	Name     string
	Value    string
	Path     string
	Domain   string
	Expires  string
	MaxAge   int // -1 when absent
	Secure   bool
	HTTPOnly bool
	SameSite string
}

// ParseCookieValue parses a Cookie field value, best effort: malformed
// segments become name-only cookies, nothing fails.
func ParseCookieValue(value string) []Cookie {
	var cookies []Cookie
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, val, found := strings.Cut(part, "=")
		if !found {
			cookies = append(cookies, Cookie{Name: part})
			continue
		}
		cookies = append(cookies, Cookie{
			Name:  strings.TrimSpace(name),
			Value: unquote(strings.TrimSpace(val)),
		})
	}
	return cookies
}

// RequestCookies collects every cookie from the Cookie fields of a header
// collection.
func RequestCookies(h *headers.Headers) []Cookie {
	var cookies []Cookie
	for _, value := range h.Values("Cookie") {
		cookies = append(cookies, ParseCookieValue(value)...)
	}
	return cookies
}

// SetRequestCookie appends a cookie to the collection's Cookie field,
// creating the field if absent. Messages carrying several Cookie fields are
// folded into one field, keeping every existing pair.
func SetRequestCookie(h *headers.Headers, c Cookie) error {
	pairs := make([]string, 0, 2)
	for _, value := range h.Values("Cookie") {
		if value = strings.TrimSpace(value); value != "" {
			pairs = append(pairs, value)
		}
	}
	pairs = append(pairs, fmt.Sprintf("%s=%s", c.Name, c.Value))
	return h.Set("Cookie", strings.Join(pairs, "; "))
}

// ParseSetCookieValue parses one Set-Cookie field value, best effort.
func ParseSetCookieValue(value string) SetCookie {
	sc := SetCookie{MaxAge: -1}
	parts := strings.Split(value, ";")
	if len(parts) == 0 {
		return sc
	}

	name, val, found := strings.Cut(strings.TrimSpace(parts[0]), "=")
	if found {
		sc.Name = strings.TrimSpace(name)
		sc.Value = unquote(strings.TrimSpace(val))
	} else {
		sc.Name = strings.TrimSpace(parts[0])
	}

	for _, attr := range parts[1:] {
		attr = strings.TrimSpace(attr)
		if attr == "" {
			continue
		}
		key, val, found := strings.Cut(attr, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		if !found {
			switch key {
			case "secure":
				sc.Secure = true
			case "httponly":
				sc.HTTPOnly = true
			}
			continue
		}
		switch key {
		case "path":
			sc.Path = val
		case "domain":
			sc.Domain = val
		case "expires":
			sc.Expires = val
		case "max-age":
			if n, err := strconv.Atoi(val); err == nil {
				sc.MaxAge = n
			}
		case "samesite":
			sc.SameSite = val
		}
	}
	return sc
}

// ResponseCookies parses every Set-Cookie field of a header collection,
// preserving field order.
func ResponseCookies(h *headers.Headers) []SetCookie {
	var cookies []SetCookie
	for _, value := range h.Values("Set-Cookie") {
		cookies = append(cookies, ParseSetCookieValue(value))
	}
	return cookies
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
