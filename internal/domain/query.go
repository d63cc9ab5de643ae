package domain

import (
	"net/url"
	"strings"
)

// QueryParam is one key/value pair of an outgoing query string.
type QueryParam struct {
	Key   string
	Value string
}

// Query is an ordered query string. Order is preserved by Encode, unlike url.Values.
type Query []QueryParam

// Encode serializes the query as key=value pairs joined by '&', in order.
func (q Query) Encode() string {
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// Get returns the value for key.
func (q Query) Get(key string) (string, bool) {
	for _, p := range q {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}
