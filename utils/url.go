package utils

import (
	"net/url"
)

// StripQueryParam removes param from rawURL and returns the rewritten URL.
// Unparseable input is returned unchanged.
func StripQueryParam(rawURL, param string) string {
	if rawURL == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if _, ok := q[param]; !ok {
		return rawURL
	}
	q.Del(param)
	u.RawQuery = q.Encode()
	return u.String()
}

// QueryParam returns the first value of param in rawURL
func QueryParam(rawURL, param string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	q := u.Query()
	if _, ok := q[param]; !ok {
		return "", false
	}
	return q.Get(param), true
}
