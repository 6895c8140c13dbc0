package helper

import (
	"regexp"
	"strings"
)

// Cookie is a single request cookie. Extraction works over a slice rather
// than a map so selection among pattern-matched names follows wire order.
type Cookie struct {
	Name  string
	Value string
}

var (
	tokenSuffixPattern = regexp.MustCompile(`(?i)token$`)
	tokenPattern       = regexp.MustCompile(`(?i)token`)
	refreshPattern     = regexp.MustCompile(`(?i)refresh`)
)

// ExtractToken locates a candidate token for the mandatory auth path.
// Preference order: exact "token" cookie, then cookies ending in "token",
// then cookies containing "token" (refresh cookies never match), then the
// "token" header. Returns ErrNoToken when nothing is found.
func ExtractToken(cookies []Cookie, headers map[string]string) (string, error) {
	if tok := pickCookie(cookies); tok != "" {
		return tok, nil
	}
	if tok := headerValue(headers, "token"); tok != "" {
		return tok, nil
	}
	return "", ErrNoToken
}

// ExtractTokenOptional is the permissive variant: after the mandatory
// locations it also accepts "Authorization: Bearer <token>" and, as a last
// resort, re-applies the cookie rules to a manually parsed raw Cookie
// header. Returns "" when nothing is found.
func ExtractTokenOptional(cookies []Cookie, headers map[string]string) string {
	if tok, err := ExtractToken(cookies, headers); err == nil {
		return tok
	}
	if auth := headerValue(headers, "authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if tok := strings.TrimSpace(parts[1]); tok != "" {
				return tok
			}
		}
	}
	if raw := headerValue(headers, "cookie"); raw != "" {
		if tok := pickCookie(ParseCookieHeader(raw)); tok != "" {
			return tok
		}
	}
	return ""
}

// ExtractSocketToken reads the token from a websocket handshake query.
func ExtractSocketToken(query map[string]string) (string, error) {
	if tok := strings.TrimSpace(query["token"]); tok != "" {
		return tok, nil
	}
	return "", ErrNoToken
}

// pickCookie applies the cookie preference rules in order. Ties between
// pattern-matched names resolve to the first match in wire order.
func pickCookie(cookies []Cookie) string {
	for _, c := range cookies {
		if c.Name == "token" && strings.TrimSpace(c.Value) != "" {
			return strings.TrimSpace(c.Value)
		}
	}
	for _, c := range cookies {
		if c.Name == "token" {
			continue
		}
		if tokenSuffixPattern.MatchString(c.Name) && !refreshPattern.MatchString(c.Name) {
			if v := strings.TrimSpace(c.Value); v != "" {
				return v
			}
		}
	}
	for _, c := range cookies {
		if c.Name == "token" {
			continue
		}
		if tokenPattern.MatchString(c.Name) && !refreshPattern.MatchString(c.Name) {
			if v := strings.TrimSpace(c.Value); v != "" {
				return v
			}
		}
	}
	return ""
}

// ParseCookieHeader splits a raw Cookie header ("a=1; b=2") preserving
// order. Malformed pairs are skipped.
func ParseCookieHeader(raw string) []Cookie {
	parts := strings.Split(raw, ";")
	cookies := make([]Cookie, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		eq := strings.IndexByte(part, '=')
		if eq <= 0 {
			continue
		}
		name := strings.TrimSpace(part[:eq])
		value := strings.Trim(strings.TrimSpace(part[eq+1:]), `"`)
		if name == "" {
			continue
		}
		cookies = append(cookies, Cookie{Name: name, Value: value})
	}
	return cookies
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
