package enhancer

import (
	"net/url"
	"strings"
)

type param struct {
	key   string
	value string
}

// Params is an ordered list of query parameters. Unlike url.Values it keeps
// the original key order, so rewriting one key leaves the rest of the query
// string as it was.
type Params struct {
	pairs []param
}

// ParseParams parses a query string, with or without the leading '?'.
func ParseParams(query string) *Params {
	query = strings.TrimPrefix(query, "?")
	p := &Params{}
	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		p.pairs = append(p.pairs, param{key: unescape(key), value: unescape(value)})
	}
	return p
}

// unescape decodes a form-encoded component the way browsers do: '+' is a
// space, valid %XX sequences are decoded and invalid ones are kept literally.
func unescape(s string) string {
	if !strings.ContainsAny(s, "+%") {
		return s
	}
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b = append(b, ' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b = append(b, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
		default:
			b = append(b, c)
		}
	}
	return string(b)
}

// escape form-encodes a component. Browsers leave '*' as is and escape '~',
// the reverse of url.QueryEscape.
func escape(s string) string {
	e := url.QueryEscape(s)
	if strings.ContainsAny(s, "*~") {
		e = strings.NewReplacer("%2A", "*", "~", "%7E").Replace(e)
	}
	return e
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c <= '9':
		return c - '0'
	case c >= 'a':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// Get returns the first value for key, or "".
func (p *Params) Get(key string) string {
	for _, kv := range p.pairs {
		if kv.key == key {
			return kv.value
		}
	}
	return ""
}

// Has reports whether key is present.
func (p *Params) Has(key string) bool {
	for _, kv := range p.pairs {
		if kv.key == key {
			return true
		}
	}
	return false
}

// Set replaces the first occurrence of key in place and drops any later
// duplicates. A new key is appended.
func (p *Params) Set(key, value string) {
	out := p.pairs[:0]
	found := false
	for _, kv := range p.pairs {
		if kv.key != key {
			out = append(out, kv)
			continue
		}
		if !found {
			out = append(out, param{key: key, value: value})
			found = true
		}
	}
	if !found {
		out = append(out, param{key: key, value: value})
	}
	p.pairs = out
}

// Del removes every occurrence of key.
func (p *Params) Del(key string) {
	out := p.pairs[:0]
	for _, kv := range p.pairs {
		if kv.key != key {
			out = append(out, kv)
		}
	}
	p.pairs = out
}

// Len returns the number of pairs.
func (p *Params) Len() int {
	return len(p.pairs)
}

// Encode serializes the pairs in order, form-encoded, without a leading '?'.
func (p *Params) Encode() string {
	var b strings.Builder
	for i, kv := range p.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escape(kv.key))
		b.WriteByte('=')
		b.WriteString(escape(kv.value))
	}
	return b.String()
}
