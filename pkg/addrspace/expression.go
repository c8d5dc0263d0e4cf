package addrspace

import "strings"

// ParseExpression accepts the three address-field shapes the glue layer can
// hand the core (spec.md §6 resolve_expression): a single CIDR, a bare
// host, or an "A-B" range, and returns its minimal covering prefix set.
func ParseExpression(text string) ([]Prefix, error) {
	text = strings.TrimSpace(text)
	if start, end, ok := strings.Cut(text, "-"); ok && looksLikeRange(start, end) {
		return ParseRange(strings.TrimSpace(start), strings.TrimSpace(end))
	}
	p, err := ParsePrefix(text)
	if err != nil {
		return nil, err
	}
	return []Prefix{p}, nil
}

// looksLikeRange guards against treating a bare IPv6 address (which itself
// contains no "-") as a range; IPv6 addresses never contain "-", so any
// split on "-" here is a genuine range unless one side is empty.
func looksLikeRange(start, end string) bool {
	return strings.TrimSpace(start) != "" && strings.TrimSpace(end) != ""
}
