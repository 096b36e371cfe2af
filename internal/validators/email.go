package validators

import (
	"context"
	"net"
	"strings"
	"time"
)

const lookupTimeout = 3 * time.Second

// SplitEmail returns the domain part of a syntactically plausible address.
func SplitEmail(email string) (string, bool) {
	if strings.ContainsAny(email, " \t\r\n") {
		return "", false
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", false
	}
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return "", false
	}
	return domain, true
}

// IsEmailDomainValid accepts the address when its domain has an MX record
// or, failing that, resolves to an address.
func IsEmailDomainValid(ctx context.Context, email string) bool {
	domain, ok := SplitEmail(email)
	if !ok {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	var r net.Resolver
	if mx, err := r.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return true
	}
	if ips, err := r.LookupIPAddr(ctx, domain); err == nil && len(ips) > 0 {
		return true
	}
	return false
}
