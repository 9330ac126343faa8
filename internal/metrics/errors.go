package metrics

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

var friendlyAliases = map[string]string{
	"*url.Error":                        "Request URL error",
	"*net.OpError":                      "Network error",
	"*net.DNSError":                     "DNS lookup failed",
	"*net.AddrError":                    "Invalid address",
	"*tls.CertificateVerificationError": "TLS certificate verification failed",
	"x509.UnknownAuthorityError":        "TLS certificate verification failed",
	"x509.HostnameError":                "TLS hostname mismatch",
	"tls.RecordHeaderError":             "TLS handshake failed",
	"*errors.errorString":               "Transport error",
	"*fmt.wrapError":                    "Transport error",
	"*context.deadlineExceededError":    "Context deadline exceeded",
	"context.deadlineExceededError":     "Context deadline exceeded",
}

// ErrorType returns the Go type name used to bucket err. A *url.Error, which
// wraps every failure returned by an http.Client, is unwrapped to the cause.
func ErrorType(err error) string {
	if err == nil {
		return ""
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	return fmt.Sprintf("%T", err)
}

// FriendlyErrorName returns a human-friendly label for a Go error type.
func FriendlyErrorName(typeName string) string {
	cleaned := strings.TrimSpace(typeName)
	if cleaned == "" {
		return "Unknown error"
	}

	if alias, ok := friendlyAliases[cleaned]; ok {
		return alias
	}

	cleaned = strings.TrimPrefix(cleaned, "*")
	if alias, ok := friendlyAliases[cleaned]; ok {
		return alias
	}
	if idx := strings.LastIndex(cleaned, "/"); idx != -1 {
		cleaned = cleaned[idx+1:]
	}

	pkg := ""
	name := cleaned
	if idx := strings.Index(name, "."); idx != -1 {
		pkg = name[:idx]
		name = name[idx+1:]
	}

	pretty := humanizeTypeName(name)
	if pretty == "" {
		pretty = name
	}

	lowerPkg := strings.ToLower(pkg)
	lowerPretty := strings.ToLower(pretty)

	switch {
	case lowerPkg == "context" && strings.Contains(lowerPretty, "deadline"):
		return "Context deadline exceeded"
	case lowerPkg == "url" && strings.Contains(lowerPretty, "error"):
		return "Request URL error"
	}

	if pkg != "" && pkg != "main" {
		return fmt.Sprintf("%s (%s)", pretty, pkg)
	}
	return pretty
}

func humanizeTypeName(name string) string {
	if name == "" {
		return ""
	}

	var words []string
	var current []rune
	runes := []rune(name)

	appendWord := func() {
		if len(current) == 0 {
			return
		}
		word := string(current)
		if isAllUpper(word) {
			words = append(words, word)
		} else {
			words = append(words, capitalize(word))
		}
		current = current[:0]
	}

	for i, r := range runes {
		if i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsUpper(r) && (unicode.IsLower(prev) || (unicode.IsUpper(prev) && nextLower)) {
				appendWord()
			} else if unicode.IsDigit(r) && !unicode.IsDigit(prev) {
				appendWord()
			}
		}
		current = append(current, r)
	}
	appendWord()

	return strings.Join(words, " ")
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	runes := []rune(lower)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
