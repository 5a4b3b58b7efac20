package renderer

import (
	"html/template"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var funcs = template.FuncMap{
	"style":     style,
	"odd":       func(i int) bool { return i%2 == 1 },
	"inputType": inputType,
}

var (
	hexColor   = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	namedColor = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)
)

// safeColor returns c when it is a hex or named CSS color, else fallback.
func safeColor(c, fallback string) string {
	c = strings.TrimSpace(c)
	if hexColor.MatchString(c) || namedColor.MatchString(c) {
		return c
	}
	return fallback
}

// safeImageURL accepts http(s) URLs and site-relative paths.
func safeImageURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, "\"'()\\\n\r<>") {
		return "", false
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return raw, true
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	return raw, true
}

// style joins property/value pairs into a declaration list. Callers pass
// values that went through safeColor or safeImageURL.
func style(pairs ...string) template.CSS {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		b.WriteString(pairs[i])
		b.WriteString(": ")
		b.WriteString(pairs[i+1])
	}
	return template.CSS(b.String())
}

var alignClasses = map[string]string{
	"left":    "text-left",
	"center":  "text-center",
	"right":   "text-right",
	"justify": "text-justify",
}

func alignClass(v, fallback string) string {
	if c, ok := alignClasses[v]; ok {
		return c
	}
	return fallback
}

var textSizeClasses = map[string]string{
	"xs": "text-xs", "sm": "text-sm", "base": "text-base", "lg": "text-lg",
	"xl": "text-xl", "2xl": "text-2xl", "3xl": "text-3xl",
}

// lines splits a multi-line property into trimmed, non-empty entries.
func lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// row is one "a|b|c" entry of a multi-line property.
type row struct {
	A, B, C string
}

func rows(s string) []row {
	var out []row
	for _, l := range lines(s) {
		parts := strings.SplitN(l, "|", 3)
		r := row{A: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			r.B = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			r.C = strings.TrimSpace(parts[2])
		}
		out = append(out, r)
	}
	return out
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
