package apiclient

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Endpoint is a REST path relative to the client's base URL. It may contain
// named placeholders such as "activities/{id}" and a literal query string
// such as "activities?limit=5". Placeholders are only allowed in the path.
type Endpoint string

// PathParams holds values for an endpoint's placeholders.
type PathParams map[string]string

// TemplateError reports placeholders that could not be resolved.
type TemplateError struct {
	Endpoint Endpoint
	Missing  []string
	Unused   []string
	Reason   string
}

func (e *TemplateError) Error() string {
	var parts []string
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	if len(e.Missing) > 0 {
		parts = append(parts, "missing path params: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unused) > 0 {
		parts = append(parts, "unused path params: "+strings.Join(e.Unused, ", "))
	}
	return fmt.Sprintf("endpoint %q: %s", string(e.Endpoint), strings.Join(parts, "; "))
}

// Placeholders returns the placeholder names in order of appearance.
func (e Endpoint) Placeholders() ([]string, error) {
	if strings.ContainsRune(string(e), '#') {
		return nil, &TemplateError{Endpoint: e, Reason: "fragments are not supported"}
	}
	s, query, _ := strings.Cut(string(e), "?")
	if strings.ContainsAny(query, "{}") {
		return nil, &TemplateError{Endpoint: e, Reason: "placeholders are only allowed in the path"}
	}

	var names []string
	for {
		open := strings.IndexByte(s, '{')
		closing := strings.IndexByte(s, '}')
		if open < 0 {
			if closing >= 0 {
				return nil, &TemplateError{Endpoint: e, Reason: "unmatched '}'"}
			}
			return names, nil
		}
		if closing < 0 {
			return nil, &TemplateError{Endpoint: e, Reason: "unmatched '{'"}
		}
		if closing < open {
			return nil, &TemplateError{Endpoint: e, Reason: "unmatched '}'"}
		}
		name := s[open+1 : closing]
		if !validPlaceholder(name) {
			return nil, &TemplateError{Endpoint: e, Reason: fmt.Sprintf("invalid placeholder %q", name)}
		}
		names = append(names, name)
		s = s[closing+1:]
	}
}

// Expand substitutes every placeholder with its path-escaped value. Each
// placeholder must have a value and each value must be used.
func (e Endpoint) Expand(params PathParams) (string, error) {
	names, err := e.Placeholders()
	if err != nil {
		return "", err
	}

	used := make(map[string]bool, len(names))
	var missing []string
	for _, name := range names {
		if _, ok := params[name]; !ok {
			if !used[name] {
				missing = append(missing, name)
			}
		}
		used[name] = true
	}

	var unused []string
	for name := range params {
		if !used[name] {
			unused = append(unused, name)
		}
	}
	sort.Strings(unused)

	if len(missing) > 0 || len(unused) > 0 {
		return "", &TemplateError{Endpoint: e, Missing: missing, Unused: unused}
	}

	if len(names) == 0 {
		return string(e), nil
	}

	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{"+name+"}", url.PathEscape(value))
	}
	return strings.NewReplacer(pairs...).Replace(string(e)), nil
}

func validPlaceholder(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
