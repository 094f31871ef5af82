// Package apierror decodes marketplace API failure bodies into a single typed error.
//
// The backend reports validation failures in several shapes; Parse accepts, in order:
//
//	{"errors": {"details": {"details": [{"field": "...", "message": "..."}]}}}
//	{"errors": {"details": [{"field": "...", "message": "..."}]}}
//	{"errors": [{"field": "...", "message": "..."} | {"msg": "..."} | {"param": "...", "msg": "..."}]}
//	{"errors": {"<field>": "<message>"}}
//
// alongside an optional top-level "message" (or "error") string.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

const (
	// GenericMessage is shown when the backend gives nothing usable.
	GenericMessage = "Something went wrong. Please try again."
	// FixBelowMessage is shown when several fields failed and no summary was sent.
	FixBelowMessage = "Please fix the errors below."
	// UnavailableMessage is shown when the backend could not be reached.
	UnavailableMessage = "We couldn't reach the server. Please try again."
)

var (
	// ErrUnauthorized marks a 401 from the backend. Callers must end the session.
	ErrUnauthorized = errors.New("backend rejected credentials")
	// ErrUnavailable marks transport failures and 5xx responses.
	ErrUnavailable = errors.New("backend unavailable")
)

// Error is a failed backend call with any field-level detail it carried.
type Error struct {
	Status  int
	Message string
	// Fields maps form field names to their first reported message.
	Fields map[string]string
	// Problems holds messages that were not attached to a field.
	Problems []string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && len(e.Problems) > 0 {
		msg = e.Problems[0]
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, msg)
}

// Unwrap exposes the status class so errors.Is works against the sentinels.
func (e *Error) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status >= http.StatusInternalServerError:
		return ErrUnavailable
	default:
		return nil
	}
}

// FieldErrors returns a copy of the field map, never nil.
func (e *Error) FieldErrors() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for k, v := range e.Fields {
		out[k] = v
	}
	return out
}

// ToastMessage picks the single line to surface to the user.
func (e *Error) ToastMessage() string {
	if len(e.Fields) == 1 {
		for _, msg := range e.Fields {
			return msg
		}
	}
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) > 1 {
		return FixBelowMessage
	}
	if len(e.Problems) > 0 {
		return e.Problems[0]
	}
	return GenericMessage
}

// ToastFor renders any error from a backend call as a user-facing line.
func ToastFor(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.ToastMessage()
	}
	if errors.Is(err, ErrUnavailable) {
		return UnavailableMessage
	}
	return GenericMessage
}

// IsUnauthorized reports whether err means the session is no longer valid upstream.
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// detailPaths are probed in order; the first that yields a list wins.
//
//nolint:gochecknoglobals // compiled once.
var detailPaths = mustCompile(
	"errors.details.details",
	"errors.details",
	"errors",
)

//nolint:gochecknoglobals // compiled once.
var messagePaths = mustCompile("message", "error")

// searcher is the compiled-expression surface we rely on.
type searcher interface {
	Search(data any) (any, error)
}

func mustCompile(exprs ...string) []searcher {
	out := make([]searcher, 0, len(exprs))
	for _, e := range exprs {
		compiled, err := jmespath.Compile(e)
		if err != nil {
			panic(fmt.Sprintf("apierror: compile %q: %v", e, err))
		}
		out = append(out, compiled)
	}
	return out
}

// Parse builds an Error from a non-2xx response. It never fails: an unreadable
// body simply yields an Error with no detail.
func Parse(status int, body []byte) *Error {
	e := &Error{Status: status, Fields: map[string]string{}}

	var doc any
	if len(body) == 0 || json.Unmarshal(body, &doc) != nil {
		return e
	}

	for _, p := range messagePaths {
		if s, ok := search(p, doc).(string); ok && strings.TrimSpace(s) != "" {
			e.Message = strings.TrimSpace(s)
			break
		}
	}

	for _, p := range detailPaths {
		if list, ok := search(p, doc).([]any); ok {
			e.addItems(list)
			return e
		}
	}

	if m, ok := search(detailPaths[len(detailPaths)-1], doc).(map[string]any); ok {
		e.addFieldMap(m)
	}
	return e
}

func search(p searcher, doc any) any {
	v, err := p.Search(doc)
	if err != nil {
		return nil
	}
	return v
}

func (e *Error) addItems(list []any) {
	for _, raw := range list {
		switch item := raw.(type) {
		case string:
			e.addProblem(item)
		case map[string]any:
			field := firstString(item, "field", "param", "path")
			msg := firstString(item, "message", "msg")
			if field == "" {
				e.addProblem(msg)
				continue
			}
			e.addField(field, msg)
		}
	}
}

func (e *Error) addFieldMap(m map[string]any) {
	for field, v := range m {
		if s, ok := v.(string); ok {
			e.addField(field, s)
		}
	}
}

func (e *Error) addField(field, msg string) {
	field = strings.TrimSpace(field)
	msg = strings.TrimSpace(msg)
	if field == "" || msg == "" {
		return
	}
	if _, seen := e.Fields[field]; !seen {
		e.Fields[field] = msg
	}
}

func (e *Error) addProblem(msg string) {
	if msg = strings.TrimSpace(msg); msg != "" {
		e.Problems = append(e.Problems, msg)
	}
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
