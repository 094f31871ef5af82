package restapi

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// searcher is the compiled-expression surface we rely on.
type searcher interface {
	Search(data any) (any, error)
}

//nolint:gochecknoglobals // compiled expression cache.
var exprCache sync.Map // string -> searcher

// compiled returns a cached compiled expression.
// Expressions are program constants, so a compile failure is a programming error.
func compiled(expr string) searcher {
	if v, ok := exprCache.Load(expr); ok {
		return v.(searcher)
	}
	c, err := jmespath.Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("restapi: compile %q: %v", expr, err))
	}
	actual, _ := exprCache.LoadOrStore(expr, searcher(c))
	return actual.(searcher)
}

func search(expr string, doc any) any {
	if doc == nil {
		return nil
	}
	v, err := compiled(expr).Search(doc)
	if err != nil {
		return nil
	}
	return v
}

// listCandidates are probed in order for list responses. The first array wins,
// empty arrays included, which a single `a || b` chain would skip as falsy.
func listCandidates(name string) []string {
	q := strconv.Quote(name)
	return []string{"data." + q, "data", q, "@"}
}

func extractList(doc any, name string) ([]any, bool) {
	for _, expr := range listCandidates(name) {
		if list, ok := search(expr, doc).([]any); ok {
			return list, true
		}
	}
	return nil, false
}

// extractObject returns the first object among data.<name>, data and the document itself.
func extractObject(doc any, names ...string) (map[string]any, bool) {
	exprs := make([]string, 0, len(names)+2)
	for _, n := range names {
		exprs = append(exprs, "data."+strconv.Quote(n), strconv.Quote(n))
	}
	exprs = append(exprs, "data", "@")
	for _, expr := range exprs {
		if obj, ok := search(expr, doc).(map[string]any); ok && len(obj) > 0 {
			return obj, true
		}
	}
	return nil, false
}

func str(doc any, expr string) string {
	switch v := search(expr, doc).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func boolean(doc any, expr string) bool {
	switch v := search(expr, doc).(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// timestamp reads RFC 3339 strings or unix seconds.
func timestamp(doc any, expr string) *time.Time {
	switch v := search(expr, doc).(type) {
	case string:
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		return &t
	case float64:
		if v <= 0 {
			return nil
		}
		t := time.Unix(int64(v), 0).UTC()
		return &t
	default:
		return nil
	}
}
