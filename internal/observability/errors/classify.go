// Package errors turns errors into short, low-cardinality tags for metrics and logs.
package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/stagepass/portal/internal/apierror"
	"github.com/stagepass/portal/internal/ports"
)

// Classify returns a normalized error class.
// Known portal conditions get fixed names; anything else is named after its innermost type.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	case goerrors.Is(err, ports.ErrInFlight):
		return "in_flight"
	case goerrors.Is(err, apierror.ErrUnauthorized):
		return "unauthorized"
	}

	var apiErr *apierror.Error
	if goerrors.As(err, &apiErr) {
		return "api_" + strconv.Itoa(apiErr.Status/100) + "xx"
	}
	if goerrors.Is(err, apierror.ErrUnavailable) {
		return "unavailable"
	}

	for {
		next := goerrors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}
	name := strings.ReplaceAll(strings.ToLower(t.String()), ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
