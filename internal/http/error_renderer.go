package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/stagepass/portal/internal/apierror"
	"github.com/stagepass/portal/internal/domain/billing"
	apperrors "github.com/stagepass/portal/internal/errors"
	"github.com/stagepass/portal/internal/service"
)

// Toast types understood by the shell script.
const (
	toastSuccess = "success"
	toastError   = "error"
	toastInfo    = "info"
)

const (
	inFlightMessage       = "That action is already in progress."
	alreadyCancelMessage  = "Your subscription is already set to cancel."
	photoLimitMessage     = "You've used all your photo slots. Upgrade to Pro for more."
	audioLimitMessage     = "You've used all your track slots. Upgrade to Pro for more."
	refreshPendingMessage = "Done. Refresh to see the latest status."
)

// triggerToast queues a toast via the showToast htmx event.
func triggerToast(w http.ResponseWriter, message, toastType string) {
	if w == nil || strings.TrimSpace(message) == "" {
		return
	}
	HTMX(w).Trigger("showToast", map[string]any{
		"message": message,
		"type":    strings.TrimSpace(toastType),
	})
}

// ErrorStatus maps a service or backend error onto a response status.
func ErrorStatus(err error) int {
	var apiErr *apierror.Error
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, service.ErrInFlight), errors.Is(err, service.ErrAlreadyCanceling):
		return http.StatusConflict
	case errors.Is(err, billing.ErrPhotoLimitReached), errors.Is(err, billing.ErrAudioLimitReached):
		return http.StatusForbidden
	case apperrors.CodeOf(err) != "":
		return apperrors.HTTPStatus(apperrors.CodeOf(err))
	case errors.Is(err, apierror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apierror.ErrUnavailable):
		return http.StatusBadGateway
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		return apiErr.Status
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage is the single user-facing line for err.
func ErrorMessage(err error) string {
	var appErr *apperrors.AppError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrInFlight):
		return inFlightMessage
	case errors.Is(err, service.ErrAlreadyCanceling):
		return alreadyCancelMessage
	case errors.Is(err, billing.ErrPhotoLimitReached):
		return photoLimitMessage
	case errors.Is(err, billing.ErrAudioLimitReached):
		return audioLimitMessage
	case errors.As(err, &appErr) && appErr.Message != "":
		return appErr.Message
	default:
		return apierror.ToastFor(err)
	}
}

// fieldErrors returns per-field messages from a local validation error or a backend error.
func fieldErrors(err error) map[string]string {
	if fields := apperrors.FieldsOf(err); len(fields) > 0 {
		return fields
	}
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		return apiErr.FieldErrors()
	}
	return nil
}

// errorIsLocked reports whether err means the plan lacks the feature.
func errorIsLocked(err error) bool {
	return errors.Is(err, service.ErrFeatureLocked)
}
