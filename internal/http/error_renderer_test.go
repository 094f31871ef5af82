package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stagepass/portal/internal/apierror"
	"github.com/stagepass/portal/internal/domain/billing"
	apperrors "github.com/stagepass/portal/internal/errors"
	"github.com/stagepass/portal/internal/service"
)

func TestErrorStatusAndMessage(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"in flight", fmt.Errorf("billing cancel: %w", service.ErrInFlight), http.StatusConflict, inFlightMessage},
		{"already canceling", service.ErrAlreadyCanceling, http.StatusConflict, alreadyCancelMessage},
		{"photo limit", fmt.Errorf("upload photos: %w", billing.ErrPhotoLimitReached), http.StatusForbidden, photoLimitMessage},
		{"validation", apperrors.ValidationField("subject", "Subject is required."), http.StatusUnprocessableEntity, "Subject is required."},
		{"backend field error", &apierror.Error{Status: 400, Fields: map[string]string{"email": "Please enter a valid email"}}, http.StatusBadRequest, "Please enter a valid email"},
		{"backend down", fmt.Errorf("%w: dial tcp", apierror.ErrUnavailable), http.StatusBadGateway, apierror.UnavailableMessage},
		{"unauthorized", &apierror.Error{Status: 401}, http.StatusUnauthorized, apierror.GenericMessage},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, apierror.GenericMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, ErrorStatus(tt.err))
			assert.Equal(t, tt.msg, ErrorMessage(tt.err))
		})
	}
}

func TestFieldErrors(t *testing.T) {
	assert.Equal(t, map[string]string{"email": "bad"}, fieldErrors(apperrors.ValidationField("email", "bad")))
	assert.Equal(t, map[string]string{"password": "short"},
		fieldErrors(fmt.Errorf("backend login: %w", &apierror.Error{Status: 400, Fields: map[string]string{"password": "short"}})))
	assert.Nil(t, fieldErrors(errors.New("x")))
}
