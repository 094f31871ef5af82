package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Shapes(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields map[string]string
		toast  string
	}{
		{
			name:   "nested details.details",
			body:   `{"success":false,"message":"Validation failed","errors":{"details":{"details":[{"field":"email","message":"Please enter a valid email"}]}}}`,
			fields: map[string]string{"email": "Please enter a valid email"},
			toast:  "Please enter a valid email",
		},
		{
			name:   "details list",
			body:   `{"errors":{"details":[{"field":"email","message":"Email taken"},{"field":"username","message":"Too short"}]}}`,
			fields: map[string]string{"email": "Email taken", "username": "Too short"},
			toast:  FixBelowMessage,
		},
		{
			name:   "flat list with field",
			body:   `{"message":"Invalid input","errors":[{"field":"subject","message":"Subject is required."},{"field":"message","message":"Message is required."}]}`,
			fields: map[string]string{"subject": "Subject is required.", "message": "Message is required."},
			toast:  "Invalid input",
		},
		{
			name:   "express-validator param/msg",
			body:   `{"errors":[{"param":"password","msg":"Password must be at least 6 characters"}]}`,
			fields: map[string]string{"password": "Password must be at least 6 characters"},
			toast:  "Password must be at least 6 characters",
		},
		{
			name:   "msg without field",
			body:   `{"errors":[{"msg":"Account locked"}]}`,
			fields: map[string]string{},
			toast:  "Account locked",
		},
		{
			name:   "field map",
			body:   `{"errors":{"email":"Unknown email"}}`,
			fields: map[string]string{"email": "Unknown email"},
			toast:  "Unknown email",
		},
		{
			name:   "message only",
			body:   `{"success":false,"message":"Invalid credentials"}`,
			fields: map[string]string{},
			toast:  "Invalid credentials",
		},
		{
			name:   "error key",
			body:   `{"error":"Subscription not found"}`,
			fields: map[string]string{},
			toast:  "Subscription not found",
		},
		{
			name:   "not json",
			body:   `<html>bad gateway</html>`,
			fields: map[string]string{},
			toast:  GenericMessage,
		},
		{
			name:   "empty",
			body:   ``,
			fields: map[string]string{},
			toast:  GenericMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Parse(http.StatusBadRequest, []byte(tt.body))
			require.NotNil(t, e)
			assert.Equal(t, tt.fields, e.FieldErrors())
			assert.Equal(t, tt.toast, e.ToastMessage())
		})
	}
}

func TestParse_FirstFieldMessageWins(t *testing.T) {
	e := Parse(http.StatusBadRequest, []byte(`{"errors":[{"field":"email","message":"first"},{"field":"email","message":"second"}]}`))
	assert.Equal(t, "first", e.Fields["email"])
}

func TestError_UnwrapSentinels(t *testing.T) {
	unauth := Parse(http.StatusUnauthorized, []byte(`{"message":"jwt expired"}`))
	assert.True(t, errors.Is(unauth, ErrUnauthorized))
	assert.True(t, IsUnauthorized(fmt.Errorf("fetch billing: %w", unauth)))

	down := Parse(http.StatusBadGateway, nil)
	assert.True(t, errors.Is(down, ErrUnavailable))

	bad := Parse(http.StatusBadRequest, nil)
	assert.False(t, errors.Is(bad, ErrUnauthorized))
	assert.False(t, errors.Is(bad, ErrUnavailable))
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "api error 400: Bad Request", Parse(http.StatusBadRequest, nil).Error())
	assert.Equal(t, "api error 409: dup", Parse(http.StatusConflict, []byte(`{"message":"dup"}`)).Error())
}

func TestToastFor(t *testing.T) {
	assert.Empty(t, ToastFor(nil))
	assert.Equal(t, UnavailableMessage, ToastFor(fmt.Errorf("dial: %w", ErrUnavailable)))
	assert.Equal(t, GenericMessage, ToastFor(errors.New("boom")))
	assert.Equal(t, "nope", ToastFor(fmt.Errorf("wrap: %w", Parse(http.StatusForbidden, []byte(`{"message":"nope"}`)))))
}
