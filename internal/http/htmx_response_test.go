package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedirect_PlainAndHTMX(t *testing.T) {
	plain := httptest.NewRecorder()
	redirect(plain, httptest.NewRequest(http.MethodPost, "/signin", nil), "/dashboard/artist")
	assert.Equal(t, http.StatusSeeOther, plain.Code)
	assert.Equal(t, "/dashboard/artist", plain.Header().Get("Location"))

	hx := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/signin", nil)
	r.Header.Set("Hx-Request", "true")
	redirect(hx, r, "/dashboard/artist")
	assert.Equal(t, "/dashboard/artist", hx.Header().Get("Hx-Redirect"))
	assert.Empty(t, hx.Header().Get("Location"))
}
