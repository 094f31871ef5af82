package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMX_RequestDetection(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/dashboard/artist", nil)
	r.Header.Set("Hx-Request", "true")
	assert.True(t, IsHTMX(r))
	assert.True(t, WantsPartial(r))

	plain := httptest.NewRequest(http.MethodGet, "/dashboard/artist", nil)
	assert.False(t, IsHTMX(plain))
	assert.False(t, WantsPartial(plain))
}

func TestSetHXTrigger_MergesEvents(t *testing.T) {
	rr := httptest.NewRecorder()
	triggerToast(rr, "Saved.", toastSuccess)
	SetHXTrigger(rr, "nav:activate", map[string]string{"path": "/dashboard/artist/photos"})

	var events map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(rr.Header().Get("Hx-Trigger")), &events))
	assert.Equal(t, "Saved.", events["showToast"]["message"])
	assert.Equal(t, "success", events["showToast"]["type"])
	assert.Equal(t, "/dashboard/artist/photos", events["nav:activate"]["path"])
}

func TestSetHXTrigger_NilPayload(t *testing.T) {
	rr := httptest.NewRecorder()
	SetHXTrigger(rr, "refresh", nil)
	assert.JSONEq(t, `{"refresh":true}`, rr.Header().Get("Hx-Trigger"))
}

func TestHTMXResponse_Redirect(t *testing.T) {
	rr := httptest.NewRecorder()
	HTMX(rr).Trigger("showToast", map[string]string{"message": "hi"}).Redirect("/signin")

	assert.Equal(t, "/signin", rr.Header().Get("Hx-Redirect"))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Contains(t, rr.Header().Get("Hx-Trigger"), "showToast")
}
