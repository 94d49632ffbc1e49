package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsHandlers(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got settingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.DuplicatesEnabled)
	assert.Equal(t, 4, got.DuplicateLimit)
	assert.True(t, got.IncludeSubContainer)
	assert.False(t, got.Persistent)

	// partial update keeps the other fields
	rec = s.do(http.MethodPut, "/api/settings", `{"duplicateLimit":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.DuplicatesEnabled)
	assert.Equal(t, 2, got.DuplicateLimit)

	rec = s.do(http.MethodPut, "/api/settings", `{"duplicateLimit":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, rec).Code)

	rec = s.do(http.MethodPut, "/api/settings", `{"includeSubContainer":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 2, s.mgr.Settings().Get().DuplicateLimit, "rejected updates must not apply")
}

func TestSettingsDriveAutoLayout(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPut, "/api/settings", `{"duplicatesEnabled":false,"includeSubContainer":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/layouts/gear/auto",
		`{"equipped":[],"inventory":[300,200,200],"subContainer":[{"rune":1,"amount":5}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "300:0,200:8", s.store.LayoutString("gear"))
}
