package signupsvc_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-signup/internal/domain"
	"github.com/mkrupp/homecase-signup/internal/repo/dataset/fixture"
	"github.com/mkrupp/homecase-signup/internal/svc/signupsvc"
)

func postForm(t *testing.T, handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestHTTPTransport_Validate(t *testing.T) {
	t.Parallel()

	ht := signupsvc.NewHTTPTransport(newReadyValidator(t, fixture.Source()), signupsvc.HTTPTransportConfig{})

	tests := []struct {
		name       string
		path       string
		form       url.Values
		wantStatus int
		want       domain.ValidationResponse
	}{
		{
			name:       "valid username",
			path:       "/signup/validate/username",
			form:       url.Values{"value": {"danny5"}},
			wantStatus: http.StatusOK,
			want:       domain.ValidationResponse{Valid: true, Field: "username", Value: "danny5"},
		},
		{
			name:       "taken username",
			path:       "/signup/validate/username",
			form:       url.Values{"value": {"DUDE7"}},
			wantStatus: http.StatusUnprocessableEntity,
			want:       domain.ValidationResponse{Field: "username", Code: "already_exists", Message: "This username already exists"},
		},
		{
			name:       "empty username is too short",
			path:       "/signup/validate/username",
			form:       url.Values{"value": {""}},
			wantStatus: http.StatusUnprocessableEntity,
			want:       domain.ValidationResponse{Field: "username", Code: "too_short", Message: "Username too short"},
		},
		{
			name:       "insecure password",
			path:       "/signup/validate/password",
			form:       url.Values{"value": {"12345678"}},
			wantStatus: http.StatusUnprocessableEntity,
			want:       domain.ValidationResponse{Field: "password", Code: "insecure", Message: "Password is insecure"},
		},
		{
			name:       "valid password",
			path:       "/signup/validate/password",
			form:       url.Values{"value": {"g3927gf92g"}},
			wantStatus: http.StatusOK,
			want:       domain.ValidationResponse{Valid: true, Field: "password", Value: "g3927gf92g"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := postForm(t, ht, tt.path, tt.form)
			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var got domain.ValidationResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPTransport_BadRequests(t *testing.T) {
	t.Parallel()

	ht := signupsvc.NewHTTPTransport(newReadyValidator(t, fixture.Source()), signupsvc.HTTPTransportConfig{})

	rec := postForm(t, ht, "/signup/validate/password", url.Values{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	ht.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/signup/validate/username", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHTTPTransport_DatasetStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		v       *signupsvc.CredentialValidator
		want    domain.DatasetStatusResponse
		wantErr bool
	}{
		{
			name: "loaded dataset",
			v:    newReadyValidator(t, fixture.Source()),
			want: domain.DatasetStatusResponse{State: "ready", TakenUsernames: 4, TakenPasswords: 3, InsecurePasswords: 4},
		},
		{
			name:    "default dataset after failure",
			v:       newReadyValidator(t, failingSource(domain.ErrRequestFailed)),
			want:    domain.DatasetStatusResponse{State: "ready", InsecurePasswords: 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			signupsvc.NewHTTPTransport(tt.v, signupsvc.HTTPTransportConfig{}).
				ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/signup/dataset", nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var got domain.DatasetStatusResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

			if tt.wantErr {
				assert.Contains(t, got.Error, "request failed")
				got.Error = ""
			}

			assert.Equal(t, tt.want, got)
		})
	}
}
