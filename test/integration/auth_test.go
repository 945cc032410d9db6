package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authResponse struct {
	Success      bool   `json:"success"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Message      string `json:"message"`
	User         *struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func postJSON(t *testing.T, app *TestApp, path string, body map[string]string) (*http.Response, authResponse) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := app.Client.Post(app.Server.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded authResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestRegisterLoginRefreshFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	resp, registered := postJSON(t, app, "/api/auth/register", map[string]string{
		"name":     "Jane Student",
		"email":    "jane@example.com",
		"password": "student123",
		"role":     "Student",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, registered.User)
	assert.Equal(t, "Student", registered.User.Role)
	assert.NotEmpty(t, registered.Token)
	assert.NotEmpty(t, registered.RefreshToken)

	var count int
	require.NoError(t, app.DB.QueryRow("SELECT count(*) FROM users WHERE lower(email) = 'jane@example.com'").Scan(&count))
	assert.Equal(t, 1, count)

	resp, login := postJSON(t, app, "/api/auth/login", map[string]string{
		"email":    "Jane@Example.com",
		"password": "student123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, registered.User.ID, login.User.ID)

	// Two sessions, two registry rows.
	require.NoError(t, app.DB.QueryRow("SELECT count(*) FROM refresh_tokens").Scan(&count))
	assert.Equal(t, 2, count)

	resp, rotated := postJSON(t, app, "/api/auth/refresh", map[string]string{
		"refreshToken": login.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// Rotation swapped the row, so the total is unchanged.
	require.NoError(t, app.DB.QueryRow("SELECT count(*) FROM refresh_tokens").Scan(&count))
	assert.Equal(t, 2, count)

	resp, replay := postJSON(t, app, "/api/auth/refresh", map[string]string{
		"refreshToken": login.RefreshToken,
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid refresh token", replay.Message)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	resp, _ := postJSON(t, app, "/api/auth/register", map[string]string{
		"name":     "Jane Student",
		"email":    "jane@example.com",
		"password": "student123",
		"role":     "Student",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The unique index on lower(email) catches the different-case duplicate.
	resp, body := postJSON(t, app, "/api/auth/register", map[string]string{
		"name":     "Other Jane",
		"email":    "JANE@example.com",
		"password": "other123",
		"role":     "Student",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "User with this email already exists", body.Message)
}

func TestChangePasswordPersists(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	resp, registered := postJSON(t, app, "/api/auth/register", map[string]string{
		"name":     "Jane Student",
		"email":    "jane@example.com",
		"password": "student123",
		"role":     "Student",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload, err := json.Marshal(map[string]string{
		"currentPassword": "student123",
		"newPassword":     "newpass1",
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, app.Server.URL+"/api/auth/change-password", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+registered.Token)

	changeResp, err := app.Client.Do(req)
	require.NoError(t, err)
	changeResp.Body.Close()
	require.Equal(t, http.StatusOK, changeResp.StatusCode)

	resp, _ = postJSON(t, app, "/api/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "student123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = postJSON(t, app, "/api/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "newpass1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
