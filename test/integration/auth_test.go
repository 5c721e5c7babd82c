//go:build integration

package integration

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginProtectedLogout(t *testing.T) {
	server := newServer(t)
	email := uniqueEmail("flow")

	registerResp := postJSON(t, server.URL+"/users", map[string]string{"email": email, "password": "goodpass1"})
	require.Equal(t, http.StatusCreated, registerResp.StatusCode)
	registerBody := readBody(t, registerResp)
	assert.Contains(t, registerBody, email)
	assert.NotContains(t, registerBody, "password")

	loginResp := postJSON(t, server.URL+"/users/login", map[string]string{"email": email, "password": "goodpass1"})
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	rawToken := loginResp.Header.Get(authHeader)
	require.NotEmpty(t, rawToken)

	meResp := doAuthed(t, http.MethodGet, server.URL+"/users/me", rawToken, nil)
	require.Equal(t, http.StatusOK, meResp.StatusCode)
	assert.Contains(t, readBody(t, meResp), email)

	logoutResp := doAuthed(t, http.MethodDelete, server.URL+"/users/login", rawToken, nil)
	require.Equal(t, http.StatusNoContent, logoutResp.StatusCode)

	reuseResp := doAuthed(t, http.MethodGet, server.URL+"/users/me", rawToken, nil)
	assert.Equal(t, http.StatusUnauthorized, reuseResp.StatusCode)
}

func TestRevokeAllSessions(t *testing.T) {
	server := newServer(t)
	email := uniqueEmail("revokeall")

	registerResp := postJSON(t, server.URL+"/users", map[string]string{"email": email, "password": "goodpass1"})
	require.Equal(t, http.StatusCreated, registerResp.StatusCode)

	first := postJSON(t, server.URL+"/users/login", map[string]string{"email": email, "password": "goodpass1"})
	require.Equal(t, http.StatusOK, first.StatusCode)
	second := postJSON(t, server.URL+"/users/login", map[string]string{"email": email, "password": "goodpass1"})
	require.Equal(t, http.StatusOK, second.StatusCode)

	firstToken := first.Header.Get(authHeader)
	secondToken := second.Header.Get(authHeader)
	require.NotEmpty(t, firstToken)
	require.NotEmpty(t, secondToken)

	revokeResp := doAuthed(t, http.MethodDelete, server.URL+"/users/sessions", firstToken, nil)
	require.Equal(t, http.StatusNoContent, revokeResp.StatusCode)

	for _, rawToken := range []string{firstToken, secondToken} {
		reuseResp := doAuthed(t, http.MethodGet, server.URL+"/users/me", rawToken, nil)
		assert.Equal(t, http.StatusUnauthorized, reuseResp.StatusCode)
	}
}

func TestLoginFailureResponsesMatch(t *testing.T) {
	server := newServer(t)
	email := uniqueEmail("uniform")

	registerResp := postJSON(t, server.URL+"/users", map[string]string{"email": email, "password": "goodpass1"})
	require.Equal(t, http.StatusCreated, registerResp.StatusCode)

	wrongPassword := postJSON(t, server.URL+"/users/login", map[string]string{"email": email, "password": "wrongpass1"})
	unknownEmail := postJSON(t, server.URL+"/users/login", map[string]string{"email": uniqueEmail("ghost"), "password": "goodpass1"})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.StatusCode)
	assert.Equal(t, readBody(t, wrongPassword), readBody(t, unknownEmail))
}

func TestConcurrentLoginsIssueDistinctTokens(t *testing.T) {
	server := newServer(t)
	email := uniqueEmail("concurrent")

	registerResp := postJSON(t, server.URL+"/users", map[string]string{"email": email, "password": "goodpass1"})
	require.Equal(t, http.StatusCreated, registerResp.StatusCode)

	const logins = 4
	tokens := make(chan string, logins)
	var wg sync.WaitGroup
	for i := 0; i < logins; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := postJSON(t, server.URL+"/users/login", map[string]string{"email": email, "password": "goodpass1"})
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			tokens <- resp.Header.Get(authHeader)
		}()
	}
	wg.Wait()
	close(tokens)

	seen := map[string]bool{}
	for rawToken := range tokens {
		require.NotEmpty(t, rawToken)
		assert.False(t, seen[rawToken])
		seen[rawToken] = true

		meResp := doAuthed(t, http.MethodGet, server.URL+"/users/me", rawToken, nil)
		assert.Equal(t, http.StatusOK, meResp.StatusCode)
	}
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	server := newServer(t)
	email := uniqueEmail("dup")

	first := postJSON(t, server.URL+"/users", map[string]string{"email": email, "password": "goodpass1"})
	require.Equal(t, http.StatusCreated, first.StatusCode)

	second := postJSON(t, server.URL+"/users", map[string]string{"email": email, "password": "goodpass1"})
	assert.Equal(t, http.StatusBadRequest, second.StatusCode)
	assert.Contains(t, readBody(t, second), "VALIDATION_ERROR")
}
