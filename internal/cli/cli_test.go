// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/saddlebag/internal/cli"
	"github.com/taibuivan/saddlebag/internal/platform/constants"
)

// fakeServer answers the loader from the cookie it receives: "stale" reads
// as a stale premium session, "fresh" as a fresh one.
type fakeServer struct {
	refreshes   atomic.Int32
	failRefresh bool
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/entitlement", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(constants.SessionCookieName)
		stale := err != nil || cookie.Value == "stale"
		loggedIn := err == nil

		w.Header().Set(constants.HeaderContentType, constants.MIMEApplicationJSON)
		fmt.Fprintf(w, `{"data":{"is_logged_in":%t,"has_premium":%t,"needs_refresh":%t,"discord":{"linked":%t,"id":"42","username":"chocobo"}}}`,
			loggedIn, loggedIn, stale, loggedIn)
	})

	mux.HandleFunc("POST /refresh-discord-roles", func(w http.ResponseWriter, r *http.Request) {
		f.refreshes.Add(1)
		if f.failRefresh {
			http.Redirect(w, r, "/options?error=discord_roles_refresh_failed", http.StatusFound)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: constants.SessionCookieName, Value: "fresh", Path: "/"})
		w.Header().Set(constants.HeaderContentType, constants.MIMEApplicationJSON)
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	return mux
}

func run(t *testing.T, server *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer

	root := cli.NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--server", server.URL}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestEntitlementCmd(t *testing.T) {
	fake := &fakeServer{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	out, err := run(t, server, "--session", "fresh", "entitlement")
	require.NoError(t, err)
	assert.Contains(t, out, "chocobo (42)")
	assert.Contains(t, out, "Gate:        content")

	out, err = run(t, server, "entitlement")
	require.NoError(t, err)
	assert.Contains(t, out, "not linked")
	assert.Contains(t, out, "Gate:        login")
}

func TestRefreshCmd_AutoWhenStale(t *testing.T) {
	fake := &fakeServer{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	out, err := run(t, server, "--session", "stale", "refresh")
	require.NoError(t, err)

	assert.EqualValues(t, 1, fake.refreshes.Load())
	assert.Contains(t, out, "Gate on mount: refreshing")
	assert.Contains(t, out, "Gate:        content")
	assert.Contains(t, out, "Session cookie: fresh")
}

func TestRefreshCmd_FreshWithoutForce(t *testing.T) {
	fake := &fakeServer{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	out, err := run(t, server, "--session", "fresh", "refresh")
	require.NoError(t, err)

	assert.Zero(t, fake.refreshes.Load())
	assert.Contains(t, out, "Gate on mount: content")
}

func TestRefreshCmd_Force(t *testing.T) {
	fake := &fakeServer{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	_, err := run(t, server, "--session", "fresh", "refresh", "--force")
	require.NoError(t, err)
	assert.EqualValues(t, 1, fake.refreshes.Load())
}

func TestRefreshCmd_Failure(t *testing.T) {
	fake := &fakeServer{failRefresh: true}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	_, err := run(t, server, "--session", "stale", "refresh", "--reload-delay", "1ms")
	assert.Error(t, err)
	assert.EqualValues(t, 1, fake.refreshes.Load())
}

func TestRootCmd_InvalidServer(t *testing.T) {
	root := cli.NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--server", "not a url", "entitlement"})

	assert.Error(t, root.Execute())
}
