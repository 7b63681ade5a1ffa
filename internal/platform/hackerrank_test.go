package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skill-sync-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHackerRankFetchProfile_Success(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[
			{"badge_name":"Problem Solving","icon":"https://hrcdn.net/ps.svg","stars":5},
			{"badge_name":"Python","icon":"","stars":0}
		]}`))
	}))
	defer server.Close()

	adapter := NewHackerRankAdapter(server.URL, NewHTTPClient(5*time.Second), nil)
	result := adapter.FetchProfile(context.Background(), "bob_42", "")

	assert.Equal(t, "/rest/hackers/bob_42/badges", gotPath)
	require.Equal(t, domain.FetchOK, result.Status)
	assert.True(t, result.Verified)

	snap := result.Snapshot.(*HackerRankSnapshot)
	assert.True(t, snap.Exists)
	assert.Equal(t, "bob_42", snap.Username)
	require.Len(t, snap.Badges, 2)

	certs := adapter.DeriveCertifications(result)
	require.Len(t, certs, 2)
	assert.Equal(t, "Problem Solving", certs[0].Name)
	assert.Equal(t, domain.CertificationTypeBadge, certs[0].Type)
	assert.Equal(t, "https://hrcdn.net/ps.svg", *certs[0].BadgeImageURL)
	assert.Equal(t, "5 stars", *certs[0].Score)
	assert.True(t, certs[0].Verified)

	assert.Equal(t, "Python", certs[1].Name)
	assert.Nil(t, certs[1].BadgeImageURL)
	assert.Nil(t, certs[1].Score)

	for _, c := range certs {
		assert.NotEqual(t, domain.CertificationTypeSkill, c.Type)
	}
}

func TestHackerRankFetchProfile_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := NewHackerRankAdapter(server.URL, NewHTTPClient(5*time.Second), nil)
	result := adapter.FetchProfile(context.Background(), "ghost", "")

	assert.Equal(t, domain.FetchNotFound, result.Status)
	assert.False(t, result.Verified)

	snap := result.Snapshot.(*HackerRankSnapshot)
	assert.False(t, snap.Exists)
	assert.Equal(t, "ghost", snap.Username)
	assert.Empty(t, adapter.DeriveCertifications(result))
}

func TestHackerRankFetchProfile_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	adapter := NewHackerRankAdapter(url, NewHTTPClient(time.Second), nil)
	result := adapter.FetchProfile(context.Background(), "bob", "")

	assert.Equal(t, domain.FetchUnavailable, result.Status)
	assert.False(t, result.Verified)
	assert.False(t, result.Snapshot.(*HackerRankSnapshot).Exists)
}

func TestHackerRankFetchProfile_EscapesUsername(t *testing.T) {
	var rawPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	adapter := NewHackerRankAdapter(server.URL, NewHTTPClient(5*time.Second), nil)
	adapter.FetchProfile(context.Background(), "a/b", "")

	assert.Equal(t, "/rest/hackers/a%2Fb/badges", rawPath)
}

func TestHackerRankSnapshotJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	adapter := NewHackerRankAdapter(server.URL, NewHTTPClient(5*time.Second), nil)
	result := adapter.FetchProfile(context.Background(), "newbie", "")
	require.Equal(t, domain.FetchOK, result.Status)

	raw, err := json.Marshal(result.Snapshot)
	require.NoError(t, err)
	assert.JSONEq(t, `{"exists":true,"username":"newbie","badges":[]}`, string(raw))

	raw, err = json.Marshal(&HackerRankSnapshot{Exists: false, Username: "ghost"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"exists":false,"username":"ghost"}`, string(raw))

	raw, err = json.Marshal(&HackerRankSnapshot{Exists: true, Username: "nil-badges"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"exists":true,"username":"nil-badges","badges":[]}`, string(raw))
}
