package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"skill-sync-backend/internal/domain"
	"skill-sync-backend/pkg/logger"
	"skill-sync-backend/pkg/metrics"
)

// HackerRankSnapshot is stored verbatim as the connection's profile data
type HackerRankSnapshot struct {
	Exists   bool    `json:"exists"`
	Username string  `json:"username"`
	Badges   []Badge `json:"badges"`
}

// MarshalJSON drops the badge list for a missing hacker and always writes an
// array for an existing one, even with zero badges.
func (s HackerRankSnapshot) MarshalJSON() ([]byte, error) {
	if !s.Exists {
		return json.Marshal(struct {
			Exists   bool   `json:"exists"`
			Username string `json:"username"`
		}{s.Exists, s.Username})
	}
	type snapshot HackerRankSnapshot
	out := snapshot(s)
	if out.Badges == nil {
		out.Badges = []Badge{}
	}
	return json.Marshal(out)
}

type hackerRankBadgesResponse struct {
	Models []struct {
		BadgeName string `json:"badge_name"`
		Name      string `json:"name"`
		Icon      string `json:"icon"`
		Stars     int    `json:"stars"`
	} `json:"models"`
}

// HackerRankAdapter reads the public badge listing of a hacker
type HackerRankAdapter struct {
	baseURL string
	client  *http.Client
	metrics metrics.Recorder
}

var _ domain.PlatformAdapter = (*HackerRankAdapter)(nil)

func NewHackerRankAdapter(baseURL string, client *http.Client, rec metrics.Recorder) *HackerRankAdapter {
	if rec == nil {
		rec = metrics.NewNoopMetrics()
	}
	return &HackerRankAdapter{baseURL: baseURL, client: client, metrics: rec}
}

func (a *HackerRankAdapter) Name() string {
	return domain.PlatformHackerRank
}

func (a *HackerRankAdapter) RequiresValidUsername() bool { return true }

// FetchProfile treats any non-2xx reply as "profile does not exist"
func (a *HackerRankAdapter) FetchProfile(ctx context.Context, username, _ string) domain.FetchResult {
	start := time.Now()
	result := a.fetch(ctx, username)
	a.metrics.RecordPlatformRequest(a.Name(), string(result.Status), time.Since(start))

	if result.Status != domain.FetchOK {
		logger.Log.Warn("HackerRank fetch degraded", "username", username, "status", result.Status, "reason", result.Reason)
	}
	return result
}

func (a *HackerRankAdapter) fetch(ctx context.Context, username string) domain.FetchResult {
	missing := &HackerRankSnapshot{Exists: false, Username: username}

	endpoint := fmt.Sprintf("%s/rest/hackers/%s/badges", a.baseURL, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return unavailable(missing, fmt.Errorf("%w: %v", ErrPlatformRequest, err))
	}

	var body hackerRankBadgesResponse
	if err := doJSON(a.client, req, &body); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return notFound(missing, fmt.Errorf("%w: hackerrank user %q (%v)", ErrProfileNotFound, username, err))
		}
		return unavailable(missing, err)
	}

	snap := &HackerRankSnapshot{
		Exists:   true,
		Username: username,
		Badges:   make([]Badge, 0, len(body.Models)),
	}
	for _, m := range body.Models {
		name := m.BadgeName
		if name == "" {
			name = m.Name
		}
		snap.Badges = append(snap.Badges, Badge{Name: name, Icon: m.Icon, Stars: m.Stars})
	}

	return domain.FetchResult{Status: domain.FetchOK, Snapshot: snap, Verified: true}
}

// DeriveCertifications emits one verified badge per HackerRank badge.
// There is no solved-count summary on HackerRank's public surface.
func (a *HackerRankAdapter) DeriveCertifications(result domain.FetchResult) []domain.Certification {
	snap, ok := result.Snapshot.(*HackerRankSnapshot)
	if result.Status != domain.FetchOK || !ok || snap == nil || !snap.Exists {
		return nil
	}

	certs := make([]domain.Certification, 0, len(snap.Badges))
	for _, b := range snap.Badges {
		cert := domain.Certification{
			Name:     b.Name,
			Type:     domain.CertificationTypeBadge,
			Verified: true,
		}
		if b.Icon != "" {
			cert.BadgeImageURL = strPtr(b.Icon)
		}
		if b.Stars > 0 {
			cert.Score = strPtr(fmt.Sprintf("%d stars", b.Stars))
			cert.Metadata = map[string]any{"stars": b.Stars}
		}
		certs = append(certs, cert)
	}
	return certs
}
