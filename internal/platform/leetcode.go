package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"skill-sync-backend/internal/domain"
	"skill-sync-backend/pkg/logger"
	"skill-sync-backend/pkg/metrics"
)

const leetCodeSiteURL = "https://leetcode.com"

// One round trip: solved counts, profile ranking, badges and contest rating
const leetCodeProfileQuery = `
query getUserProfile($username: String!) {
  matchedUser(username: $username) {
    username
    profile {
      ranking
    }
    submitStats {
      acSubmissionNum {
        difficulty
        count
      }
    }
    badges {
      name
      displayName
      icon
    }
  }
  userContestRanking(username: $username) {
    rating
    globalRanking
    attendedContestsCount
    topPercentage
  }
}`

// LeetCodeSnapshot is stored verbatim as the connection's profile data
type LeetCodeSnapshot struct {
	Username         string   `json:"username"`
	TotalSolved      int      `json:"totalSolved"`
	EasySolved       int      `json:"easySolved"`
	MediumSolved     int      `json:"mediumSolved"`
	HardSolved       int      `json:"hardSolved"`
	Ranking          int      `json:"ranking"`
	ContestRating    *float64 `json:"contestRating,omitempty"`
	ContestRanking   *int     `json:"contestRanking,omitempty"`
	ContestsAttended *int     `json:"contestsAttended,omitempty"`
	TopPercentage    *float64 `json:"topPercentage,omitempty"`
	Badges           []Badge  `json:"badges"`
}

// Badge is a platform badge as shown on the profile
type Badge struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Stars int    `json:"stars,omitempty"`
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type leetCodeResponse struct {
	Data struct {
		MatchedUser *struct {
			Username string `json:"username"`
			Profile  struct {
				Ranking int `json:"ranking"`
			} `json:"profile"`
			SubmitStats struct {
				AcSubmissionNum []struct {
					Difficulty string `json:"difficulty"`
					Count      int    `json:"count"`
				} `json:"acSubmissionNum"`
			} `json:"submitStats"`
			Badges []struct {
				Name        string `json:"name"`
				DisplayName string `json:"displayName"`
				Icon        string `json:"icon"`
			} `json:"badges"`
		} `json:"matchedUser"`
		UserContestRanking *struct {
			Rating                float64 `json:"rating"`
			GlobalRanking         int     `json:"globalRanking"`
			AttendedContestsCount int     `json:"attendedContestsCount"`
			TopPercentage         float64 `json:"topPercentage"`
		} `json:"userContestRanking"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// LeetCodeAdapter queries LeetCode's public GraphQL endpoint
type LeetCodeAdapter struct {
	endpoint string
	client   *http.Client
	metrics  metrics.Recorder
}

var _ domain.PlatformAdapter = (*LeetCodeAdapter)(nil)

func NewLeetCodeAdapter(endpoint string, client *http.Client, rec metrics.Recorder) *LeetCodeAdapter {
	if rec == nil {
		rec = metrics.NewNoopMetrics()
	}
	return &LeetCodeAdapter{endpoint: endpoint, client: client, metrics: rec}
}

func (a *LeetCodeAdapter) Name() string {
	return domain.PlatformLeetCode
}

func (a *LeetCodeAdapter) RequiresValidUsername() bool { return true }

// FetchProfile never returns an error: failures degrade to NotFound/Unavailable
func (a *LeetCodeAdapter) FetchProfile(ctx context.Context, username, _ string) domain.FetchResult {
	start := time.Now()
	result := a.fetch(ctx, username)
	a.metrics.RecordPlatformRequest(a.Name(), string(result.Status), time.Since(start))

	if result.Status != domain.FetchOK {
		logger.Log.Warn("LeetCode fetch degraded", "username", username, "status", result.Status, "reason", result.Reason)
	}
	return result
}

func (a *LeetCodeAdapter) fetch(ctx context.Context, username string) domain.FetchResult {
	payload, err := json.Marshal(graphQLRequest{
		Query:     leetCodeProfileQuery,
		Variables: map[string]any{"username": username},
	})
	if err != nil {
		return unavailable(nil, fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return unavailable(nil, fmt.Errorf("%w: %v", ErrPlatformRequest, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", leetCodeSiteURL)

	var body leetCodeResponse
	if err := doJSON(a.client, req, &body); err != nil {
		return unavailable(nil, err)
	}

	user := body.Data.MatchedUser
	if user == nil {
		return notFound(nil, fmt.Errorf("%w: leetcode user %q", ErrProfileNotFound, username))
	}

	snap := &LeetCodeSnapshot{
		Username: username,
		Ranking:  user.Profile.Ranking,
		Badges:   make([]Badge, 0, len(user.Badges)),
	}
	for _, s := range user.SubmitStats.AcSubmissionNum {
		switch s.Difficulty {
		case "Easy":
			snap.EasySolved = s.Count
		case "Medium":
			snap.MediumSolved = s.Count
		case "Hard":
			snap.HardSolved = s.Count
		}
	}
	snap.TotalSolved = snap.EasySolved + snap.MediumSolved + snap.HardSolved

	if contest := body.Data.UserContestRanking; contest != nil {
		rating := contest.Rating
		ranking := contest.GlobalRanking
		attended := contest.AttendedContestsCount
		top := contest.TopPercentage
		snap.ContestRating = &rating
		snap.ContestRanking = &ranking
		snap.ContestsAttended = &attended
		snap.TopPercentage = &top
	}

	for _, b := range user.Badges {
		name := b.DisplayName
		if name == "" {
			name = b.Name
		}
		snap.Badges = append(snap.Badges, Badge{Name: name, Icon: resolveLeetCodeIcon(b.Icon)})
	}

	return domain.FetchResult{Status: domain.FetchOK, Snapshot: snap, Verified: true}
}

// DeriveCertifications emits, in order: the solved-count skill, the contest
// rating badge when rated, then one badge per profile badge.
func (a *LeetCodeAdapter) DeriveCertifications(result domain.FetchResult) []domain.Certification {
	snap, ok := result.Snapshot.(*LeetCodeSnapshot)
	if result.Status != domain.FetchOK || !ok || snap == nil {
		return nil
	}

	certs := make([]domain.Certification, 0, 2+len(snap.Badges))

	solver := domain.Certification{
		Name:  fmt.Sprintf("LeetCode Problem Solver - %d Problems", snap.TotalSolved),
		Type:  domain.CertificationTypeSkill,
		Score: strPtr(fmt.Sprintf("%d problems solved", snap.TotalSolved)),
		Metadata: map[string]any{
			"totalSolved": snap.TotalSolved,
			"easy":        snap.EasySolved,
			"medium":      snap.MediumSolved,
			"hard":        snap.HardSolved,
		},
		Verified: true,
	}
	if snap.Ranking > 0 {
		solver.Ranking = strPtr(fmt.Sprintf("#%d", snap.Ranking))
	}
	certs = append(certs, solver)

	if snap.ContestRating != nil {
		contest := domain.Certification{
			Name:     "LeetCode Contest Rating",
			Type:     domain.CertificationTypeBadge,
			Score:    strPtr(fmt.Sprintf("Rating: %d", int(math.Round(*snap.ContestRating)))),
			Metadata: map[string]any{},
			Verified: true,
		}
		if snap.ContestRanking != nil {
			contest.Ranking = strPtr(fmt.Sprintf("Global Rank: #%d", *snap.ContestRanking))
		}
		if snap.ContestsAttended != nil {
			contest.Metadata["contestsAttended"] = *snap.ContestsAttended
		}
		if snap.TopPercentage != nil {
			contest.Metadata["topPercentage"] = *snap.TopPercentage
		}
		certs = append(certs, contest)
	}

	for _, b := range snap.Badges {
		cert := domain.Certification{
			Name:     b.Name,
			Type:     domain.CertificationTypeBadge,
			Verified: true,
		}
		if b.Icon != "" {
			cert.BadgeImageURL = strPtr(b.Icon)
		}
		certs = append(certs, cert)
	}

	return certs
}

// Badge icons come back either absolute or as site-relative paths
func resolveLeetCodeIcon(icon string) string {
	if strings.HasPrefix(icon, "/") {
		return leetCodeSiteURL + icon
	}
	return icon
}
