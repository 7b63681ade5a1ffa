package platform

import (
	"context"

	"skill-sync-backend/internal/domain"
)

// ManualSnapshot records a platform the user entered by hand
type ManualSnapshot struct {
	Username    string `json:"username"`
	ManualEntry bool   `json:"manualEntry"`
	ProfileURL  string `json:"profileUrl"`
}

// ManualAdapter serves platforms without a public verification API.
// It never calls out and never verifies.
type ManualAdapter struct {
	name string
}

var _ domain.PlatformAdapter = (*ManualAdapter)(nil)

func NewManualAdapter(name string) *ManualAdapter {
	return &ManualAdapter{name: name}
}

// NewCodecademyAdapter is the manual-entry adapter for Codecademy
func NewCodecademyAdapter() *ManualAdapter {
	return NewManualAdapter(domain.PlatformCodecademy)
}

func (a *ManualAdapter) Name() string {
	return a.name
}

// RequiresValidUsername is false: the username is only echoed back, never sent anywhere
func (a *ManualAdapter) RequiresValidUsername() bool { return false }

func (a *ManualAdapter) FetchProfile(_ context.Context, username, profileURL string) domain.FetchResult {
	return domain.FetchResult{
		Status: domain.FetchOK,
		Snapshot: &ManualSnapshot{
			Username:    username,
			ManualEntry: true,
			ProfileURL:  profileURL,
		},
		Verified: false,
	}
}

func (a *ManualAdapter) DeriveCertifications(domain.FetchResult) []domain.Certification {
	return nil
}
