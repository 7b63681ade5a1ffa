package domain

import (
	"context"
	"time"
)

// Platform names with a registered adapter
const (
	PlatformLeetCode   = "leetcode"
	PlatformHackerRank = "hackerrank"
	PlatformCodecademy = "codecademy"
)

// CertificationType constants
const (
	CertificationTypeSkill = "skill"
	CertificationTypeBadge = "badge"
)

// CertificationStatus constants
const (
	CertificationStatusVerified = "verified"
	CertificationStatusPending  = "pending"
)

// Certification sync modes. Append keeps every row ever derived, replace drops
// the connection's previous rows on a successful fetch.
const (
	CertificationSyncAppend  = "append"
	CertificationSyncReplace = "replace"
)

// PlatformConnection is a user's link to one external skill platform.
// At most one row exists per (UserID, PlatformName).
type PlatformConnection struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	PlatformName     string     `json:"platform_name"`
	PlatformUsername string     `json:"platform_username"`
	ProfileURL       string     `json:"profile_url"`
	IsVerified       bool       `json:"is_verified"`
	VerifiedAt       *time.Time `json:"verified_at"`
	LastSyncedAt     time.Time  `json:"last_synced_at"`
	ProfileData      any        `json:"profile_data"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CertificationRecord is one verifiable achievement owned by a connection
type CertificationRecord struct {
	ID                 string         `json:"id"`
	UserID             string         `json:"user_id"`
	PlatformID         string         `json:"platform_id"`
	PlatformName       string         `json:"platform_name"`
	CertificationName  string         `json:"certification_name"`
	CertificationType  string         `json:"certification_type"`
	Score              *string        `json:"score,omitempty"`
	Ranking            *string        `json:"ranking,omitempty"`
	BadgeImageURL      *string        `json:"badge_image_url,omitempty"`
	VerificationURL    string         `json:"verification_url"`
	IsVerified         bool           `json:"is_verified"`
	VerificationStatus string         `json:"verification_status"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

// Certification is an achievement derived by an adapter, not yet bound to a
// user or connection.
type Certification struct {
	Name          string
	Type          string
	Score         *string
	Ranking       *string
	BadgeImageURL *string
	Metadata      map[string]any
	Verified      bool
}

// NewCertificationRecord binds a derived certification to its connection.
// Both verification fields are assigned here and nowhere else.
func NewCertificationRecord(conn *PlatformConnection, cert Certification) CertificationRecord {
	status := CertificationStatusPending
	if cert.Verified {
		status = CertificationStatusVerified
	}
	return CertificationRecord{
		UserID:             conn.UserID,
		PlatformID:         conn.ID,
		PlatformName:       conn.PlatformName,
		CertificationName:  cert.Name,
		CertificationType:  cert.Type,
		Score:              cert.Score,
		Ranking:            cert.Ranking,
		BadgeImageURL:      cert.BadgeImageURL,
		VerificationURL:    conn.ProfileURL,
		IsVerified:         cert.Verified,
		VerificationStatus: status,
		Metadata:           cert.Metadata,
	}
}

// FetchStatus describes how a platform fetch ended
type FetchStatus string

const (
	FetchOK          FetchStatus = "ok"
	FetchNotFound    FetchStatus = "not_found"
	FetchUnavailable FetchStatus = "unavailable"
)

// FetchResult is what an adapter hands back for one username. Snapshot may be
// set even when Status is not FetchOK (e.g. a HackerRank "exists: false" reply).
type FetchResult struct {
	Status   FetchStatus
	Snapshot any
	Verified bool
	Reason   string
}

// PlatformAdapter talks to one external platform
type PlatformAdapter interface {
	Name() string
	// RequiresValidUsername reports whether the username ends up in an
	// outbound request and must pass username validation first.
	RequiresValidUsername() bool
	FetchProfile(ctx context.Context, username, profileURL string) FetchResult
	DeriveCertifications(result FetchResult) []Certification
}

// PlatformRegistry maps platform names to adapters
type PlatformRegistry interface {
	Lookup(name string) (PlatformAdapter, bool)
	Names() []string
}

// SyncRequest is the inbound sync payload. Username is only validated for
// adapters that call out to the platform; any platform name is accepted.
type SyncRequest struct {
	PlatformName string `json:"platformName"`
	Username     string `json:"username" validate:"required,max=64,platform_username"`
}

// SyncResult is returned to the caller after a sync
type SyncResult struct {
	Success        bool                  `json:"success"`
	Platform       *PlatformConnection   `json:"platform"`
	Certifications []CertificationRecord `json:"certifications"`
	ProfileData    any                   `json:"profileData"`
}

// SkillPlatformRepository persists connections and certifications
type SkillPlatformRepository interface {
	// UpsertConnection inserts or updates on (user_id, platform_name) and
	// fills ID and CreatedAt/UpdatedAt from the stored row.
	UpsertConnection(ctx context.Context, conn *PlatformConnection) error
	InsertCertification(ctx context.Context, cert *CertificationRecord) error
	DeleteCertificationsByPlatform(ctx context.Context, platformID string) error
	ListConnections(ctx context.Context, userID string) ([]PlatformConnection, error)
	ListCertifications(ctx context.Context, userID, platformName string) ([]CertificationRecord, error)
	DeleteConnection(ctx context.Context, userID, platformName string) (bool, error)
}

// SkillPlatformUsecase interface
type SkillPlatformUsecase interface {
	SyncPlatform(ctx context.Context, userID string, req SyncRequest) (*SyncResult, error)
	ListConnections(ctx context.Context, userID string) ([]PlatformConnection, error)
	ListCertifications(ctx context.Context, userID, platformName string) ([]CertificationRecord, error)
	DisconnectPlatform(ctx context.Context, userID, platformName string) error
	ExportCertifications(ctx context.Context, userID, format string) ([]byte, string, error)
	SupportedPlatforms() []string
}
