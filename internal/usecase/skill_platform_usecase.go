package usecase

import (
	"context"
	"strings"
	"time"

	"skill-sync-backend/internal/domain"
	"skill-sync-backend/internal/platform"
	"skill-sync-backend/pkg/apperror"
	"skill-sync-backend/pkg/audit"
	"skill-sync-backend/pkg/logger"
	"skill-sync-backend/pkg/metrics"
	"skill-sync-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// Sync outcomes reported to metrics
const (
	outcomeVerified    = "verified"
	outcomeUnverified  = "unverified"
	outcomeUnsupported = "unsupported"
)

type skillPlatformUsecase struct {
	repo     domain.SkillPlatformRepository
	registry domain.PlatformRegistry
	validate *validator.Validate
	syncMode string
	metrics  metrics.Recorder
	audit    *audit.Logger
	now      func() time.Time
}

// NewSkillPlatformUsecase creates a new skill platform usecase instance
func NewSkillPlatformUsecase(
	repo domain.SkillPlatformRepository,
	registry domain.PlatformRegistry,
	validate *validator.Validate,
	syncMode string,
	rec metrics.Recorder,
	auditLog *audit.Logger,
) domain.SkillPlatformUsecase {
	if validate == nil {
		validate = validation.New()
	}
	if syncMode != domain.CertificationSyncReplace {
		syncMode = domain.CertificationSyncAppend
	}
	if rec == nil {
		rec = metrics.NewNoopMetrics()
	}
	if auditLog == nil {
		auditLog = audit.Default()
	}
	return &skillPlatformUsecase{
		repo:     repo,
		registry: registry,
		validate: validate,
		syncMode: syncMode,
		metrics:  rec,
		audit:    auditLog,
		now:      time.Now,
	}
}

// SyncPlatform fetches the user's public profile, upserts the connection and
// stores the derived certifications. Only a failed connection write fails the
// call; platform outages degrade to an unverified connection.
func (u *skillPlatformUsecase) SyncPlatform(ctx context.Context, userID string, req domain.SyncRequest) (*domain.SyncResult, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated()
	}

	req.PlatformName = strings.TrimSpace(req.PlatformName)
	req.Username = strings.TrimSpace(req.Username)

	// Unknown platforms and manual entries accept any input; only usernames
	// that are sent to a platform are validated.
	adapter, supported := u.registry.Lookup(req.PlatformName)
	if supported && adapter.RequiresValidUsername() {
		if err := u.validate.Struct(req); err != nil {
			return nil, apperror.BadRequest(validation.Message(err))
		}
	}

	profileURL := platform.ProfileURL(req.PlatformName, req.Username)

	var (
		result  domain.FetchResult
		certs   []domain.Certification
		outcome string
	)
	if supported {
		result = adapter.FetchProfile(ctx, req.Username, profileURL)
		certs = adapter.DeriveCertifications(result)
	} else {
		result = domain.FetchResult{Status: domain.FetchOK, Snapshot: map[string]any{}}
		outcome = outcomeUnsupported
	}

	now := u.now().UTC()
	conn := &domain.PlatformConnection{
		UserID:           userID,
		PlatformName:     req.PlatformName,
		PlatformUsername: req.Username,
		ProfileURL:       profileURL,
		IsVerified:       result.Verified,
		LastSyncedAt:     now,
		ProfileData:      result.Snapshot,
	}
	if conn.IsVerified {
		conn.VerifiedAt = &now
	}

	if err := u.repo.UpsertConnection(ctx, conn); err != nil {
		logger.Log.Error("Failed to save platform connection", "error", err, "user_id", userID, "platform", req.PlatformName)
		return nil, apperror.Persistence("failed to save platform connection", err)
	}

	// A failed fetch must not wipe what an earlier sync stored
	if u.syncMode == domain.CertificationSyncReplace && supported && result.Status == domain.FetchOK {
		if err := u.repo.DeleteCertificationsByPlatform(ctx, conn.ID); err != nil {
			logger.Log.Error("Failed to clear previous certifications", "error", err, "platform_id", conn.ID)
		}
	}

	saved := make([]domain.CertificationRecord, 0, len(certs))
	for _, cert := range certs {
		record := domain.NewCertificationRecord(conn, cert)
		if err := u.repo.InsertCertification(ctx, &record); err != nil {
			logger.Log.Error("Failed to save certification",
				"error", err,
				"platform", req.PlatformName,
				"certification", cert.Name,
			)
			u.metrics.RecordCertificationWriteFailure(req.PlatformName)
			continue
		}
		saved = append(saved, record)
	}

	if outcome == "" {
		outcome = outcomeUnverified
		if conn.IsVerified {
			outcome = outcomeVerified
		}
	}
	u.metrics.RecordSync(req.PlatformName, outcome)

	event := audit.EventSyncCompleted
	details := map[string]any{
		"verified":       conn.IsVerified,
		"certifications": len(saved),
		"fetch_status":   string(result.Status),
	}
	switch {
	case !supported:
		event = audit.EventSyncUnsupported
	case result.Status != domain.FetchOK:
		event = audit.EventSyncDegraded
		details["reason"] = result.Reason
	}
	u.audit.LogSync(ctx, event, userID, req.PlatformName, req.Username, details)

	return &domain.SyncResult{
		Success:        true,
		Platform:       conn,
		Certifications: saved,
		ProfileData:    result.Snapshot,
	}, nil
}

func (u *skillPlatformUsecase) ListConnections(ctx context.Context, userID string) ([]domain.PlatformConnection, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated()
	}
	conns, err := u.repo.ListConnections(ctx, userID)
	if err != nil {
		return nil, apperror.Persistence("failed to list platform connections", err)
	}
	return conns, nil
}

func (u *skillPlatformUsecase) ListCertifications(ctx context.Context, userID, platformName string) ([]domain.CertificationRecord, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated()
	}
	certs, err := u.repo.ListCertifications(ctx, userID, strings.TrimSpace(platformName))
	if err != nil {
		return nil, apperror.Persistence("failed to list certifications", err)
	}
	return certs, nil
}

// DisconnectPlatform removes the connection together with its certifications
func (u *skillPlatformUsecase) DisconnectPlatform(ctx context.Context, userID, platformName string) error {
	if userID == "" {
		return apperror.Unauthenticated()
	}
	platformName = strings.TrimSpace(platformName)
	if platformName == "" {
		return apperror.BadRequest("platform is required")
	}

	deleted, err := u.repo.DeleteConnection(ctx, userID, platformName)
	if err != nil {
		return apperror.Persistence("failed to remove platform connection", err)
	}
	if !deleted {
		return apperror.NotFound("platform connection not found")
	}

	u.audit.LogSync(ctx, audit.EventPlatformRemoved, userID, platformName, "", nil)
	return nil
}

func (u *skillPlatformUsecase) SupportedPlatforms() []string {
	return u.registry.Names()
}
