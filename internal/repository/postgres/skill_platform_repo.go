package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"skill-sync-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type skillPlatformRepo struct {
	db *pgxpool.Pool
}

func NewSkillPlatformRepository(db *pgxpool.Pool) domain.SkillPlatformRepository {
	return &skillPlatformRepo{db: db}
}

// UpsertConnection relies on the unique (user_id, platform_name) constraint.
// The id of an existing row is kept; the generated one is only used on insert.
func (r *skillPlatformRepo) UpsertConnection(ctx context.Context, c *domain.PlatformConnection) error {
	profileData, err := json.Marshal(c.ProfileData)
	if err != nil {
		return fmt.Errorf("marshal profile data: %w", err)
	}

	query := `
		INSERT INTO external_skill_platforms (
			id, user_id, platform_name, platform_username, profile_url,
			is_verified, verified_at, last_synced_at, profile_data, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, NOW(), NOW())
		ON CONFLICT (user_id, platform_name) DO UPDATE SET
			platform_username = EXCLUDED.platform_username,
			profile_url       = EXCLUDED.profile_url,
			is_verified       = EXCLUDED.is_verified,
			verified_at       = EXCLUDED.verified_at,
			last_synced_at    = EXCLUDED.last_synced_at,
			profile_data      = EXCLUDED.profile_data,
			updated_at        = NOW()
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		uuid.NewString(), c.UserID, c.PlatformName, c.PlatformUsername, c.ProfileURL,
		c.IsVerified, c.VerifiedAt, c.LastSyncedAt, string(profileData),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *skillPlatformRepo) InsertCertification(ctx context.Context, cert *domain.CertificationRecord) error {
	var metadata *string
	if cert.Metadata != nil {
		b, err := json.Marshal(cert.Metadata)
		if err != nil {
			return fmt.Errorf("marshal certification metadata: %w", err)
		}
		s := string(b)
		metadata = &s
	}

	if cert.ID == "" {
		cert.ID = uuid.NewString()
	}

	query := `
		INSERT INTO external_certifications (
			id, user_id, platform_id, platform_name, certification_name, certification_type,
			score, ranking, badge_image_url, verification_url, is_verified, verification_status,
			metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13::jsonb, NOW())
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query,
		cert.ID, cert.UserID, cert.PlatformID, cert.PlatformName, cert.CertificationName, cert.CertificationType,
		cert.Score, cert.Ranking, cert.BadgeImageURL, cert.VerificationURL, cert.IsVerified, cert.VerificationStatus,
		metadata,
	).Scan(&cert.CreatedAt)
}

func (r *skillPlatformRepo) DeleteCertificationsByPlatform(ctx context.Context, platformID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM external_certifications WHERE platform_id = $1`, platformID)
	return err
}

func (r *skillPlatformRepo) ListConnections(ctx context.Context, userID string) ([]domain.PlatformConnection, error) {
	query := `
		SELECT id, user_id, platform_name, platform_username, profile_url,
			is_verified, verified_at, last_synced_at, profile_data, created_at, updated_at
		FROM external_skill_platforms
		WHERE user_id = $1
		ORDER BY platform_name
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.PlatformConnection{}
	for rows.Next() {
		var c domain.PlatformConnection
		var profileData []byte
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.PlatformName, &c.PlatformUsername, &c.ProfileURL,
			&c.IsVerified, &c.VerifiedAt, &c.LastSyncedAt, &profileData, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		c.ProfileData = decodeJSON(profileData)
		results = append(results, c)
	}
	return results, rows.Err()
}

func (r *skillPlatformRepo) ListCertifications(ctx context.Context, userID, platformName string) ([]domain.CertificationRecord, error) {
	query := `
		SELECT id, user_id, platform_id, platform_name, certification_name, certification_type,
			score, ranking, badge_image_url, verification_url, is_verified, verification_status,
			metadata, created_at
		FROM external_certifications
		WHERE user_id = $1
	`
	args := []interface{}{userID}
	if platformName != "" {
		query += " AND platform_name = $2"
		args = append(args, platformName)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.CertificationRecord{}
	for rows.Next() {
		var c domain.CertificationRecord
		var metadata []byte
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.PlatformID, &c.PlatformName, &c.CertificationName, &c.CertificationType,
			&c.Score, &c.Ranking, &c.BadgeImageURL, &c.VerificationURL, &c.IsVerified, &c.VerificationStatus,
			&metadata, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		if m, ok := decodeJSON(metadata).(map[string]any); ok {
			c.Metadata = m
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// DeleteConnection removes the connection and its certifications in one transaction
func (r *skillPlatformRepo) DeleteConnection(ctx context.Context, userID, platformName string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var platformID string
	err = tx.QueryRow(ctx,
		`SELECT id FROM external_skill_platforms WHERE user_id = $1 AND platform_name = $2`,
		userID, platformName,
	).Scan(&platformID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM external_certifications WHERE platform_id = $1`, platformID); err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM external_skill_platforms WHERE id = $1`, platformID); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

func decodeJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}
