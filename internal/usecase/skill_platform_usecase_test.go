package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"skill-sync-backend/internal/domain"
	"skill-sync-backend/internal/platform"
	"skill-sync-backend/internal/repository/memory"
	"skill-sync-backend/internal/usecase"
	"skill-sync-backend/pkg/apperror"
	"skill-sync-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Mocks

type MockAdapter struct {
	mock.Mock
	name string
}

func (m *MockAdapter) Name() string { return m.name }

func (m *MockAdapter) RequiresValidUsername() bool { return true }

func (m *MockAdapter) FetchProfile(ctx context.Context, username, profileURL string) domain.FetchResult {
	args := m.Called(ctx, username, profileURL)
	return args.Get(0).(domain.FetchResult)
}

func (m *MockAdapter) DeriveCertifications(result domain.FetchResult) []domain.Certification {
	args := m.Called(result)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.Certification)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordSync(platform, outcome string) {
	m.Called(platform, outcome)
}

func (m *MockRecorder) RecordPlatformRequest(platform, status string, duration time.Duration) {
	m.Called(platform, status, duration)
}

func (m *MockRecorder) RecordCertificationWriteFailure(platform string) {
	m.Called(platform)
}

// flakyRepo fails selected writes on top of the in-memory store
type flakyRepo struct {
	*memory.SkillPlatformRepo
	failUpsert   bool
	failCertName string
	certInserts  int
}

func (r *flakyRepo) UpsertConnection(ctx context.Context, c *domain.PlatformConnection) error {
	if r.failUpsert {
		return errors.New("connection refused")
	}
	return r.SkillPlatformRepo.UpsertConnection(ctx, c)
}

func (r *flakyRepo) InsertCertification(ctx context.Context, cert *domain.CertificationRecord) error {
	r.certInserts++
	if cert.CertificationName == r.failCertName {
		return errors.New("value too long for type character varying(255)")
	}
	return r.SkillPlatformRepo.InsertCertification(ctx, cert)
}

// Fixtures

func strPtr(s string) *string { return &s }

var verifiedLeetCode = domain.FetchResult{
	Status:   domain.FetchOK,
	Snapshot: map[string]any{"totalSolved": 17},
	Verified: true,
}

var leetCodeCerts = []domain.Certification{
	{
		Name:     "LeetCode Problem Solver - 17 Problems",
		Type:     domain.CertificationTypeSkill,
		Score:    strPtr("17 problems solved"),
		Ranking:  strPtr("#12345"),
		Verified: true,
	},
	{
		Name:          "365 Days Badge",
		Type:          domain.CertificationTypeBadge,
		BadgeImageURL: strPtr("https://leetcode.com/static/365.png"),
		Verified:      true,
	},
}

func newLeetCodeMock(result domain.FetchResult, certs []domain.Certification) *MockAdapter {
	m := &MockAdapter{name: domain.PlatformLeetCode}
	m.On("FetchProfile", mock.Anything, "alice", "https://leetcode.com/u/alice/").Return(result)
	m.On("DeriveCertifications", result).Return(certs)
	return m
}

func newUsecase(repo domain.SkillPlatformRepository, mode string, adapters ...domain.PlatformAdapter) domain.SkillPlatformUsecase {
	return usecase.NewSkillPlatformUsecase(repo, platform.NewRegistry(adapters...), validation.New(), mode, nil, nil)
}

func requireAppError(t *testing.T, err error, code int) *apperror.AppError {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

// Tests

func TestSyncPlatform_VerifiedLeetCode(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSkillPlatformRepository()
	adapter := newLeetCodeMock(verifiedLeetCode, leetCodeCerts)
	uc := newUsecase(repo, domain.CertificationSyncAppend, adapter)

	res, err := uc.SyncPlatform(ctx, "user-1", domain.SyncRequest{PlatformName: "leetcode", Username: "alice"})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, verifiedLeetCode.Snapshot, res.ProfileData)

	conn := res.Platform
	require.NotNil(t, conn)
	assert.NotEmpty(t, conn.ID)
	assert.Equal(t, "user-1", conn.UserID)
	assert.Equal(t, "alice", conn.PlatformUsername)
	assert.Equal(t, "https://leetcode.com/u/alice/", conn.ProfileURL)
	assert.True(t, conn.IsVerified)
	require.NotNil(t, conn.VerifiedAt)
	assert.Equal(t, conn.LastSyncedAt, *conn.VerifiedAt)

	require.Len(t, res.Certifications, 2)
	for _, c := range res.Certifications {
		assert.Equal(t, conn.ID, c.PlatformID)
		assert.Equal(t, "user-1", c.UserID)
		assert.Equal(t, "leetcode", c.PlatformName)
		assert.Equal(t, conn.ProfileURL, c.VerificationURL)
		assert.True(t, c.IsVerified)
		assert.Equal(t, domain.CertificationStatusVerified, c.VerificationStatus)
	}
	assert.Equal(t, "LeetCode Problem Solver - 17 Problems", res.Certifications[0].CertificationName)

	adapter.AssertExpectations(t)
}

func TestSyncPlatform_UnsupportedPlatform(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSkillPlatformRepository()
	uc := newUsecase(repo, domain.CertificationSyncAppend, platform.NewCodecademyAdapter())

	res, err := uc.SyncPlatform(ctx, "user-1", domain.SyncRequest{PlatformName: "codewars", Username: "dave"})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, map[string]any{}, res.ProfileData)
	assert.False(t, res.Platform.IsVerified)
	assert.Nil(t, res.Platform.VerifiedAt)
	assert.Equal(t, "", res.Platform.ProfileURL)
	assert.NotNil(t, res.Certifications)
	assert.Empty(t, res.Certifications)

	conns, err := repo.ListConnections(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, "codewars", conns[0].PlatformName)
}

func TestSyncPlatform_CodecademyIsUnverified(t *testing.T) {
	repo := memory.NewSkillPlatformRepository()
	uc := newUsecase(repo, domain.CertificationSyncAppend, platform.NewCodecademyAdapter())

	res, err := uc.SyncPlatform(context.Background(), "user-1", domain.SyncRequest{PlatformName: "codecademy", Username: "carol"})
	require.NoError(t, err)

	assert.False(t, res.Platform.IsVerified)
	assert.Equal(t, "https://www.codecademy.com/profiles/carol", res.Platform.ProfileURL)
	assert.Equal(t, &platform.ManualSnapshot{
		Username:    "carol",
		ManualEntry: true,
		ProfileURL:  "https://www.codecademy.com/profiles/carol",
	}, res.ProfileData)
	assert.Empty(t, res.Certifications)
}

func TestSyncPlatform_UnavailablePlatformStillSucceeds(t *testing.T) {
	repo := memory.NewSkillPlatformRepository()
	down := domain.FetchResult{Status: domain.FetchUnavailable, Reason: "HTTP 500"}
	adapter := newLeetCodeMock(down, nil)
	uc := newUsecase(repo, domain.CertificationSyncAppend, adapter)

	res, err := uc.SyncPlatform(context.Background(), "user-1", domain.SyncRequest{PlatformName: "leetcode", Username: "alice"})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.False(t, res.Platform.IsVerified)
	assert.Nil(t, res.Platform.VerifiedAt)
	assert.Nil(t, res.ProfileData)
	assert.Empty(t, res.Certifications)
}

func TestSyncPlatform_RepeatedSyncs(t *testing.T) {
	ctx := context.Background()
	req := domain.SyncRequest{PlatformName: "leetcode", Username: "alice"}

	t.Run("append mode accumulates certifications", func(t *testing.T) {
		repo := memory.NewSkillPlatformRepository()
		uc := newUsecase(repo, domain.CertificationSyncAppend, newLeetCodeMock(verifiedLeetCode, leetCodeCerts))

		first, err := uc.SyncPlatform(ctx, "user-1", req)
		require.NoError(t, err)
		second, err := uc.SyncPlatform(ctx, "user-1", req)
		require.NoError(t, err)

		assert.Equal(t, first.Platform.ID, second.Platform.ID)

		conns, _ := repo.ListConnections(ctx, "user-1")
		assert.Len(t, conns, 1)
		certs, _ := repo.ListCertifications(ctx, "user-1", "leetcode")
		assert.Len(t, certs, 4)
	})

	t.Run("replace mode keeps only the latest set", func(t *testing.T) {
		repo := memory.NewSkillPlatformRepository()
		uc := newUsecase(repo, domain.CertificationSyncReplace, newLeetCodeMock(verifiedLeetCode, leetCodeCerts))

		_, err := uc.SyncPlatform(ctx, "user-1", req)
		require.NoError(t, err)
		_, err = uc.SyncPlatform(ctx, "user-1", req)
		require.NoError(t, err)

		conns, _ := repo.ListConnections(ctx, "user-1")
		assert.Len(t, conns, 1)
		certs, _ := repo.ListCertifications(ctx, "user-1", "leetcode")
		assert.Len(t, certs, 2)
	})

	t.Run("replace mode keeps certifications when the platform is down", func(t *testing.T) {
		repo := memory.NewSkillPlatformRepository()
		down := domain.FetchResult{Status: domain.FetchUnavailable, Reason: "timeout"}

		adapter := &MockAdapter{name: domain.PlatformLeetCode}
		adapter.On("FetchProfile", mock.Anything, "alice", mock.Anything).Return(verifiedLeetCode).Once()
		adapter.On("FetchProfile", mock.Anything, "alice", mock.Anything).Return(down).Once()
		adapter.On("DeriveCertifications", verifiedLeetCode).Return(leetCodeCerts)
		adapter.On("DeriveCertifications", down).Return(nil)
		uc := newUsecase(repo, domain.CertificationSyncReplace, adapter)

		_, err := uc.SyncPlatform(ctx, "user-1", req)
		require.NoError(t, err)
		res, err := uc.SyncPlatform(ctx, "user-1", req)
		require.NoError(t, err)

		assert.False(t, res.Platform.IsVerified)
		certs, _ := repo.ListCertifications(ctx, "user-1", "leetcode")
		assert.Len(t, certs, 2)
		adapter.AssertExpectations(t)
	})
}

func TestSyncPlatform_CertificationWriteFailureIsTolerated(t *testing.T) {
	repo := &flakyRepo{SkillPlatformRepo: memory.NewSkillPlatformRepository(), failCertName: "365 Days Badge"}
	rec := new(MockRecorder)
	rec.On("RecordCertificationWriteFailure", "leetcode").Once()
	rec.On("RecordSync", "leetcode", "verified").Once()

	uc := usecase.NewSkillPlatformUsecase(repo,
		platform.NewRegistry(newLeetCodeMock(verifiedLeetCode, leetCodeCerts)),
		validation.New(), domain.CertificationSyncAppend, rec, nil)

	res, err := uc.SyncPlatform(context.Background(), "user-1", domain.SyncRequest{PlatformName: "leetcode", Username: "alice"})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 2, repo.certInserts)
	require.Len(t, res.Certifications, 1)
	assert.Equal(t, "LeetCode Problem Solver - 17 Problems", res.Certifications[0].CertificationName)
	rec.AssertExpectations(t)
}

func TestSyncPlatform_ConnectionWriteFailure(t *testing.T) {
	repo := &flakyRepo{SkillPlatformRepo: memory.NewSkillPlatformRepository(), failUpsert: true}
	uc := newUsecase(repo, domain.CertificationSyncAppend, newLeetCodeMock(verifiedLeetCode, leetCodeCerts))

	res, err := uc.SyncPlatform(context.Background(), "user-1", domain.SyncRequest{PlatformName: "leetcode", Username: "alice"})
	assert.Nil(t, res)
	appErr := requireAppError(t, err, http.StatusInternalServerError)
	assert.Contains(t, appErr.Message, "failed to save platform connection")
	assert.Equal(t, 0, repo.certInserts)
}

func TestSyncPlatform_RequiresUser(t *testing.T) {
	adapter := &MockAdapter{name: domain.PlatformLeetCode}
	uc := newUsecase(memory.NewSkillPlatformRepository(), domain.CertificationSyncAppend, adapter)

	_, err := uc.SyncPlatform(context.Background(), "", domain.SyncRequest{PlatformName: "leetcode", Username: "alice"})

	appErr := requireAppError(t, err, http.StatusInternalServerError)
	assert.Equal(t, apperror.MsgUnauthenticated, appErr.Message)
	adapter.AssertNotCalled(t, "FetchProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncPlatform_Validation(t *testing.T) {
	adapter := &MockAdapter{name: domain.PlatformLeetCode}
	uc := newUsecase(memory.NewSkillPlatformRepository(), domain.CertificationSyncAppend, adapter)

	cases := []struct {
		name    string
		req     domain.SyncRequest
		message string
	}{
		{"missing username", domain.SyncRequest{PlatformName: "leetcode"}, "username is required"},
		{"illegal characters", domain.SyncRequest{PlatformName: "leetcode", Username: "alice/../admin"}, "username may only contain"},
		{"too long", domain.SyncRequest{PlatformName: "leetcode", Username: strings.Repeat("a", 65)}, "username must be at most 64 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.SyncPlatform(context.Background(), "user-1", tc.req)
			appErr := requireAppError(t, err, http.StatusBadRequest)
			assert.Contains(t, appErr.Message, tc.message)
		})
	}
	adapter.AssertNotCalled(t, "FetchProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncPlatform_InputsThatNeverFail(t *testing.T) {
	cases := []struct {
		name string
		req  domain.SyncRequest
	}{
		{"empty platform name", domain.SyncRequest{PlatformName: "", Username: "alice"}},
		{"long platform name", domain.SyncRequest{PlatformName: strings.Repeat("x", 40), Username: "alice"}},
		{"unknown platform without username", domain.SyncRequest{PlatformName: "codewars", Username: ""}},
		{"codecademy with a display name", domain.SyncRequest{PlatformName: "codecademy", Username: "John Doe"}},
		{"codecademy without username", domain.SyncRequest{PlatformName: "codecademy", Username: ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := memory.NewSkillPlatformRepository()
			leetcode := &MockAdapter{name: domain.PlatformLeetCode}
			uc := newUsecase(repo, domain.CertificationSyncAppend, leetcode, platform.NewCodecademyAdapter())

			res, err := uc.SyncPlatform(context.Background(), "user-1", tc.req)
			require.NoError(t, err)

			assert.True(t, res.Success)
			assert.False(t, res.Platform.IsVerified)
			assert.Nil(t, res.Platform.VerifiedAt)
			assert.Equal(t, tc.req.PlatformName, res.Platform.PlatformName)
			assert.Empty(t, res.Certifications)
			leetcode.AssertNotCalled(t, "FetchProfile", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDisconnectPlatform(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSkillPlatformRepository()
	uc := newUsecase(repo, domain.CertificationSyncAppend, newLeetCodeMock(verifiedLeetCode, leetCodeCerts))

	_, err := uc.SyncPlatform(ctx, "user-1", domain.SyncRequest{PlatformName: "leetcode", Username: "alice"})
	require.NoError(t, err)

	require.NoError(t, uc.DisconnectPlatform(ctx, "user-1", "leetcode"))

	conns, err := uc.ListConnections(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, conns)
	certs, err := uc.ListCertifications(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Empty(t, certs)

	err = uc.DisconnectPlatform(ctx, "user-1", "leetcode")
	requireAppError(t, err, http.StatusNotFound)
}

func TestExportCertifications(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSkillPlatformRepository()
	uc := newUsecase(repo, domain.CertificationSyncAppend, newLeetCodeMock(verifiedLeetCode, leetCodeCerts))

	_, err := uc.SyncPlatform(ctx, "user-1", domain.SyncRequest{PlatformName: "leetcode", Username: "alice"})
	require.NoError(t, err)

	t.Run("csv", func(t *testing.T) {
		data, filename, err := uc.ExportCertifications(ctx, "user-1", "csv")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(filename, "skill_certifications_"))
		assert.True(t, strings.HasSuffix(filename, ".csv"))

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "PLATFORM,CERTIFICATION,TYPE"))
		assert.Contains(t, string(data), "LeetCode Problem Solver - 17 Problems")
	})

	t.Run("xlsx", func(t *testing.T) {
		data, filename, err := uc.ExportCertifications(ctx, "user-1", "")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(filename, ".xlsx"))

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Certifications")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "PLATFORM", rows[0][0])
		assert.Equal(t, "leetcode", rows[1][0])
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := uc.ExportCertifications(ctx, "user-1", "pdf")
		requireAppError(t, err, http.StatusBadRequest)
	})
}

func TestSupportedPlatforms(t *testing.T) {
	uc := newUsecase(memory.NewSkillPlatformRepository(), domain.CertificationSyncAppend,
		platform.NewCodecademyAdapter(), &MockAdapter{name: domain.PlatformLeetCode})

	assert.Equal(t, []string{"codecademy", "leetcode"}, uc.SupportedPlatforms())
}
