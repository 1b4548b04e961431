package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"isp-image-guard-service/domain"
	"isp-image-guard-service/service"
)

type identityCacheMock struct {
	viewers map[string]domain.ViewerInfo
	sets    int
}

func newIdentityCacheMock() *identityCacheMock {
	return &identityCacheMock{viewers: map[string]domain.ViewerInfo{}}
}

func (m *identityCacheMock) Get(ctx context.Context, token string) (*domain.ViewerInfo, error) {
	viewer, ok := m.viewers[token]
	if !ok {
		return nil, domain.ErrIdentityCacheMiss
	}
	return &viewer, nil
}

func (m *identityCacheMock) Set(ctx context.Context, token string, viewer domain.ViewerInfo) error {
	m.viewers[token] = viewer
	m.sets++
	return nil
}

type identityRepoMock struct {
	resp  *domain.VerifyViewerResponse
	calls int
}

func (m *identityRepoMock) VerifyViewer(ctx context.Context, token string) (*domain.VerifyViewerResponse, error) {
	m.calls++
	return m.resp, nil
}

func TestIdentityVerifyCachesViewer(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cache := newIdentityCacheMock()
	repo := &identityRepoMock{resp: &domain.VerifyViewerResponse{
		Verified: true,
		Viewer:   &domain.ViewerInfo{ViewerId: "viewer-1", DisplayName: "First Viewer"},
	}}
	identity := service.NewIdentity(cache, repo)

	resp, err := identity.VerifyViewer(context.Background(), "token")
	require.NoError(err)
	require.True(resp.Verified)
	require.EqualValues("viewer-1", resp.Viewer.ViewerId)
	require.EqualValues(1, repo.calls)
	require.EqualValues(1, cache.sets)

	resp, err = identity.VerifyViewer(context.Background(), "token")
	require.NoError(err)
	require.True(resp.Verified)
	require.EqualValues("viewer-1", resp.Viewer.ViewerId)
	require.EqualValues(1, repo.calls)
}

func TestIdentityUnverifiedNotCached(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cache := newIdentityCacheMock()
	repo := &identityRepoMock{resp: &domain.VerifyViewerResponse{Verified: false, ErrorReason: "unknown token"}}
	identity := service.NewIdentity(cache, repo)

	resp, err := identity.VerifyViewer(context.Background(), "token")
	require.NoError(err)
	require.False(resp.Verified)
	require.EqualValues("unknown token", resp.ErrorReason)
	require.EqualValues(0, cache.sets)
}

func TestIdentityVerifiedWithoutViewer(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cache := newIdentityCacheMock()
	repo := &identityRepoMock{resp: &domain.VerifyViewerResponse{Verified: true}}
	identity := service.NewIdentity(cache, repo)

	resp, err := identity.VerifyViewer(context.Background(), "token")
	require.Error(err)
	require.Nil(resp)
	require.EqualValues(0, cache.sets)
}
