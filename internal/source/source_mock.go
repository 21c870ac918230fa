package source

import (
	"context"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/schema"
	"github.com/stretchr/testify/mock"
)

// MockActivitySource is a mock implementation of contract.ActivitySource.
type MockActivitySource struct {
	mock.Mock
}

var _ contract.ActivitySource = &MockActivitySource{} // Compile-time check

// Commits mocks the commit sub-signal.
func (m *MockActivitySource) Commits(ctx context.Context, fullName string) (schema.CommitActivity, error) {
	args := m.Called(ctx, fullName)
	v, _ := args.Get(0).(schema.CommitActivity)
	return v, args.Error(1)
}

// Release mocks the release sub-signal.
func (m *MockActivitySource) Release(ctx context.Context, fullName string) (schema.ReleaseInfo, error) {
	args := m.Called(ctx, fullName)
	v, _ := args.Get(0).(schema.ReleaseInfo)
	return v, args.Error(1)
}

// Contributors mocks the contributor sub-signal.
func (m *MockActivitySource) Contributors(ctx context.Context, fullName string) (schema.ContributorActivity, error) {
	args := m.Called(ctx, fullName)
	v, _ := args.Get(0).(schema.ContributorActivity)
	return v, args.Error(1)
}

// PullRequests mocks the pull-request sub-signal.
func (m *MockActivitySource) PullRequests(ctx context.Context, fullName string) (schema.PullRequestActivity, error) {
	args := m.Called(ctx, fullName)
	v, _ := args.Get(0).(schema.PullRequestActivity)
	return v, args.Error(1)
}

// Issues mocks the issue sub-signal.
func (m *MockActivitySource) Issues(ctx context.Context, fullName string) (schema.IssueActivity, error) {
	args := m.Called(ctx, fullName)
	v, _ := args.Get(0).(schema.IssueActivity)
	return v, args.Error(1)
}
