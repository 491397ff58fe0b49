package mocks

import (
	"context"

	"dms/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Storage(ctx context.Context) (*service.StorageReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StorageReport), args.Error(1)
}

func (m *MockReportService) Departments(ctx context.Context) ([]service.DepartmentStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.DepartmentStat), args.Error(1)
}

func (m *MockReportService) Activity(ctx context.Context) (*service.ActivityReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ActivityReport), args.Error(1)
}

func (m *MockReportService) Metrics(ctx context.Context) (*service.MetricsReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MetricsReport), args.Error(1)
}
