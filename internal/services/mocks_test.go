package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reportqa/internal/comparison"
	"reportqa/pkg/contracts/domain"
)

// MockParser is a mock for the DocumentParser interface
type MockParser struct {
	mock.Mock
}

func (m *MockParser) ParseFile(ctx context.Context, path, sheet string) *domain.ParsedDocument {
	args := m.Called(ctx, path, sheet)
	return args.Get(0).(*domain.ParsedDocument)
}

func (m *MockParser) ValidateFile(ctx context.Context, path, sheet string) []domain.StructureIssue {
	args := m.Called(ctx, path, sheet)
	return args.Get(0).([]domain.StructureIssue)
}

func (m *MockParser) PreviewFile(ctx context.Context, path, sheet string, maxRows int) domain.FilePreview {
	args := m.Called(ctx, path, sheet, maxRows)
	return args.Get(0).(domain.FilePreview)
}

// MockComparator is a mock for the DocumentComparator interface
type MockComparator struct {
	mock.Mock
}

func (m *MockComparator) Compare(ctx context.Context, source, dest *domain.ParsedDocument) *comparison.Comparison {
	args := m.Called(ctx, source, dest)
	return args.Get(0).(*comparison.Comparison)
}
