package mocks

import (
	"context"

	"items-planning/core/eform"

	"github.com/stretchr/testify/mock"
)

// CaseService is a mock implementation of reconcile.CaseService
type CaseService struct {
	mock.Mock
}

func (m *CaseService) ReadTemplate(ctx context.Context, templateID int) (*eform.Template, error) {
	args := m.Called(ctx, templateID)
	if tpl, ok := args.Get(0).(*eform.Template); ok {
		return tpl, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CaseService) CreateCase(ctx context.Context, payload *eform.CasePayload, siteID int) (*int, error) {
	args := m.Called(ctx, payload, siteID)
	if handle, ok := args.Get(0).(*int); ok {
		return handle, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CaseService) LookupByExternalID(ctx context.Context, externalID int) (*eform.CaseRecord, error) {
	args := m.Called(ctx, externalID)
	if rec, ok := args.Get(0).(*eform.CaseRecord); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CaseService) LookupByCaseID(ctx context.Context, caseID int) (*eform.CaseRecord, error) {
	args := m.Called(ctx, caseID)
	if rec, ok := args.Get(0).(*eform.CaseRecord); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CaseService) DeleteCase(ctx context.Context, externalID int) error {
	args := m.Called(ctx, externalID)
	return args.Error(0)
}

// FolderService is a mock implementation of reconcile.FolderService
type FolderService struct {
	mock.Mock
}

func (m *FolderService) ListFolders(ctx context.Context, includeInactive bool) ([]eform.Folder, error) {
	args := m.Called(ctx, includeInactive)
	if folders, ok := args.Get(0).([]eform.Folder); ok {
		return folders, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FolderService) CreateFolder(ctx context.Context, name, description string, parentID *int) error {
	args := m.Called(ctx, name, description, parentID)
	return args.Error(0)
}
