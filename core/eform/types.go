package eform

import (
	"fmt"
	"time"

	"items-planning/core/apperr"
)

// Element is one check list element of a template.
type Element struct {
	ID          int    `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Template is a remote form definition cases are created from.
type Template struct {
	ID        int       `json:"id"`
	Label     string    `json:"label"`
	Elements  []Element `json:"elements"`
	FolderID  int       `json:"folder_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Validate checks that a case can be built from the template.
func (t *Template) Validate() error {
	if t == nil {
		return apperr.NotFound("template not found")
	}
	if len(t.Elements) == 0 {
		return apperr.Validation(fmt.Sprintf("template %d has no elements", t.ID))
	}
	return nil
}

// CasePayload is the labeled, dated template instance submitted to a site.
// It is never persisted.
type CasePayload struct {
	TemplateID int       `json:"template_id"`
	Label      string    `json:"label"`
	Elements   []Element `json:"elements"`
	// FolderID 0 means no folder.
	FolderID  int       `json:"folder_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// NewPayload copies the template and overwrites the label, the first element label,
// the folder and the validity window. The template itself is left untouched.
func (t *Template) NewPayload(label string, folderID int, start, end time.Time) *CasePayload {
	elements := make([]Element, len(t.Elements))
	copy(elements, t.Elements)
	if len(elements) > 0 {
		elements[0].Label = label
	}

	return &CasePayload{
		TemplateID: t.ID,
		Label:      label,
		Elements:   elements,
		FolderID:   folderID,
		StartDate:  start.UTC(),
		EndDate:    end.UTC(),
	}
}

// CaseRecord identifies a remote case instance by its external handle and its
// canonical internal id. Either may be missing.
type CaseRecord struct {
	ExternalID *int `json:"external_id"`
	CaseID     *int `json:"case_id"`
}

// Folder is a remote namespace cases are grouped in.
type Folder struct {
	Name     string `json:"name"`
	RemoteID *int   `json:"remote_id"`
}

type createCaseRequest struct {
	*CasePayload
	SiteID int `json:"site_id"`
}

type createCaseResponse struct {
	ExternalID *int `json:"external_id"`
}

type createFolderRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    *int   `json:"parent_id"`
}
