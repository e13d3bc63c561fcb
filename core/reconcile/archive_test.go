package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"

	"items-planning/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReportArchiver_Save(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	archiver := NewReportArchiver(client, "planning-reports", "/reports/")

	report := &Report{RunID: "run-1", ItemID: 7, Sites: []SiteOutcome{{SiteID: 1, Created: true}}}
	client.On("PutObject", ctx, "planning-reports", "reports/7/run-1.json", mock.Anything, mock.AnythingOfType("int64"),
		mock.MatchedBy(func(o minio.PutObjectOptions) bool { return o.ContentType == "application/json" })).
		Return(minio.UploadInfo{}, nil)

	require.NoError(t, archiver.Save(ctx, report))
	client.AssertExpectations(t)
}

func TestReportArchiver_Load(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	archiver := NewReportArchiver(client, "planning-reports", "reports")

	data, err := json.Marshal(&Report{RunID: "run-1", ItemID: 7, PlanningCaseID: 3})
	require.NoError(t, err)
	client.On("GetObject", ctx, "planning-reports", "reports/7/run-1.json", minio.GetObjectOptions{}).
		Return(io.NopCloser(bytes.NewReader(data)), nil)

	report, err := archiver.Load(ctx, 7, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, report.PlanningCaseID)
}

func TestReportArchiver_List(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	archiver := NewReportArchiver(client, "planning-reports", "reports")

	ch := make(chan minio.ObjectInfo, 3)
	ch <- minio.ObjectInfo{Key: "reports/7/b.json"}
	ch <- minio.ObjectInfo{Key: "reports/7/a.json"}
	ch <- minio.ObjectInfo{Key: "reports/7/notes.txt"}
	close(ch)
	client.On("ListObjects", ctx, "planning-reports", minio.ListObjectsOptions{Prefix: "reports/7/", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(ch))

	runIDs, err := archiver.List(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, runIDs)
}
