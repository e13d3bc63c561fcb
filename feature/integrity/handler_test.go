package integrity

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"items-planning/core/database"
	"items-planning/core/planning"
	"items-planning/core/storage"
	"items-planning/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func migratedDB(t *testing.T) *gorm.DB {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, planning.Models()...))
	return db
}

func emptyObjects() <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	close(ch)
	return ch
}

func presentObjects() <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Key: "reports/1/"}
	close(ch)
	return ch
}

var storageCfg = storage.Config{Bucket: "test-bucket", ReportPrefix: "reports"}

func setupTestApp(t *testing.T, remote error) (*fiber.App, *mocks.Client) {
	app := fiber.New()
	mockClient := new(mocks.Client)
	feature := NewFeature(mockClient, storageCfg, migratedDB(t), pinger{err: remote}, zap.NewNop())

	assert.Equal(t, "integrity", feature.Name())
	assert.True(t, feature.IsEnabled())
	require.NoError(t, feature.Load(app))
	return app, mockClient
}

func TestHandleStorageCheck(t *testing.T) {
	app, mockClient := setupTestApp(t, nil)

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(emptyObjects())

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/storage", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "checked", body["status"])
	assert.Equal(t, []any{"reports"}, body["missing"])
}

func TestHandleStorageCheck_FixMissingBucket(t *testing.T) {
	app, mockClient := setupTestApp(t, nil)

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, nil)
	mockClient.On("MakeBucket", mock.Anything, "test-bucket", mock.Anything).Return(nil)
	mockClient.On("PutObject", mock.Anything, "test-bucket", "reports/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/storage?fix=true", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "fixed", body["status"])
	mockClient.AssertCalled(t, "MakeBucket", mock.Anything, "test-bucket", mock.Anything)
}

func TestHandleStorageCheck_Error(t *testing.T) {
	app, mockClient := setupTestApp(t, nil)
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, assert.AnError)

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/storage", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestHandleSchemaCheck(t *testing.T) {
	app, _ := setupTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/schema", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["matched"])
}

func TestHandleRemoteCheck(t *testing.T) {
	app, _ := setupTestApp(t, nil)
	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/remote", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	app, _ = setupTestApp(t, assert.AnError)
	resp, err = app.Test(httptest.NewRequest("GET", "/integrity/remote", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)
}

func TestHandleIntegrityCheck(t *testing.T) {
	app, mockClient := setupTestApp(t, nil)

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(presentObjects())

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var report Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.True(t, report.Healthy)
	assert.Contains(t, report.Checks, "storage")
	assert.Contains(t, report.Checks, "schema")
	assert.Contains(t, report.Checks, "remote")
}

func TestHandleIntegrityCheck_Unhealthy(t *testing.T) {
	app, mockClient := setupTestApp(t, assert.AnError)
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, assert.AnError)

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)
}

func TestService_RunAllSkipsUnconfigured(t *testing.T) {
	svc := NewService(nil, storageCfg, migratedDB(t), nil, zap.NewNop())

	report := svc.RunAll(context.Background())
	assert.True(t, report.Healthy)
	assert.Equal(t, map[string]any{"status": "skipped"}, report.Checks["storage"])
	assert.Equal(t, map[string]any{"status": "skipped"}, report.Checks["remote"])
}
