package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"items-planning/core/apperr"
	"items-planning/core/storage"

	"github.com/minio/minio-go/v7"
)

// ReportArchiver stores run reports as JSON objects at <prefix>/<item_id>/<run_id>.json.
type ReportArchiver struct {
	client storage.Client
	bucket string
	prefix string
}

// NewReportArchiver creates an archiver writing to bucket under prefix.
func NewReportArchiver(client storage.Client, bucket, prefix string) *ReportArchiver {
	return &ReportArchiver{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// ObjectName returns the key a report is stored under.
func (a *ReportArchiver) ObjectName(itemID int, runID string) string {
	return path.Join(a.itemPrefix(itemID), runID+".json")
}

func (a *ReportArchiver) itemPrefix(itemID int) string {
	return path.Join(a.prefix, fmt.Sprint(itemID))
}

// Save implements ReportSink.
func (a *ReportArchiver) Save(ctx context.Context, report *Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	name := a.ObjectName(report.ItemID, report.RunID)
	_, err = a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload report %s: %w", name, err)
	}
	return nil
}

// Load reads one archived report.
func (a *ReportArchiver) Load(ctx context.Context, itemID int, runID string) (*Report, error) {
	name := a.ObjectName(itemID, runID)
	obj, err := a.client.GetObject(ctx, a.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", name, err)
	}
	defer obj.Close()

	var report Report
	if err := json.NewDecoder(obj).Decode(&report); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, apperr.NotFound(fmt.Sprintf("report %s not found", runID)).WithOp("reconcile.load_report")
		}
		return nil, fmt.Errorf("failed to decode report %s: %w", name, err)
	}
	return &report, nil
}

// List returns the run ids archived for an item, sorted.
func (a *ReportArchiver) List(ctx context.Context, itemID int) ([]string, error) {
	prefix := a.itemPrefix(itemID) + "/"
	var runIDs []string
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports for item %d: %w", itemID, obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		if !strings.HasSuffix(name, ".json") || strings.Contains(name, "/") {
			continue
		}
		runIDs = append(runIDs, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(runIDs)
	return runIDs, nil
}
