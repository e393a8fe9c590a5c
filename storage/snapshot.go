package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

const jsonContentType = "application/json"

// SnapshotKey is the object key of a finished tournament's bracket export.
func SnapshotKey(tournamentID string) string {
	return fmt.Sprintf("tournaments/%s/bracket.json", tournamentID)
}

// UploadJSON marshals v and stores it under key.
func UploadJSON(ctx context.Context, uploader FileUploader, key string, v interface{}) (*UploadResult, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return uploader.Upload(ctx, key, jsonContentType, bytes.NewReader(body))
}
