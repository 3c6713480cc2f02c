// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/docanon/docanon-cli-sdk/sdk/config"
	"github.com/gabriel-vasile/mimetype"
)

// UploadedObject describes one file pushed to object storage.
type UploadedObject struct {
	Location     string `json:"location"      yaml:"location"`
	Name         string `json:"name"          yaml:"name"`
	ContentType  string `json:"content_type"  yaml:"content_type"`
	ETag         string `json:"etag,omitempty" yaml:"etag,omitempty"`
	Size         int64  `json:"size"          yaml:"size"`
	LastModified string `json:"last_modified" yaml:"last_modified"`
}

// UploadS3File uploads localPath to s3://bucket/key.
func UploadS3File(ctx context.Context, client *config.S3Client, bucket, key, localPath string, verbose bool) (*UploadedObject, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat error: %w", err)
	}

	header := make([]byte, 512)
	n, _ := file.Read(header)
	contentType := mimetype.Detect(header[:n]).String()
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek error: %w", err)
	}

	infof("Preparing upload %s → s3://%s/%s", displayPath(localPath), bucket, key)

	hook := lineHook("uploaded", info.Size())
	if verbose {
		hook = fileHook("uploading")
	}

	etag, err := client.UploadFileWithProgress(ctx, bucket, key, file, hook)
	if err != nil {
		return nil, fmt.Errorf("upload error: %w", err)
	}

	return &UploadedObject{
		Location:     fmt.Sprintf("s3://%s/%s", bucket, key),
		Name:         info.Name(),
		ContentType:  contentType,
		ETag:         etag,
		Size:         info.Size(),
		LastModified: info.ModTime().UTC().Format(http.TimeFormat),
	}, nil
}
