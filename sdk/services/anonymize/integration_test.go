// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package anonymize_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/docanon/docanon-cli-sdk/sdk/config"
	"github.com/docanon/docanon-cli-sdk/sdk/services/anonymize"
)

func TestSubmitAgainstService(t *testing.T) {
	endpoint := os.Getenv("ANONYMIZER_ENDPOINT")
	sample := os.Getenv("ANONYMIZER_SAMPLE_FILE")

	if endpoint == "" || sample == "" {
		t.Skip("Missing env vars (ANONYMIZER_ENDPOINT, ANONYMIZER_SAMPLE_FILE), skipping integration test.")
	}

	svc, err := anonymize.NewAnonymizeService(context.Background(), config.Config{
		Core:   config.CoreConfig{BaseURL: endpoint},
		Upload: config.UploadConfig{RequestTimeout: 2 * time.Minute},
	})
	if err != nil {
		t.Fatalf("failed to init sdk: %v", err)
	}
	if err := svc.SelectPaths(sample); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	res, err := svc.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	for _, task := range res.Tasks {
		t.Logf("task %s %s -> %s %s", task.ID, task.Name, task.Status, task.ResultLocation)
		if task.Status != anonymize.StatusCompleted {
			t.Fatalf("task %s ended in %s: %s", task.Name, task.Status, task.Error)
		}
	}
	if len(res.DownloadURLs) != 1 {
		t.Fatalf("expected one download url, got %v", res.DownloadURLs)
	}
}
