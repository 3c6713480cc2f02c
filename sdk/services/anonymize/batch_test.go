// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package anonymize_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/docanon/docanon-cli-sdk/sdk/config"
	"github.com/docanon/docanon-cli-sdk/sdk/services/anonymize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// batchHandler answers with one location per received file, dropping the last
// `missing` of them.
func batchHandler(t *testing.T, missing int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !assert.Equal(t, config.DefaultBatchPath, r.URL.Path) {
			http.NotFound(w, r)
			return
		}
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		urls := []string{}
		for _, fh := range r.MultipartForm.File["files"] {
			urls = append(urls, "/download/anon_"+fh.Filename)
		}
		urls = urls[:len(urls)-missing]
		_ = json.NewEncoder(w).Encode(map[string]any{"downloadUrls": urls})
	}
}

func TestSubmitBatchPairsByPosition(t *testing.T) {
	svc := newService(t, batchHandler(t, 0), config.UploadConfig{})
	require.NoError(t, svc.Select(fileOf("a.pdf", "a"), fileOf("b.pdf", "b")))

	res, err := svc.SubmitBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Tasks, 2)
	assert.Equal(t, "/download/anon_a.pdf", res.Tasks[0].ResultLocation)
	assert.Equal(t, "/download/anon_b.pdf", res.Tasks[1].ResultLocation)
	assert.Equal(t, []string{"/download/anon_a.pdf", "/download/anon_b.pdf"}, res.DownloadURLs)
	assert.Zero(t, res.Failed())
}

func TestSubmitBatchMissingLocation(t *testing.T) {
	svc := newService(t, batchHandler(t, 1), config.UploadConfig{})
	require.NoError(t, svc.Select(fileOf("a.pdf", "a"), fileOf("b.pdf", "b")))

	res, err := svc.SubmitBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, anonymize.StatusCompleted, res.Tasks[0].Status)
	assert.Equal(t, anonymize.StatusError, res.Tasks[1].Status)
	assert.Equal(t, anonymize.ErrMissingResult.Error(), res.Tasks[1].Error)
	assert.Equal(t, []string{"/download/anon_a.pdf"}, res.DownloadURLs)
}

func TestSubmitBatchAllOrNothing(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"detail":"batch too large"}`)
	}, config.UploadConfig{})
	require.NoError(t, svc.Select(fileOf("a.pdf", "a"), fileOf("b.pdf", "b")))

	res, err := svc.SubmitBatch(context.Background())
	require.Error(t, err)

	var se *config.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "batch too large", se.Detail)

	require.NotNil(t, res)
	assert.Equal(t, 2, res.Failed())
	assert.Empty(t, res.DownloadURLs)
	assert.False(t, svc.Uploading())
}

func TestSubmitBatchMalformed(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"something":"else"}`))
	}, config.UploadConfig{})
	require.NoError(t, svc.Select(fileOf("a.pdf", "a")))

	res, err := svc.SubmitBatch(context.Background())
	assert.ErrorIs(t, err, anonymize.ErrMalformedResponse)
	assert.Equal(t, 1, res.Failed())
}

func TestSubmitBatchNoFiles(t *testing.T) {
	svc := newService(t, batchHandler(t, 0), config.UploadConfig{})
	_, err := svc.SubmitBatch(context.Background())
	assert.ErrorIs(t, err, anonymize.ErrNoFiles)
}
