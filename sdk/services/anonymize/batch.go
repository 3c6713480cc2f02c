// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package anonymize

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/docanon/docanon-cli-sdk/sdk/config"
)

// SubmitBatch sends the whole selection in one request to the batch endpoint.
// It is all-or-nothing: any transport, status or decoding failure marks every
// task as error and is returned. On success the returned locations are paired
// with the files by position; files left without a location end in error.
func (s *AnonymizeService) SubmitBatch(ctx context.Context) (*BatchResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer s.inFlight.Store(false)

	files := s.Selection()
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	reg := s.begin(files)
	ids := reg.IDs()
	for _, id := range ids {
		_, _ = reg.Transition(id, StatusProcessing, "", nil)
	}

	fail := func(err error) (*BatchResult, error) {
		for _, id := range ids {
			_, _ = reg.Transition(id, StatusError, "", err)
		}
		return &BatchResult{BatchID: reg.BatchID(), Tasks: reg.Snapshot(), DownloadURLs: []string{}}, err
	}

	urls, err := s.sendBatch(ctx, ids, files)
	if err != nil {
		return fail(err)
	}

	out := make([]string, 0, len(urls))
	for i, id := range ids {
		if i >= len(urls) || strings.TrimSpace(urls[i]) == "" {
			_, _ = reg.Transition(id, StatusError, "", ErrMissingResult)
			continue
		}
		loc := strings.TrimSpace(urls[i])
		if _, err := reg.Transition(id, StatusCompleted, loc, nil); err == nil {
			out = append(out, loc)
		}
	}

	return &BatchResult{BatchID: reg.BatchID(), Tasks: reg.Snapshot(), DownloadURLs: out}, nil
}

func (s *AnonymizeService) sendBatch(ctx context.Context, ids []string, files []File) ([]string, error) {
	if s.upload.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.upload.RequestTimeout)
		defer cancel()
	}

	parts := make([]config.FilePart, 0, len(files))
	closers := make([]io.Closer, 0, len(files))
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	for i, f := range files {
		rc, err := f.open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		closers = append(closers, rc)
		parts = append(parts, config.FilePart{Field: "files", Name: f.Name, Key: ids[i], Body: rc, Size: f.Size})
	}

	url := s.http.BuildURL(s.core.BatchPath, nil)
	body, _, err := s.http.DoMultipart(ctx, url, parts, s.progressHook())
	if err != nil {
		return nil, fmt.Errorf("failed to anonymize batch: %w", err)
	}

	var resp batchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp.Detail != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceFailure, resp.Detail)
	}
	if resp.DownloadURLs == nil {
		return nil, fmt.Errorf("%w: missing downloadUrls", ErrMalformedResponse)
	}
	return resp.DownloadURLs, nil
}
