// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package anonymize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/docanon/docanon-cli-sdk/sdk/config"
)

// uploadOne drives one task: processing, then completed with the result
// location or error.
func (s *AnonymizeService) uploadOne(ctx context.Context, reg *Registry, id string) (string, error) {
	file, ok := reg.file(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	if _, err := reg.Transition(id, StatusProcessing, "", nil); err != nil {
		return "", err
	}

	loc, err := s.sendSingle(ctx, id, file)
	if err != nil {
		_, _ = reg.Transition(id, StatusError, "", err)
		return "", err
	}
	if _, err := reg.Transition(id, StatusCompleted, loc, nil); err != nil {
		return "", err
	}
	return loc, nil
}

func (s *AnonymizeService) sendSingle(ctx context.Context, id string, file File) (string, error) {
	if s.upload.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.upload.RequestTimeout)
		defer cancel()
	}

	rc, err := file.open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer rc.Close()

	url := s.http.BuildURL(s.core.SinglePath, nil)
	body, _, err := s.http.DoMultipart(ctx, url, []config.FilePart{{
		Field: "file",
		Name:  file.Name,
		Key:   id,
		Body:  rc,
		Size:  file.Size,
	}}, s.progressHook())
	if err != nil {
		return "", fmt.Errorf("upload of %s failed: %w", file.Name, err)
	}
	return parseSingleResponse(body)
}

func parseSingleResponse(body []byte) (string, error) {
	var resp singleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp.Detail != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceFailure, resp.Detail)
	}
	loc := strings.TrimSpace(resp.DownloadURL)
	if loc == "" {
		return "", fmt.Errorf("%w: missing downloadUrl", ErrMalformedResponse)
	}
	return loc, nil
}
