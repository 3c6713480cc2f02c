// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docanon/docanon-cli-sdk/sdk/utils"
)

// Download fetches every location into req.Destination. A failing location
// does not stop the others: it is reported with its error and skipped.
func (s *TransferService) Download(ctx context.Context, req DownloadRequest) ([]DownloadInfo, error) {
	if len(req.Locations) == 0 {
		return nil, errors.New("no locations to download")
	}

	out := make([]DownloadInfo, 0, len(req.Locations))
	for _, loc := range req.Locations {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		info := DownloadInfo{Location: loc}
		if err := s.downloadOne(ctx, loc, req, &info); err != nil {
			info.Path = ""
			info.Error = err.Error()
		}
		out = append(out, info)
	}
	return out, nil
}

func (s *TransferService) downloadOne(ctx context.Context, loc string, req DownloadRequest, info *DownloadInfo) error {
	pp, err := utils.ParsePath(loc)
	if err != nil {
		return err
	}
	if pp.Filename == "" {
		return fmt.Errorf("no file name in %q", loc)
	}
	info.Filename = pp.Filename

	target, _, err := chooseLocalTarget(req.Destination, pp.Filename)
	if err != nil {
		return err
	}

	// only clean up after a failure when the file is ours
	_, statErr := os.Stat(target)
	cleanup := func() {
		if os.IsNotExist(statErr) {
			_ = os.Remove(target)
		}
	}

	switch pp.Scheme {
	case "s3":
		if strings.HasSuffix(pp.Path, "/") {
			return fmt.Errorf("%q is a prefix, not an object", loc)
		}
		s3c, err := s.s3Client(ctx)
		if err != nil {
			return err
		}
		if err := utils.DownloadS3File(ctx, s3c, pp.Host, pp.Path, target, req.Verbose); err != nil {
			cleanup()
			return err
		}
	case "http", "https", "":
		// relative locations are resolved against the service base URL
		if err := utils.DownloadHTTPFile(ctx, s.http, s.http.BuildURL(pp.Path, nil), target, req.Verbose); err != nil {
			cleanup()
			return err
		}
	default:
		return fmt.Errorf("unsupported scheme %q", pp.Scheme)
	}

	st, err := os.Stat(target)
	if err != nil {
		return err
	}
	info.Path = target
	info.Size = st.Size()
	return nil
}

// --- helpers ---

// chooseLocalTarget:
// - empty dst: filename in the cwd
// - dst is an existing directory: dst/filename
// - dst is an existing file: dst
// - dst does not exist: dst is created as a directory, dst/filename
func chooseLocalTarget(dst, filename string) (target string, createdDir bool, err error) {
	if dst == "" {
		return filename, false, nil
	}
	info, statErr := os.Stat(dst)
	if statErr == nil {
		if info.IsDir() {
			return filepath.Join(dst, filename), false, nil
		}
		return dst, false, nil
	}
	if os.IsNotExist(statErr) {
		if mkErr := os.MkdirAll(dst, 0o755); mkErr != nil {
			return "", false, mkErr
		}
		return filepath.Join(dst, filename), true, nil
	}
	return "", false, statErr
}
