// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/docanon/docanon-cli-sdk/sdk/config"
)

/* ------------ HTTP ------------ */

// DownloadHTTPFile fetches url through the core client into destination,
// rendering a single progress line.
func DownloadHTTPFile(ctx context.Context, httpc config.CoreHTTP, url, destination string, verbose bool) error {
	body, size, err := httpc.Fetch(ctx, url)
	if err != nil {
		return err
	}
	defer func(Body io.ReadCloser) { _ = Body.Close() }(body)

	if verbose {
		infof("Preparing download %s → %s", url, destination)
	}

	out, err := os.Create(destination)
	if err != nil {
		return err
	}
	defer out.Close()

	gp := newGlobalProgress("downloaded", size)

	buf := make([]byte, 1024*128) // 128KB
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return werr
			}
			gp.add(int64(n))
			gp.render(false)
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return readErr
		}
	}
	gp.done()
	return nil
}

/* ------------ S3 ------------ */

func DownloadS3File(ctx context.Context, s3Client *config.S3Client, bucket, key, localPath string, verbose bool) error {
	infof("Preparing download s3://%s/%s → %s", bucket, key, displayPath(localPath))

	hook := lineHook("downloaded", 0)
	if verbose {
		hook = fileHook("downloading")
	}

	if err := s3Client.DownloadFileWithProgress(ctx, bucket, key, localPath, hook); err != nil {
		return fmt.Errorf("S3 download failed: %w", err)
	}
	return nil
}

// displayPath prints an empty local path as "."
func displayPath(p string) string {
	if p == "" {
		return "."
	}
	return p
}
