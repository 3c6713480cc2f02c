// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/docanon/docanon-cli-sdk/sdk/utils"
)

var ErrNoBucket = errors.New("no S3 bucket configured")

// Mirror uploads local result files to s3://<bucket>/<prefix>/<batchID>/<name>.
// Objects already present with the same size are skipped.
func (s *TransferService) Mirror(ctx context.Context, req MirrorRequest) (*MirrorResult, error) {
	if len(req.Files) == 0 {
		return nil, errors.New("no files to mirror")
	}
	bucket := req.Bucket
	if bucket == "" {
		bucket = s.s3conf.Bucket
	}
	if bucket == "" {
		return nil, ErrNoBucket
	}
	prefix := req.Prefix
	if prefix == "" {
		prefix = s.s3conf.Prefix
	}
	base := mirrorBase(prefix, req.BatchID)

	s3c, err := s.s3Client(ctx)
	if err != nil {
		return nil, err
	}

	existing := map[string]int64{}
	listed, err := s3c.ListObjects(ctx, bucket, base)
	if err != nil {
		return nil, fmt.Errorf("failed to list s3://%s/%s: %w", bucket, base, err)
	}
	for _, f := range listed {
		existing[f.Key] = f.Size
	}

	res := &MirrorResult{}
	for _, local := range req.Files {
		st, err := os.Stat(local)
		if err != nil {
			return res, fmt.Errorf("cannot access %s: %w", local, err)
		}
		if st.IsDir() {
			return res, fmt.Errorf("%s is a directory", local)
		}
		key := base + filepath.Base(local)
		if size, ok := existing[key]; ok && size == st.Size() {
			res.Skipped = append(res.Skipped, fmt.Sprintf("s3://%s/%s", bucket, key))
			continue
		}
		obj, err := utils.UploadS3File(ctx, s3c, bucket, key, local, req.Verbose)
		if err != nil {
			return res, err
		}
		res.Objects = append(res.Objects, *obj)
	}
	return res, nil
}

// mirrorBase is the key prefix for a batch, always ending with "/" unless empty.
func mirrorBase(prefix, batchID string) string {
	p := strings.Trim(path.Join(prefix, batchID), "/")
	if p == "" || p == "." {
		return ""
	}
	return p + "/"
}
