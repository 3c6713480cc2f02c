// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/docanon/docanon-cli-sdk/sdk/config"
)

// TransferService moves anonymized results out of the service: to the local
// disk, and optionally on to an S3-compatible bucket.
type TransferService struct {
	http   config.CoreHTTP
	s3conf config.S3Config

	mu sync.Mutex
	s3 *config.S3Client
}

func NewTransferService(ctx context.Context, conf config.Config) (*TransferService, error) {
	return NewTransferServiceWithClient(conf, nil), nil
}

// NewTransferServiceWithClient uses httpClient for result downloads; nil means
// http.DefaultClient.
func NewTransferServiceWithClient(conf config.Config, httpClient *http.Client) *TransferService {
	return &TransferService{
		http:   config.NewHTTPCore(httpClient, conf.Core),
		s3conf: conf.S3,
	}
}

// s3Client builds the S3 client on first use; plain HTTP downloads never need it.
func (s *TransferService) s3Client(ctx context.Context) (*config.S3Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.s3 != nil {
		return s.s3, nil
	}
	s3c, err := config.NewS3Client(ctx, s.s3conf)
	if err != nil {
		return nil, fmt.Errorf("S3 init failed: %w", err)
	}
	s.s3 = s3c
	return s3c, nil
}
