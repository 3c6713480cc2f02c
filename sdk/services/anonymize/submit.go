// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package anonymize

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Submit uploads every selected file to the single-file endpoint, one request
// per file, and waits for all of them to settle. A failed file never cancels
// the others: its task ends in StatusError and contributes no download URL.
//
// The returned error is only ErrSubmissionInFlight or ErrNoFiles; per-file
// failures are reported through the tasks of the result.
func (s *AnonymizeService) Submit(ctx context.Context) (*BatchResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer s.inFlight.Store(false)

	files := s.Selection()
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	reg := s.begin(files)

	var (
		mu   sync.Mutex
		urls = make([]string, 0, len(files))
	)

	// every goroutine returns nil: the group is a join point, not fail-fast
	var g errgroup.Group
	if s.upload.MaxConcurrency > 0 {
		g.SetLimit(s.upload.MaxConcurrency)
	}
	for _, id := range reg.IDs() {
		id := id
		g.Go(func() error {
			loc, err := s.uploadOne(ctx, reg, id)
			if err != nil {
				return nil
			}
			mu.Lock()
			urls = append(urls, loc)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return &BatchResult{
		BatchID:      reg.BatchID(),
		Tasks:        reg.Snapshot(),
		DownloadURLs: urls,
	}, nil
}
