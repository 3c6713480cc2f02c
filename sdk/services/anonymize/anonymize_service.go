// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package anonymize

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/docanon/docanon-cli-sdk/sdk/config"
)

// AnonymizeService is the upload orchestrator: it owns the selected files, fans
// out one upload per file and tracks every task of the latest submission.
type AnonymizeService struct {
	http   config.CoreHTTP
	core   config.CoreConfig
	upload config.UploadConfig
	hook   *config.ProgressHook

	mu        sync.Mutex
	selection []File
	registry  *Registry

	inFlight atomic.Bool
	events   *broker
}

func NewAnonymizeService(_ context.Context, conf config.Config) (*AnonymizeService, error) {
	return NewAnonymizeServiceWithClient(conf, nil)
}

// NewAnonymizeServiceWithClient is NewAnonymizeService with a caller supplied
// http.Client (nil means http.DefaultClient).
func NewAnonymizeServiceWithClient(conf config.Config, httpClient *http.Client) (*AnonymizeService, error) {
	core := conf.Core.WithDefaults()
	u, err := url.Parse(core.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New("invalid core config: base url must be http(s)")
	}
	if conf.Upload.MaxConcurrency < 0 {
		return nil, errors.New("invalid upload config: max concurrency must be >= 0")
	}
	if conf.Upload.RequestTimeout < 0 {
		return nil, errors.New("invalid upload config: request timeout must be >= 0")
	}
	return &AnonymizeService{
		http:   config.NewHTTPCore(httpClient, core),
		core:   core,
		upload: conf.Upload,
		events: newBroker(),
	}, nil
}

// SetProgressHook installs a byte level progress hook for file uploads. The
// hook is called from several goroutines at once, keyed by task ID.
func (s *AnonymizeService) SetProgressHook(hook *config.ProgressHook) {
	s.mu.Lock()
	s.hook = hook
	s.mu.Unlock()
}

// Subscribe returns a one-way feed of task transitions for every submission.
func (s *AnonymizeService) Subscribe(buffer int) *Subscription {
	return s.events.subscribe(buffer)
}

// Uploading reports whether a submission is in flight.
func (s *AnonymizeService) Uploading() bool {
	return s.inFlight.Load()
}

// Tasks returns the tasks of the latest submission, nil before the first one.
func (s *AnonymizeService) Tasks() []Task {
	s.mu.Lock()
	reg := s.registry
	s.mu.Unlock()
	if reg == nil {
		return nil
	}
	return reg.Snapshot()
}

// Registry returns the registry of the latest submission.
func (s *AnonymizeService) Registry() *Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry
}

// begin supersedes the current registry with a fresh one for files.
func (s *AnonymizeService) begin(files []File) *Registry {
	reg := newRegistry(files, s.events.publish)
	s.mu.Lock()
	s.registry = reg
	s.mu.Unlock()
	return reg
}

func (s *AnonymizeService) progressHook() *config.ProgressHook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hook
}
