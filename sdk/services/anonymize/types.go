// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package anonymize

import (
	"errors"
	"io"
	"os"
	"time"
)

// Status is the lifecycle state of one upload task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// File is a document handle chosen for upload. Open takes precedence over Path.
type File struct {
	Name string
	Path string
	Size int64
	Open func() (io.ReadCloser, error)
}

func (f File) open() (io.ReadCloser, error) {
	if f.Open != nil {
		return f.Open()
	}
	if f.Path == "" {
		return nil, errors.New("file has neither path nor opener")
	}
	return os.Open(f.Path)
}

// Task is the tracked state of one file of a batch.
type Task struct {
	ID             string    `json:"id"             yaml:"id"`
	Name           string    `json:"name"           yaml:"name"`
	Status         Status    `json:"status"         yaml:"status"`
	ResultLocation string    `json:"resultLocation,omitempty" yaml:"resultLocation,omitempty"`
	Error          string    `json:"error,omitempty"          yaml:"error,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"      yaml:"updatedAt"`
}

// TaskEvent is published for every status transition.
type TaskEvent struct {
	BatchID  string
	Previous Status
	Task     Task
}

type BatchResult struct {
	BatchID string `json:"batchId" yaml:"batchId"`
	// Tasks are in selection order.
	Tasks []Task `json:"tasks" yaml:"tasks"`
	// DownloadURLs are in the order the uploads resolved.
	DownloadURLs []string `json:"downloadUrls" yaml:"downloadUrls"`
}

func (r *BatchResult) Failed() int {
	n := 0
	for _, t := range r.Tasks {
		if t.Status == StatusError {
			n++
		}
	}
	return n
}

// -------- wire --------

type singleResponse struct {
	OriginalName string `json:"originalName"`
	DownloadURL  string `json:"downloadUrl"`
	Detail       any    `json:"detail"`
}

type batchResponse struct {
	DownloadURLs []string `json:"downloadUrls"`
	Detail       any      `json:"detail"`
}
