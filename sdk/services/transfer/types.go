// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package transfer

import "github.com/docanon/docanon-cli-sdk/sdk/utils"

type DownloadRequest struct {
	// Locations as handed back by the service: absolute http(s) URLs, paths
	// relative to the service base URL, or s3:// URIs.
	Locations   []string
	Destination string
	Verbose     bool
}

// DownloadInfo reports one location. Error is set, and Path empty, when the
// location was skipped.
type DownloadInfo struct {
	Location string `json:"location"        yaml:"location"`
	Filename string `json:"filename"        yaml:"filename"`
	Size     int64  `json:"size"            yaml:"size"`
	Path     string `json:"path,omitempty"  yaml:"path,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// -------- Mirror --------

type MirrorRequest struct {
	Bucket  string // empty: s3_bucket from the configuration
	Prefix  string // empty: s3_prefix from the configuration
	BatchID string
	Files   []string // local files
	Verbose bool
}

type MirrorResult struct {
	Objects []utils.UploadedObject `json:"objects"           yaml:"objects"`
	Skipped []string               `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}
