// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package config

import "time"

const (
	DefaultBaseURL    = "http://localhost:8000"
	DefaultSinglePath = "/anonymize-single"
	DefaultBatchPath  = "/anonymize"
)

// Config is the whole configuration handed to the SDK (no viper/INI here)
type Config struct {
	Core   CoreConfig
	Upload UploadConfig
	S3     S3Config
}

type CoreConfig struct {
	BaseURL    string
	SinglePath string
	BatchPath  string
}

// UploadConfig tunes the orchestrator. Zero values keep the plain behaviour:
// unbounded fan-out, no request timeout, any file extension.
type UploadConfig struct {
	MaxConcurrency   int
	RequestTimeout   time.Duration
	AcceptExtensions []string
}

type S3Config struct {
	AccessKey   string
	SecretKey   string
	AccessToken string
	Region      string
	EndpointURL string
	Bucket      string
	Prefix      string
}

// WithDefaults fills the empty core fields with the service defaults.
func (c CoreConfig) WithDefaults() CoreConfig {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.SinglePath == "" {
		c.SinglePath = DefaultSinglePath
	}
	if c.BatchPath == "" {
		c.BatchPath = DefaultBatchPath
	}
	return c
}
