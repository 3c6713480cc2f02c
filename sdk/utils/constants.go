// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

const (
	IniName            = ".docanon.ini"
	IniPathEnv         = "DOCANON_INI"
	IniSource          = "ini_source"
	CurrentEnvironment = "current_environment"
	UpdatedEnvKey      = "updated_environment"

	AnonymizerEndpoint   = "anonymizer_endpoint"
	AnonymizerSinglePath = "anonymizer_single_path"
	AnonymizerBatchPath  = "anonymizer_batch_path"
	MaxConcurrency       = "max_concurrency"
	RequestTimeout       = "request_timeout"
	AcceptExtensions     = "accept_extensions"

	AwsAccessKeyID     = "aws_access_key_id"
	AwsSecretAccessKey = "aws_secret_access_key"
	AwsSessionToken    = "aws_session_token"
	AwsRegion          = "aws_region"
	AwsEndpointURL     = "aws_endpoint_url"
	S3Bucket           = "s3_bucket"
	S3Prefix           = "s3_prefix"
)

// Output formats understood by FormatOutput.
const (
	FormatShort = "short"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)
