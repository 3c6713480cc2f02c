// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package anonymize

import "errors"

var (
	ErrNoFiles            = errors.New("no files selected")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrUnsupportedFile    = errors.New("file type not accepted")
	ErrInvalidTransition  = errors.New("invalid task transition")
	ErrUnknownTask        = errors.New("unknown task")
	ErrMalformedResponse  = errors.New("malformed service response")
	ErrServiceFailure     = errors.New("service reported failure")
	ErrMissingResult      = errors.New("no result returned for file")
)
