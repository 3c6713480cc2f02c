// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"sigs.k8s.io/yaml"
)

/* ------------ logging helpers (stderr) ------------ */

func infof(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "[INFO] "+format+"\n", a...)
}

func warnf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "[WARN] "+format+"\n", a...)
}

func getIniPath() string {
	if p := os.Getenv(IniPathEnv); p != "" {
		return p
	}
	iniPath, err := os.UserHomeDir()
	if err != nil {
		iniPath = "."
	}
	return iniPath + string(os.PathSeparator) + IniName
}

// ParsedPath is a result location split into scheme, host and path.
// For s3://bucket/key, Host is the bucket and Path the key.
type ParsedPath struct {
	Scheme   string
	Host     string
	Path     string
	Filename string
}

func ParsePath(raw string) (*ParsedPath, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("empty path")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", raw, err)
	}
	pp := &ParsedPath{Scheme: strings.ToLower(u.Scheme), Host: u.Host}
	switch pp.Scheme {
	case "s3":
		pp.Path = strings.TrimPrefix(u.Path, "/")
	case "http", "https", "":
		// keep the full URL, it is what gets fetched
		pp.Path = raw
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if seg := u.Path[strings.LastIndex(u.Path, "/")+1:]; seg != "" {
		if unescaped, err := url.PathUnescape(seg); err == nil {
			seg = unescaped
		}
		pp.Filename = seg
	}
	return pp, nil
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func TranslateFormat(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatShort
	}
}

// FormatOutput renders v as indented JSON or YAML. The short format is up to
// the caller, so it falls back to JSON here.
func FormatOutput(v any, format string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal: %w", err)
	}
	if TranslateFormat(format) == FormatYAML {
		y, err := yaml.JSONToYAML(b)
		if err != nil {
			return "", fmt.Errorf("json to yaml failed: %w", err)
		}
		return string(y), nil
	}
	return PrettyJSON(b), nil
}

func PrettyJSON(b []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return string(b) // unindented fallback
	}
	return out.String()
}
