// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	cases := []struct {
		raw  string
		want ParsedPath
	}{
		{"s3://results/batch/a%20b.pdf", ParsedPath{Scheme: "s3", Host: "results", Path: "batch/a b.pdf", Filename: "a b.pdf"}},
		{"http://svc:8000/download/anon_a.pdf", ParsedPath{Scheme: "http", Host: "svc:8000", Path: "http://svc:8000/download/anon_a.pdf", Filename: "anon_a.pdf"}},
		{"HTTPS://svc/download/x.docx", ParsedPath{Scheme: "https", Host: "svc", Path: "HTTPS://svc/download/x.docx", Filename: "x.docx"}},
		{"/download/anon_b.pdf", ParsedPath{Path: "/download/anon_b.pdf", Filename: "anon_b.pdf"}},
		{"http://svc/", ParsedPath{Scheme: "http", Host: "svc", Path: "http://svc/"}},
	}
	for _, c := range cases {
		t.Run(c.raw, func(t *testing.T) {
			got, err := ParsePath(c.raw)
			require.NoError(t, err)
			assert.Equal(t, c.want, *got)
		})
	}

	for _, bad := range []string{"", "   ", "ftp://host/file", "%zz"} {
		_, err := ParsePath(bad)
		assert.Error(t, err, bad)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{".pdf", ".docx"}, SplitList(" .pdf, ,.docx ,"))
	assert.Nil(t, SplitList(""))
}

func TestTranslateFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, TranslateFormat("JSON"))
	assert.Equal(t, FormatYAML, TranslateFormat("yml"))
	assert.Equal(t, FormatShort, TranslateFormat(""))
	assert.Equal(t, FormatShort, TranslateFormat("table"))
}

func TestFormatOutput(t *testing.T) {
	v := struct {
		BatchID string   `json:"batchId"`
		URLs    []string `json:"downloadUrls"`
	}{"b1", []string{"/download/a.pdf"}}

	out, err := FormatOutput(v, "yaml")
	require.NoError(t, err)
	assert.Equal(t, "batchId: b1\ndownloadUrls:\n- /download/a.pdf\n", out)

	out, err = FormatOutput(v, "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"batchId":"b1","downloadUrls":["/download/a.pdf"]}`, out)
	assert.Contains(t, out, "\n  \"batchId\"")

	_, err = FormatOutput(make(chan int), "json")
	assert.Error(t, err)
}

func TestMergeMaps(t *testing.T) {
	base := map[string]interface{}{
		"a": "1",
		"n": map[string]interface{}{"x": 1, "y": 2},
	}
	over := map[string]interface{}{
		"b": "2",
		"n": map[string]interface{}{"y": 3},
	}

	got := MergeMaps(base, over)
	assert.Equal(t, map[string]interface{}{
		"a": "1",
		"b": "2",
		"n": map[string]interface{}{"x": 1, "y": 3},
	}, got)
	assert.Equal(t, 2, base["n"].(map[string]interface{})["y"])
	assert.NotContains(t, base, "b")
}

func TestUUIDv4NoDash(t *testing.T) {
	a, b := UUIDv4NoDash(), UUIDv4NoDash()
	assert.Len(t, a, 32)
	assert.NotContains(t, a, "-")
	assert.NotEqual(t, a, b)
}
