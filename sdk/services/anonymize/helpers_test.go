// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package anonymize_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docanon/docanon-cli-sdk/sdk/config"
	"github.com/docanon/docanon-cli-sdk/sdk/services/anonymize"
	"github.com/stretchr/testify/require"
)

func fileOf(name, content string) anonymize.File {
	return anonymize.File{
		Name: name,
		Size: int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func newService(t *testing.T, h http.HandlerFunc, upload config.UploadConfig) *anonymize.AnonymizeService {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	svc, err := anonymize.NewAnonymizeServiceWithClient(config.Config{
		Core:   config.CoreConfig{BaseURL: srv.URL},
		Upload: upload,
	}, srv.Client())
	require.NoError(t, err)
	return svc
}

// singleHandler mimics the single-file endpoint. Files named in fail get that
// status code and a FastAPI style detail body.
func singleHandler(fail map[string]int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != config.DefaultSinglePath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		f, fh, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"detail":"field required"}`)
			return
		}
		_ = f.Close()
		if code, ok := fail[fh.Filename]; ok {
			w.WriteHeader(code)
			fmt.Fprintf(w, `{"detail":"cannot anonymize %s"}`, fh.Filename)
			return
		}
		fmt.Fprintf(w, `{"originalName":%q,"downloadUrl":"/download/anon_%s"}`, fh.Filename, fh.Filename)
	}
}

func statuses(tasks []anonymize.Task) map[string]anonymize.Status {
	out := map[string]anonymize.Status{}
	for _, t := range tasks {
		out[t.Name] = t.Status
	}
	return out
}
