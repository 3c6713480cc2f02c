// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package transfer_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/docanon/docanon-cli-sdk/sdk/config"
	"github.com/docanon/docanon-cli-sdk/sdk/services/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransfer(t *testing.T) (*transfer.TransferService, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/download/anon_a.pdf":
			fmt.Fprint(w, "anonymized a")
		case "/download/anon_b.pdf":
			fmt.Fprint(w, "anonymized b!")
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"detail":"File not found"}`)
		}
	}))
	t.Cleanup(srv.Close)
	ts := transfer.NewTransferServiceWithClient(config.Config{
		Core: config.CoreConfig{BaseURL: srv.URL},
	}, srv.Client())
	return ts, srv
}

func TestDownload(t *testing.T) {
	ts, srv := newTransfer(t)
	dest := filepath.Join(t.TempDir(), "out")

	infos, err := ts.Download(context.Background(), transfer.DownloadRequest{
		Locations: []string{
			"/download/anon_a.pdf",
			srv.URL + "/download/anon_b.pdf",
			"/download/missing.pdf",
			"ftp://elsewhere/file.pdf",
		},
		Destination: dest,
	})
	require.NoError(t, err)
	require.Len(t, infos, 4)

	assert.Equal(t, transfer.DownloadInfo{
		Location: "/download/anon_a.pdf",
		Filename: "anon_a.pdf",
		Size:     12,
		Path:     filepath.Join(dest, "anon_a.pdf"),
	}, infos[0])
	b, err := os.ReadFile(infos[1].Path)
	require.NoError(t, err)
	assert.Equal(t, "anonymized b!", string(b))

	assert.Empty(t, infos[2].Path)
	assert.Contains(t, infos[2].Error, "File not found")
	_, err = os.Stat(filepath.Join(dest, "missing.pdf"))
	assert.True(t, os.IsNotExist(err))

	assert.Contains(t, infos[3].Error, "unsupported scheme")
}

func TestDownloadIntoExistingFile(t *testing.T) {
	ts, _ := newTransfer(t)
	target := filepath.Join(t.TempDir(), "result.pdf")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))

	infos, err := ts.Download(context.Background(), transfer.DownloadRequest{
		Locations:   []string{"/download/anon_a.pdf"},
		Destination: target,
	})
	require.NoError(t, err)
	assert.Equal(t, target, infos[0].Path)
	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "anonymized a", string(b))
}

func TestDownloadNoLocations(t *testing.T) {
	ts, _ := newTransfer(t)
	_, err := ts.Download(context.Background(), transfer.DownloadRequest{})
	assert.Error(t, err)
}

func TestMirrorValidation(t *testing.T) {
	ts, _ := newTransfer(t)

	_, err := ts.Mirror(context.Background(), transfer.MirrorRequest{})
	assert.Error(t, err)

	_, err = ts.Mirror(context.Background(), transfer.MirrorRequest{Files: []string{"a.pdf"}})
	assert.ErrorIs(t, err, transfer.ErrNoBucket)
}

func TestDownloadFailureKeepsExistingFile(t *testing.T) {
	ts, _ := newTransfer(t)
	target := filepath.Join(t.TempDir(), "result.pdf")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))

	infos, err := ts.Download(context.Background(), transfer.DownloadRequest{
		Locations:   []string{"/download/missing.pdf"},
		Destination: target,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, infos[0].Error)
	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old", string(b))
}
