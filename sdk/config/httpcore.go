// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

type CoreHTTP interface {
	BuildURL(path string, params map[string]string) string
	DoMultipart(ctx context.Context, url string, parts []FilePart, hook *ProgressHook) ([]byte, int, error)
	Fetch(ctx context.Context, url string) (io.ReadCloser, int64, error)
}

// FilePart is one file field of a multipart/form-data request.
type FilePart struct {
	Field string
	Name  string
	// Key identifies the part in progress callbacks; Name when empty. Names
	// may repeat across concurrent uploads, keys should not.
	Key  string
	Body io.Reader
	Size int64 // <= 0 when unknown
}

func (p FilePart) progressKey() string {
	if p.Key != "" {
		return p.Key
	}
	return p.Name
}

// ServiceError is returned for any non-2xx response of the anonymizer service.
type ServiceError struct {
	StatusCode int
	Status     string
	Detail     string
}

func (e *ServiceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("service responded with: %s - %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("service responded with: %s", e.Status)
}

type httpCore struct {
	httpClient *http.Client
	coreConfig CoreConfig
}

func NewHTTPCore(httpClient *http.Client, coreConfig CoreConfig) CoreHTTP {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &httpCore{httpClient: httpClient, coreConfig: coreConfig.WithDefaults()}
}

// BuildURL joins path to the base URL. Absolute URLs are returned as they are,
// so result locations handed back by the service can be passed through.
func (httpCore *httpCore) BuildURL(path string, params map[string]string) string {
	base := path
	if u, err := url.Parse(path); err != nil || !u.IsAbs() {
		base = strings.TrimSuffix(httpCore.coreConfig.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}

	q := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		q.Set(k, v)
	}
	if len(q) == 0 {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}

// DoMultipart streams parts as multipart/form-data through a pipe, so files are
// never buffered whole in memory.
func (httpCore *httpCore) DoMultipart(ctx context.Context, url string, parts []FilePart, hook *ProgressHook) ([]byte, int, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		_ = pr.Close()
		return nil, 0, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	written := make(chan struct{})
	go func() {
		defer close(written)
		err := writeParts(mw, parts, hook)
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	resp, err := httpCore.httpClient.Do(req)
	// the writer is done or blocked on a body nobody reads anymore
	_ = pr.Close()
	<-written
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	b, rerr := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return b, resp.StatusCode, &ServiceError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Detail:     extractDetail(b),
		}
	}
	return b, resp.StatusCode, rerr
}

// Fetch performs a GET and hands back the body stream. The caller closes it.
func (httpCore *httpCore) Fetch(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := httpCore.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return nil, 0, &ServiceError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Detail:     extractDetail(b),
		}
	}
	return resp.Body, resp.ContentLength, nil
}

const maxRawDetail = 256

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeParts(mw *multipart.Writer, parts []FilePart, hook *ProgressHook) error {
	for _, p := range parts {
		if p.Body == nil {
			return fmt.Errorf("part %q has no body", p.Name)
		}

		// sniff the content type from the first bytes, then stitch them back
		head := make([]byte, 512)
		n, err := io.ReadFull(p.Body, head)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("read error (%s): %w", p.Name, err)
		}
		head = head[:n]
		contentType := mimetype.Detect(head).String()

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(p.Field), quoteEscaper.Replace(p.Name)))
		h.Set("Content-Type", contentType)
		w, err := mw.CreatePart(h)
		if err != nil {
			return err
		}

		if hook != nil && hook.OnStart != nil {
			hook.OnStart(p.progressKey(), p.Size)
		}
		pgw := &progressWriter{
			key:      p.progressKey(),
			total:    p.Size,
			interval: 250 * time.Millisecond,
		}
		if hook != nil {
			pgw.onProgress = hook.OnProgress
		}

		start := time.Now()
		src := io.TeeReader(io.MultiReader(bytes.NewReader(head), p.Body), pgw)
		if _, err := io.Copy(w, src); err != nil {
			return fmt.Errorf("write error (%s): %w", p.Name, err)
		}
		if hook != nil && hook.OnDone != nil {
			hook.OnDone(p.progressKey(), pgw.written, time.Since(start))
		}
	}
	return nil
}

// extractDetail pulls a human readable reason out of an error body:
// {"detail": "..."} first, then {"message": "..."}, then any JSON detail as-is.
func extractDetail(b []byte) string {
	var m map[string]any
	if json.Unmarshal(b, &m) != nil {
		raw := strings.TrimSpace(string(b))
		if len(raw) > maxRawDetail {
			raw = raw[:maxRawDetail] + "..."
		}
		return raw
	}
	if msg, ok := m["detail"].(string); ok && msg != "" {
		return msg
	}
	if msg, ok := m["message"].(string); ok && msg != "" {
		return msg
	}
	if d, ok := m["detail"]; ok && d != nil {
		if out, err := json.Marshal(d); err == nil {
			return string(out)
		}
	}
	return ""
}
