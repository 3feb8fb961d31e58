package crowdin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ExportStatus is the outcome of an export request.
type ExportStatus string

const (
	ExportBuilt   ExportStatus = "built"
	ExportSkipped ExportStatus = "skipped"
)

type exportResponse struct {
	Success struct {
		Status string `json:"status"`
	} `json:"success"`
}

// RequestExport asks the service to build the translation archive for
// branch, or for the project root when branch is empty. A skipped export
// means the last build is still current.
func (c *HTTPClient) RequestExport(ctx context.Context, branch string) (ExportStatus, error) {
	q := url.Values{}
	if branch != "" {
		q.Set("branch", branch)
	}
	var out exportResponse
	err := c.callJSON(ctx, request{op: "request export", method: http.MethodGet, endpoint: "export", query: q}, &out)
	if err != nil {
		return "", err
	}
	switch status := ExportStatus(strings.ToLower(strings.TrimSpace(out.Success.Status))); status {
	case ExportBuilt, ExportSkipped:
		return status, nil
	default:
		return "", &RemoteProtocolError{Op: "request export", StatusCode: http.StatusOK, Message: fmt.Sprintf("unexpected export status %q", out.Success.Status)}
	}
}

// DownloadArchive opens the zip archive of all translations for branch. The
// caller must close the returned reader.
func (c *HTTPClient) DownloadArchive(ctx context.Context, branch string) (io.ReadCloser, error) {
	q := url.Values{}
	if branch != "" {
		q.Set("branch", branch)
	}
	resp, err := c.send(ctx, request{op: "download archive", method: http.MethodGet, endpoint: "download/all.zip", query: q})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// GetStatus returns the raw project status document, or the status of one
// language when language is non-empty.
func (c *HTTPClient) GetStatus(ctx context.Context, language string) ([]byte, error) {
	r := request{op: "get status", method: http.MethodPost, endpoint: "status"}
	if language = strings.TrimSpace(language); language != "" {
		form := url.Values{}
		form.Set("language", language)
		r = request{
			op:          fmt.Sprintf("get %s status", language),
			method:      http.MethodPost,
			endpoint:    "language-status",
			body:        []byte(form.Encode()),
			contentType: "application/x-www-form-urlencoded",
		}
	}
	return c.call(ctx, r)
}
