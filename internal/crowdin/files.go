package crowdin

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// FileUpload describes one source file sent by AddFile or UpdateFile. Path is
// relative to the branch (or the project root when no branch is given).
type FileUpload struct {
	Path    string
	Content []byte
	// Type is the file format identifier, e.g. "properties" or "nsh".
	// AddFile only.
	Type string
	// Title and ExportPattern are AddFile only.
	Title         string
	ExportPattern string
	// UpdateOption is UpdateFile only.
	UpdateOption            string
	EscapeQuotes            *int
	EscapeSpecialCharacters *int
}

// CreateDirectory creates a folder at dirPath, or a branch named dirPath when
// asBranch is set. Folder paths are relative to branch when it is non-empty.
func (c *HTTPClient) CreateDirectory(ctx context.Context, branch, dirPath string, asBranch bool) error {
	form := url.Values{}
	form.Set("name", strings.Trim(dirPath, "/"))
	if asBranch {
		form.Set("is_branch", "1")
	} else if branch != "" {
		form.Set("branch", branch)
	}
	op := fmt.Sprintf("create directory %q", dirPath)
	if asBranch {
		op = fmt.Sprintf("create branch %q", dirPath)
	}
	_, err := c.call(ctx, request{
		op:          op,
		method:      http.MethodPost,
		endpoint:    "add-directory",
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	})
	if err != nil {
		return err
	}
	c.logger.Sugar().Debugf("created %s", strings.TrimPrefix(op, "create "))
	return nil
}

// AddFile uploads a file that does not exist remotely yet.
func (c *HTTPClient) AddFile(ctx context.Context, branch string, f FileUpload) error {
	return c.upload(ctx, "add-file", fmt.Sprintf("add file %q", f.Path), branch, f, true)
}

// UpdateFile replaces the content of an existing remote file.
func (c *HTTPClient) UpdateFile(ctx context.Context, branch string, f FileUpload) error {
	return c.upload(ctx, "update-file", fmt.Sprintf("update file %q", f.Path), branch, f, false)
}

func (c *HTTPClient) upload(ctx context.Context, endpoint, op, branch string, f FileUpload, create bool) error {
	remotePath := strings.Trim(f.Path, "/")
	if remotePath == "" {
		return fmt.Errorf("%s: empty remote path", op)
	}
	body, contentType, err := encodeUpload(remotePath, branch, f, create)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	_, err = c.call(ctx, request{
		op:          op,
		method:      http.MethodPost,
		endpoint:    endpoint,
		body:        body,
		contentType: contentType,
	})
	return err
}

func encodeUpload(remotePath, branch string, f FileUpload, create bool) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{}
	if branch != "" {
		fields = append(fields, [2]string{"branch", branch})
	}
	if create {
		if f.Type != "" {
			fields = append(fields, [2]string{"type", f.Type})
		}
		if f.Title != "" {
			fields = append(fields, [2]string{"titles[" + remotePath + "]", f.Title})
		}
		if f.ExportPattern != "" {
			fields = append(fields, [2]string{"export_patterns[" + remotePath + "]", f.ExportPattern})
		}
	} else if f.UpdateOption != "" {
		fields = append(fields, [2]string{"update_option", f.UpdateOption})
	}
	if f.EscapeQuotes != nil {
		fields = append(fields, [2]string{"escape_quotes", strconv.Itoa(*f.EscapeQuotes)})
	}
	if f.EscapeSpecialCharacters != nil {
		fields = append(fields, [2]string{"escape_special_characters", strconv.Itoa(*f.EscapeSpecialCharacters)})
	}
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	part, err := w.CreateFormFile("files["+remotePath+"]", path.Base(remotePath))
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(f.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
