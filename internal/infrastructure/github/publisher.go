package github

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"BacklogStatus/internal/domain"
	"BacklogStatus/internal/ports"
)

// StatusPublisher submits the profile status form.
type StatusPublisher struct {
	client *Client
}

var _ ports.StatusPublisher = (*StatusPublisher)(nil)

// NewStatusPublisher wires the shared client; it must carry the same session
// that produced the authenticity token.
func NewStatusPublisher(client *Client) *StatusPublisher {
	return &StatusPublisher{client: client}
}

// Publish posts the status. Any non-2xx response is a PublishError.
func (p *StatusPublisher) Publish(ctx context.Context, token string, status domain.StatusDescriptor) error {
	body, contentType, err := statusForm(token, status)
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Content-Type", contentType)
	header.Set("Origin", p.client.webBase)

	resp, err := p.client.do(ctx, http.MethodPost, p.client.webBase+"/users/status", body, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if !ok(resp) {
		return &domain.PublishError{Status: resp.StatusCode, StatusText: statusText(resp)}
	}
	return nil
}

func statusForm(token string, status domain.StatusDescriptor) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	availability := "0"
	if status.Busy {
		availability = "1"
	}
	fields := [][2]string{
		{"_method", "put"},
		{"authenticity_token", token},
		{"emoji", ":" + strings.Trim(string(status.Icon), ":") + ":"},
		{"message", status.Message},
		{"limited_availability", availability},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
