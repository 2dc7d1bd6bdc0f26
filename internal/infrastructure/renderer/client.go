package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"estimate-tracker/internal/application"
	"estimate-tracker/internal/domain"
)

// siteMarker is an attribute prefix present on the target site's rendered
// pages; the multipart part carrying it is the page body.
const siteMarker = "data-rf-test-id"

// Client fetches fully rendered page HTML from an external rendering
// service. The service accepts POST {"url": ..., "wait": ...} and answers
// either a plain HTML body or multipart/mixed with the page in one part.
// One outbound request per Render call; no retries, no state between calls.
type Client struct {
	Endpoint string
	WaitMS   int
	HTTP     *http.Client
}

var _ application.PageRenderer = (*Client)(nil)

type renderRequest struct {
	URL  string `json:"url"`
	Wait int    `json:"wait"`
}

func (c *Client) Render(ctx context.Context, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: target url %q", domain.ErrInvalidInput, pageURL)
	}
	if c.Endpoint == "" {
		return "", fmt.Errorf("%w: renderer endpoint not configured", domain.ErrInvalidInput)
	}

	body, err := json.Marshal(renderRequest{URL: pageURL, Wait: c.WaitMS})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", domain.ErrInvalidInput, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: renderer endpoint %q", domain.ErrInvalidInput, c.Endpoint)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrServiceUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGatewayTimeout:
		return "", fmt.Errorf("%w: renderer returned 504", domain.ErrRenderTimeout)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", fmt.Errorf("%w: status %d", domain.ErrUpstreamError, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", domain.ErrServiceUnreachable, err)
	}

	htmlText := pickHTML(resp.Header.Get("Content-Type"), raw)
	if strings.TrimSpace(htmlText) == "" {
		return "", fmt.Errorf("%w: no usable html in renderer response", domain.ErrEmptyResponse)
	}
	return htmlText, nil
}

// pickHTML extracts the page HTML from a renderer response body. Multipart
// responses are split and the part carrying the site marker wins; otherwise
// the largest HTML-looking part. Anything non-multipart is used as-is.
func pickHTML(contentType string, raw []byte) string {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return string(raw)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return ""
	}

	var marked, largest string
	mr := multipart.NewReader(bytes.NewReader(raw), boundary)
	for {
		p, err := mr.NextPart()
		if err != nil {
			// EOF or a malformed tail; keep whatever was already read.
			break
		}
		b, err := io.ReadAll(p)
		if err != nil {
			continue
		}
		part := string(b)
		if strings.Contains(part, siteMarker) && len(part) > len(marked) {
			marked = part
		}
		if looksLikeHTML(part) && len(part) > len(largest) {
			largest = part
		}
	}
	if marked != "" {
		return marked
	}
	return largest
}

func looksLikeHTML(s string) bool {
	t := strings.TrimSpace(s)
	return strings.HasPrefix(t, "<")
}
