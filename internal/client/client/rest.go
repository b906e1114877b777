package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/taxvault/internal/blobstore"
	"github.com/dmitrijs2005/taxvault/internal/common"
	"github.com/dmitrijs2005/taxvault/internal/netx"
)

type RESTClient struct {
	baseURL     string
	accessToken string
	http        *http.Client
}

func NewRESTClient(baseURL, accessToken string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		http:        &http.Client{Timeout: timeout},
	}
}

// SetAccessToken replaces the bearer token used for subsequent requests.
func (c *RESTClient) SetAccessToken(token string) {
	c.accessToken = token
}

func (c *RESTClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.accessToken)
	}
	return req, nil
}

// do sends req and returns the response after status checking. The caller
// closes the body.
func (c *RESTClient) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err := netx.CheckStatus(resp); err != nil {
		resp.Body.Close()
		return nil, mapError(err)
	}
	return resp, nil
}

func (c *RESTClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *RESTClient) getBinary(ctx context.Context, path string) (*Download, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Download{
		Name:        netx.FileNameFromDisposition(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (c *RESTClient) Upload(ctx context.Context, fileName, mimeType string, data []byte) (*UploadResult, error) {
	body, contentType, err := netx.MultipartFile("file", fileName, mimeType, data)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var res UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &res, nil
}

func (c *RESTClient) ListFiles(ctx context.Context) ([]FileInfo, error) {
	var out struct {
		Files []FileInfo `json:"files"`
	}
	if err := c.getJSON(ctx, "/api/files", &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// Download fetches a stored file as an attachment. ref is a logical URL
// ("/files/{owner}/{name}") as returned by Upload.
func (c *RESTClient) Download(ctx context.Context, ref string) (*Download, error) {
	owner, name := blobstore.ParseReference(ref)
	if owner == "" || name == "" {
		return nil, fmt.Errorf("%w: reference %q", common.ErrBadRequest, ref)
	}
	return c.getBinary(ctx, "/api/files/"+url.PathEscape(owner)+"/"+url.PathEscape(name)+"/download")
}

func (c *RESTClient) ExportTaxYear(ctx context.Context, year int) (*Download, error) {
	return c.getBinary(ctx, "/api/export/tax-report/"+strconv.Itoa(year))
}

func (c *RESTClient) Summary(ctx context.Context, year int) (*Summary, error) {
	var s Summary
	if err := c.getJSON(ctx, "/api/dashboard/summary/"+strconv.Itoa(year), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *RESTClient) Monthly(ctx context.Context, year int) ([]MonthTotals, error) {
	var out struct {
		MonthlyBreakdown []MonthTotals `json:"monthlyBreakdown"`
	}
	if err := c.getJSON(ctx, "/api/dashboard/monthly/"+strconv.Itoa(year), &out); err != nil {
		return nil, err
	}
	return out.MonthlyBreakdown, nil
}

func (c *RESTClient) Recent(ctx context.Context, limit int) ([]Entry, error) {
	path := "/api/dashboard/recent"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Entries []Entry `json:"entries"`
	}
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

func (c *RESTClient) Attach(ctx context.Context, kind, id string, att Attachment) error {
	b, err := json.Marshal(att)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPut, "/api/"+url.PathEscape(kind)+"/"+url.PathEscape(id)+"/attachment", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
