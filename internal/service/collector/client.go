// Package collector 把线索推送到外部线索表格。
package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/myabroadportal/portal/backend/internal/model/lead"
)

// Collector 把线索投递到外部系统。
type Collector interface {
	Collect(ctx context.Context, rec lead.Record) error
}

// Noop 接受所有线索但不发送。
type Noop struct{}

// Collect 实现 Collector
func (Noop) Collect(context.Context, lead.Record) error { return nil }

// Client 以 JSON 形式把线索 POST 到固定地址。
type Client struct {
	URL        string
	HTTPClient *http.Client
}

// NewClient 创建指向 url 的 Client。
func NewClient(url string, opts ...func(*Client)) *Client {
	c := &Client{
		URL:        url,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTimeout 覆盖 HTTP 客户端超时。
func WithTimeout(d time.Duration) func(*Client) {
	return func(c *Client) {
		if d > 0 {
			c.HTTPClient.Timeout = d
		}
	}
}

// WithHTTPClient 替换 HTTP 客户端。
func WithHTTPClient(hc *http.Client) func(*Client) {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// Collect 发送一次 POST，非 2xx 响应作为错误返回。
func (c *Client) Collect(ctx context.Context, rec lead.Record) error {
	if c == nil {
		return errors.New("collector client is nil")
	}
	if strings.TrimSpace(c.URL) == "" {
		return errors.New("collector url is not set")
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("collector non-2xx: %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}
