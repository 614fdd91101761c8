// Package pagecontent fetches pre-rendered page markup from the PWA Kit
// runtime so storefront pages can embed it without a browser CORS hop.
package pagecontent

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/brizzai/storefront-gateway/internal/config"
	"github.com/brizzai/storefront-gateway/internal/requester"
)

// Params identifies a page of a site
type Params struct {
	SiteID string
	PageID string
}

// Result is the outcome of a page fetch; the payload is HTML
type Result = requester.CallResult[string]

// MockContent is the markup returned in simulate mode
const MockContent = "<div>Mock PWA Kit Content</div>"

type Client struct {
	invoker *requester.Invoker[Params, string]
}

func NewClient(cfg *config.ServiceConfig, transport requester.Transport, opts ...requester.Option) *Client {
	return &Client{invoker: requester.NewInvoker(cfg, transport, Endpoint(), opts...)}
}

// GetPageContent fetches the preview markup of a page
func (c *Client) GetPageContent(ctx context.Context, siteID, pageID string) Result {
	return c.invoker.Call(ctx, Params{SiteID: siteID, PageID: pageID})
}

func (c *Client) Invoker() *requester.Invoker[Params, string] {
	return c.invoker
}

func Endpoint() requester.Endpoint[Params, string] {
	return requester.Endpoint[Params, string]{
		Method:  http.MethodGet,
		Headers: map[string]string{"Accept": "text/html"},
		Resolve: resolve,
		Decode:  requester.DecodeText,
		Mock: func(Params) *requester.Response {
			return &requester.Response{
				StatusCode:    http.StatusOK,
				StatusMessage: "OK",
				Headers:       http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
				Body:          []byte(MockContent),
			}
		},
	}
}

// resolve maps params to {base}/{siteID}/page/{pageID}?preview=true
func resolve(p Params) (requester.Route, error) {
	siteID := strings.TrimSpace(p.SiteID)
	pageID := strings.TrimSpace(p.PageID)
	if siteID == "" {
		return requester.Route{}, requester.MissingParam("siteID")
	}
	if pageID == "" {
		return requester.Route{}, requester.MissingParam("pageID")
	}
	return requester.Route{
		Segments: []string{siteID, "page", pageID},
		Query:    url.Values{"preview": []string{"true"}},
	}, nil
}
