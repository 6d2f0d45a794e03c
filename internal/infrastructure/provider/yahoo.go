package provider

import (
	"context"
	"fmt"
	"net/url"

	"fxhistory-service/internal/application"
	"fxhistory-service/internal/infrastructure/httpx"
)

var _ application.SourceFetcher = (*YahooFetcher)(nil)

// YahooFetcher downloads the quote history page for a symbol. URLTemplate
// takes the escaped symbol, period1, period2 and the frequency token.
type YahooFetcher struct {
	URLTemplate string
	Client      *httpx.Client
}

func NewYahooFetcher(urlTemplate string, client *httpx.Client) *YahooFetcher {
	return &YahooFetcher{URLTemplate: urlTemplate, Client: client}
}

func (f *YahooFetcher) URL(symbol string, fromUnix, toUnix int64, token string) string {
	return fmt.Sprintf(f.URLTemplate, url.QueryEscape(symbol), fromUnix, toUnix, token)
}

func (f *YahooFetcher) Fetch(ctx context.Context, symbol string, fromUnix, toUnix int64, token string) ([]byte, error) {
	return f.Client.GetDocument(ctx, f.URL(symbol, fromUnix, toUnix, token))
}
