// Package news fetches Google News RSS feeds and translates them into plain
// JSON-ready article lists.
package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/mercuryhq/mercuryd/internal/domain"
	"github.com/mercuryhq/mercuryd/internal/platform/httpx"
)

// maxArticles caps how many items one feed contributes.
const maxArticles = 30

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// Client fetches and parses Google News RSS.
type Client struct {
	baseURL string // e.g. "https://news.google.com"
	locale  string // query-string suffix: hl/gl/ceid
	http    *httpx.Client
}

// NewClient creates a news fetcher. locale defaults to US English.
func NewClient(baseURL, locale string, client *httpx.Client) *Client {
	if locale == "" {
		locale = "hl=en-US&gl=US&ceid=US:en"
	}
	return &Client{baseURL: baseURL, locale: locale, http: client}
}

// rssDoc mirrors the subset of the RSS 2.0 schema the feed uses.
type rssDoc struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
	Source  string `xml:"source"`
}

// FetchArticles returns up to 30 articles for a search query. An empty query
// fetches the unfiltered front-page feed.
func (c *Client) FetchArticles(ctx context.Context, query string) ([]domain.Article, error) {
	feedURL := c.baseURL + "/rss?" + c.locale
	if query != "" {
		feedURL = c.baseURL + "/rss/search?q=" + url.QueryEscape(query) + "&" + c.locale
	}

	body, err := c.http.GetXML(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("news: fetch feed: %w", err)
	}

	var doc rssDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("news: decode feed: %w", err)
	}

	articles := make([]domain.Article, 0, maxArticles)
	for _, item := range doc.Channel.Items {
		articles = append(articles, domain.Article{
			Title:   cleanTitle(item.Title),
			Link:    item.Link,
			PubDate: item.PubDate,
			Source:  item.Source,
		})
		if len(articles) == maxArticles {
			break
		}
	}
	return articles, nil
}

// FetchHeadlines runs every configured query plus the unfiltered baseline
// feed and returns the deduplicated headline titles. Individual query
// failures are skipped; an error is returned only when every feed failed.
func (c *Client) FetchHeadlines(ctx context.Context, queries []string) ([]string, error) {
	seen := make(map[string]struct{})
	var headlines []string
	var lastErr error
	failures := 0

	for _, q := range queries {
		articles, err := c.FetchArticles(ctx, q)
		if err != nil {
			failures++
			lastErr = err
			continue
		}
		for _, a := range articles {
			if a.Title == "" {
				continue
			}
			if _, dup := seen[a.Title]; dup {
				continue
			}
			seen[a.Title] = struct{}{}
			headlines = append(headlines, a.Title)
		}
	}

	if failures == len(queries) && lastErr != nil {
		return nil, fmt.Errorf("news: all %d feeds failed: %w", failures, lastErr)
	}
	return headlines, nil
}

// cleanTitle strips embedded HTML tags and unescapes entities.
func cleanTitle(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(s, "")))
}
