package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	MaxImages = 6

	defaultBaseURL = "https://www.instagram.com"
	maxPageBytes   = 5 << 20
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var (
	ErrNoImages = errors.New("gallery: no images found on profile page")

	displayURLPattern = regexp.MustCompile(`"display_url":"([^"]+)"`)
	jsonUnescaper     = strings.NewReplacer(`\u0026`, "&", `\/`, "/")
)

// Scraper reads image URLs from a public Instagram profile page.
type Scraper struct {
	username string
	baseURL  string
	client   *http.Client
	timeout  time.Duration
}

type ScraperOption func(*Scraper)

// WithBaseURL points the scraper at another host, e.g. a local fake.
func WithBaseURL(u string) ScraperOption {
	return func(s *Scraper) { s.baseURL = strings.TrimSuffix(u, "/") }
}

func WithHTTPClient(c *http.Client) ScraperOption {
	return func(s *Scraper) { s.client = c }
}

func NewScraper(username string, timeout time.Duration, opts ...ScraperOption) *Scraper {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	s := &Scraper{
		username: username,
		baseURL:  defaultBaseURL,
		client:   http.DefaultClient,
		timeout:  timeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scraper) profileURL() string {
	return s.baseURL + "/" + s.username + "/"
}

// Fetch downloads the profile page and extracts up to MaxImages images.
func (s *Scraper) Fetch(ctx context.Context) ([]Image, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.profileURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("gallery: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gallery: fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gallery: fetch profile: status %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("gallery: parse profile page: %w", err)
	}

	images := extract(doc, ProfileURL(s.username)+"/")
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	return images, nil
}

// extract collects the og:image of the page followed by the display_url
// entries embedded in its scripts.
func extract(doc *html.Node, link string) []Image {
	var og string
	var scripts []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Meta:
				if og == "" && attr(n, "property") == "og:image" {
					og = attr(n, "content")
				}
			case atom.Script:
				var b strings.Builder
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						b.WriteString(c.Data)
					}
				}
				scripts = append(scripts, b.String())
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var images []Image
	if og != "" {
		images = append(images, Image{URL: og, Link: link})
	}
	for _, text := range scripts {
		if !strings.Contains(text, "display_url") {
			continue
		}
		for _, m := range displayURLPattern.FindAllStringSubmatch(text, MaxImages) {
			images = append(images, Image{URL: jsonUnescaper.Replace(m[1]), Link: link})
		}
	}
	if len(images) > MaxImages {
		images = images[:MaxImages]
	}
	return images
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
