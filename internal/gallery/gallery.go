// Package gallery serves the image feed shown on the site, scraped from the
// studio's Instagram profile with a fixed fallback set.
package gallery

import (
	"context"

	"go.uber.org/zap"

	"benessere-booking/internal/logging"
	"benessere-booking/internal/metrics"
)

const (
	SourceCache     = "cache"
	SourceInstagram = "instagram"
	SourceFallback  = "fallback"
)

type Image struct {
	URL  string `json:"url"`
	Link string `json:"link,omitempty"`
}

func ProfileURL(username string) string {
	return defaultBaseURL + "/" + username
}

var fallbackPhotos = []string{
	"https://images.unsplash.com/photo-1600334089648-b0d9d3028eb2?w=600&h=600&fit=crop",
	"https://images.unsplash.com/photo-1544161515-4ab6ce6db874?w=600&h=600&fit=crop",
	"https://images.unsplash.com/photo-1519823551278-64ac92734fb1?w=600&h=600&fit=crop",
	"https://images.unsplash.com/photo-1507652313519-d4e9174996dd?w=600&h=600&fit=crop",
	"https://images.unsplash.com/photo-1515377905703-c4788e51af15?w=600&h=600&fit=crop",
	"https://images.unsplash.com/photo-1620733723572-11c53f73a416?w=600&h=600&fit=crop",
}

// Fallback returns the fixed image set, each linking to the profile.
func Fallback(username string) []Image {
	images := make([]Image, len(fallbackPhotos))
	for i, u := range fallbackPhotos {
		images[i] = Image{URL: u, Link: ProfileURL(username)}
	}
	return images
}

// Fetcher produces freshly scraped images.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Image, error)
}

type Options struct {
	Username string
	Fetcher  Fetcher
	Cache    Cache
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

type Service struct {
	username string
	fetcher  Fetcher
	cache    Cache
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewService(opts Options) *Service {
	if opts.Cache == nil {
		opts.Cache = NopCache{}
	}
	return &Service{
		username: opts.Username,
		fetcher:  opts.Fetcher,
		cache:    opts.Cache,
		logger:   logging.OrNop(opts.Logger),
		metrics:  opts.Metrics,
	}
}

// Images never fails: cache, then a fresh scrape, then the fallback set.
// Only scraped results are cached.
func (s *Service) Images(ctx context.Context) []Image {
	cached, ok, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.Warn("gallery cache read failed", zap.Error(err))
	}
	if ok {
		s.metrics.ObserveGallery(SourceCache)
		return cached
	}

	if s.fetcher != nil {
		images, err := s.fetcher.Fetch(ctx)
		if err == nil {
			if err := s.cache.Set(ctx, images); err != nil {
				s.logger.Warn("gallery cache write failed", zap.Error(err))
			}
			s.metrics.ObserveGallery(SourceInstagram)
			return images
		}
		s.logger.Info("instagram scrape failed, serving fallback images", zap.Error(err))
	}

	s.metrics.ObserveGallery(SourceFallback)
	return Fallback(s.username)
}
