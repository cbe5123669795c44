package scraper

import (
	"bytes"
	"context"

	"github.com/PuerkitoBio/goquery"

	"manhwaverse/pkg/engine/logger"
	"manhwaverse/pkg/engine/network"
)

// Service fetches pages through the shared network client and parses
// them into goquery documents. All providers scrape through this.
type Service struct {
	network *network.Client
	logger  logger.Logger
}

// NewService creates a new scraper service
func NewService(n *network.Client, log logger.Logger) *Service {
	return &Service{network: n, logger: log}
}

// Document fetches req and parses the body as HTML.
func (s *Service) Document(ctx context.Context, req *network.Request) (*goquery.Document, error) {
	resp, err := s.network.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Network exposes the underlying fetch client for callers that need
// raw responses (the image proxy).
func (s *Service) Network() *network.Client {
	return s.network
}
