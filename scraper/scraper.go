package scraper

import (
	"context"
	"fmt"
	"strings"

	"reservation-monitor/config"
	"reservation-monitor/models"
	"reservation-monitor/utils"

	"github.com/PuerkitoBio/goquery"
)

// Renderer returns the rendered HTML of a page
type Renderer interface {
	Render(ctx context.Context, pageURL, readySelector string) (string, error)
}

// SlotScraper reads slot labels for a target and date through a Renderer
type SlotScraper struct {
	cfg      *config.Config
	renderer Renderer
	logger   *utils.Logger
}

// NewSlotScraper creates a new SlotScraper
func NewSlotScraper(cfg *config.Config, renderer Renderer, logger *utils.Logger) *SlotScraper {
	return &SlotScraper{cfg: cfg, renderer: renderer, logger: logger}
}

// Extract loads the booking page for target on date and returns the slot labels found
func (s *SlotScraper) Extract(ctx context.Context, target models.Target, date string) ([]string, error) {
	platform, err := PlatformFor(target.Platform)
	if err != nil {
		return nil, err
	}
	pageURL, err := platform.PageURL(s.cfg, target, date)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Loading %s", pageURL)

	body, err := s.renderer.Render(ctx, pageURL, platform.ReadySelector)
	if err != nil {
		return nil, err
	}
	return ExtractSlots(platform, body)
}

// ExtractSlots parses rendered HTML and runs the platform strategies on it
func ExtractSlots(platform Platform, body string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}
	labels, _ := platform.Extract(doc)
	return labels, nil
}
