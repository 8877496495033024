package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"reservation-monitor/config"
	"reservation-monitor/models"
)

// ErrUnknownPlatform is returned for targets on a platform with no adapter
var ErrUnknownPlatform = errors.New("unknown platform")

const defaultResyCity = "lon"

// Platform knows how to reach a booking page and read slots from it
type Platform struct {
	Name models.Platform
	// PageURL builds the availability page for a target on a date
	PageURL func(cfg *config.Config, target models.Target, date string) (string, error)
	// ReadySelector is waited for (best effort) before the page is read
	ReadySelector string
	// Extract reads slot labels from the rendered page
	Extract Strategy
}

var openTable = Platform{
	Name:          models.PlatformOpenTable,
	PageURL:       openTableURL,
	ReadySelector: `[data-test="time-slot"], button[class*="timeslot"], button[class*="time-slot"], [class*="TimeSlot"], a[class*="slot"]`,
	Extract: FirstMatch(
		SelectorStrategy(`[data-test="time-slot"]`, nil, ExcludeClassContaining("unavailable")),
		SelectorStrategy(`button[class*="timeslot"]`, nil, ExcludeClassContaining("unavailable")),
		SelectorStrategy(`button[class*="TimeSlot"]`, nil, ExcludeClassContaining("unavailable")),
		SelectorStrategy(`[class*="timeslot-button"]`, nil, ExcludeClassContaining("unavailable")),
		SelectorStrategy(`a[class*="time-slot"]`, nil, ExcludeClassContaining("unavailable")),
		TimePatternStrategy(),
	),
}

var resy = Platform{
	Name:          models.PlatformResy,
	PageURL:       resyURL,
	ReadySelector: `[class*="ReservationButton"], [class*="time-slot"], button[class*="slot"], [data-test*="slot"]`,
	Extract: FirstMatch(
		SelectorStrategy(`[class*="ReservationButton"]`, ContainsClockTime),
		SelectorStrategy(`button[class*="slot"]`, ContainsClockTime),
		SelectorStrategy(`[data-test*="time-slot"]`, ContainsClockTime),
		SelectorStrategy(`[class*="timeslot"]`, ContainsClockTime),
		SelectorStrategy(`li[class*="time"] button`, ContainsClockTime),
	),
}

// PlatformFor returns the adapter for p
func PlatformFor(p models.Platform) (Platform, error) {
	switch p {
	case models.PlatformOpenTable:
		return openTable, nil
	case models.PlatformResy:
		return resy, nil
	}
	return Platform{}, fmt.Errorf("%w: %q", ErrUnknownPlatform, p)
}

// openTableURL adds covers and dateTime to the restaurant page URL
func openTableURL(cfg *config.Config, target models.Target, date string) (string, error) {
	u, err := url.Parse(target.Locator)
	if err != nil {
		return "", fmt.Errorf("invalid opentable url %q: %w", target.Locator, err)
	}
	q := u.Query()
	q.Set("covers", strconv.Itoa(cfg.PartySize))
	q.Del("dateTime")
	// dateTime keeps its literal colon
	u.RawQuery = q.Encode() + "&dateTime=" + date + "T" + cfg.PreferredTime
	return u.String(), nil
}

// resyURL builds https://resy.com/cities/<city>/<slug>?date=...&seats=...
func resyURL(cfg *config.Config, target models.Target, date string) (string, error) {
	slug := strings.Trim(target.Locator, "/")
	if slug == "" {
		return "", errors.New("resy slug is empty")
	}
	city := target.City
	if city == "" {
		city = defaultResyCity
	}
	u := url.URL{
		Scheme: "https",
		Host:   "resy.com",
		Path:   "/cities/" + city + "/" + slug,
	}
	q := url.Values{}
	q.Set("date", date)
	q.Set("seats", strconv.Itoa(cfg.PartySize))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
