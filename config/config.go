package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"reservation-monitor/models"

	"github.com/titanous/json5"
)

// ErrNoTargets is returned by Validate when there is nothing to check
var ErrNoTargets = errors.New("no targets configured")

// Config holds all application-level configuration
type Config struct {
	// What to check
	Targets       []models.Target
	Dates         []string // YYYY-MM-DD
	PartySize     int
	PreferredTime string // HH:MM, used by OpenTable's dateTime parameter

	// Storage
	StateFile   string
	DatabaseURL string // when set, state lives in PostgreSQL instead of StateFile
	FindingsCSV string // optional findings history

	// Browser
	Headless        bool
	UserAgent       string
	Locale          string
	Timezone        string
	AcceptLanguage  string
	ViewportWidth   int
	ViewportHeight  int
	RateLimitDelay  int // milliseconds paused between page checks
	NavTimeout      time.Duration
	RenderWait      time.Duration
	SelectorTimeout time.Duration

	Debug bool
}

// Default returns the built-in watch list and timings
func Default() *Config {
	return &Config{
		Targets: []models.Target{
			{Name: "The Marksman", Area: "Shoreditch", Platform: models.PlatformOpenTable, Locator: "https://www.opentable.co.uk/r/the-marksman-hackney-london"},
			{Name: "The Marksman", Area: "Shoreditch", Platform: models.PlatformResy, Locator: "marksman-public-house", City: "lon"},
			{Name: "The Princess of Shoreditch", Area: "Shoreditch", Platform: models.PlatformOpenTable, Locator: "https://www.opentable.co.uk/the-princess-of-shoreditch"},
			{Name: "The Royal Oak Marylebone", Area: "Marylebone", Platform: models.PlatformResy, Locator: "the-royal-oak-marylebone", City: "lon"},
		},
		Dates:         []string{"2026-02-28", "2026-03-01", "2026-03-02", "2026-03-04", "2026-03-06"},
		PartySize:     2,
		PreferredTime: "19:00",

		StateFile: "reservation-state.json",

		Headless:        true,
		UserAgent:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
		Locale:          "en-GB",
		Timezone:        "Europe/London",
		AcceptLanguage:  "en-GB,en;q=0.9",
		ViewportWidth:   1280,
		ViewportHeight:  800,
		RateLimitDelay:  2000,
		NavTimeout:      30 * time.Second,
		RenderWait:      5 * time.Second,
		SelectorTimeout: 15 * time.Second,
	}
}

// Load reads configuration from environment variables on top of Default.
// A TARGETS_FILE replaces the built-in watch list.
func Load() (*Config, error) {
	cfg := Default()

	cfg.StateFile = getEnv("STATE_FILE", cfg.StateFile)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.FindingsCSV = getEnv("FINDINGS_CSV", cfg.FindingsCSV)
	cfg.PartySize = getEnvInt("PARTY_SIZE", cfg.PartySize)
	cfg.PreferredTime = getEnv("PREFERRED_TIME", cfg.PreferredTime)
	cfg.RateLimitDelay = getEnvInt("RATE_LIMIT_DELAY_MS", cfg.RateLimitDelay)
	cfg.NavTimeout = getEnvMillis("NAV_TIMEOUT_MS", cfg.NavTimeout)
	cfg.RenderWait = getEnvMillis("RENDER_WAIT_MS", cfg.RenderWait)
	cfg.SelectorTimeout = getEnvMillis("SELECTOR_TIMEOUT_MS", cfg.SelectorTimeout)
	cfg.Headless = getEnvBool("HEADLESS", cfg.Headless)
	cfg.UserAgent = getEnv("USER_AGENT", cfg.UserAgent)
	cfg.Locale = getEnv("BROWSER_LOCALE", cfg.Locale)
	cfg.Timezone = getEnv("BROWSER_TIMEZONE", cfg.Timezone)
	cfg.Debug = getEnvBool("LOG_DEBUG", cfg.Debug)

	if path := os.Getenv("TARGETS_FILE"); path != "" {
		if err := cfg.LoadTargetsFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// targetsFile is the on-disk watch list. Comments and trailing commas are allowed.
type targetsFile struct {
	Targets       []models.Target `json:"targets"`
	Dates         []string        `json:"dates"`
	PartySize     int             `json:"partySize"`
	PreferredTime string          `json:"preferredTime"`
}

// LoadTargetsFile replaces the watch list with the contents of a JSON5 file.
// Fields left out of the file keep their current values.
func (c *Config) LoadTargetsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read targets file: %w", err)
	}
	var tf targetsFile
	if err := json5.Unmarshal(data, &tf); err != nil {
		return fmt.Errorf("parse targets file %s: %w", path, err)
	}
	if len(tf.Targets) > 0 {
		c.Targets = tf.Targets
	}
	if len(tf.Dates) > 0 {
		c.Dates = tf.Dates
	}
	if tf.PartySize > 0 {
		c.PartySize = tf.PartySize
	}
	if tf.PreferredTime != "" {
		c.PreferredTime = tf.PreferredTime
	}
	return nil
}

// Validate checks the watch list before any browser is started
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTargets
	}
	if len(c.Dates) == 0 {
		return errors.New("no dates configured")
	}
	if c.PartySize < 1 {
		return fmt.Errorf("party size must be >= 1 (got %d)", c.PartySize)
	}
	if _, err := time.Parse("15:04", c.PreferredTime); err != nil {
		return fmt.Errorf("invalid preferred time %q (want HH:MM)", c.PreferredTime)
	}
	for _, d := range c.Dates {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", d)
		}
	}
	for i, t := range c.Targets {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("target %d: name required", i)
		}
		if strings.TrimSpace(t.Locator) == "" {
			return fmt.Errorf("target %q: locator required", t.Name)
		}
		switch t.Platform {
		case models.PlatformOpenTable:
			if !strings.HasPrefix(t.Locator, "http://") && !strings.HasPrefix(t.Locator, "https://") {
				return fmt.Errorf("target %q: opentable locator must be a URL", t.Name)
			}
		case models.PlatformResy:
		default:
			return fmt.Errorf("target %q: unknown platform %q", t.Name, t.Platform)
		}
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvMillis(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n >= 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
