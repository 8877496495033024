package models

import (
	"sort"
	"strings"
	"time"
)

// Platform identifies the booking site a target is listed on
type Platform string

const (
	PlatformOpenTable Platform = "opentable"
	PlatformResy      Platform = "resy"
)

// Target is one restaurant on one booking platform.
// Locator is the restaurant URL for OpenTable and the venue slug for Resy.
type Target struct {
	Name     string   `json:"name"`
	Area     string   `json:"area"`
	Platform Platform `json:"platform"`
	Locator  string   `json:"locator"`
	City     string   `json:"city,omitempty"` // Resy city code, e.g. "lon"
}

// Label is the "name (platform)" form used in progress lines
func (t Target) Label() string {
	return t.Name + " (" + string(t.Platform) + ")"
}

// StoreKey builds the composite key under which the last-seen slots are persisted
func StoreKey(t Target, date string) string {
	return t.Name + "|" + string(t.Platform) + "|" + date
}

// SlotSignature is the display/sort key: the store key plus the sorted slot labels.
// It is not used for change detection.
func SlotSignature(t Target, date string, slots []string) string {
	sorted := append([]string(nil), slots...)
	sort.Strings(sorted)
	return StoreKey(t, date) + "|" + strings.Join(sorted, ",")
}

// State is everything the availability store remembers between runs
type State struct {
	Found   map[string][]string
	LastRun time.Time // zero when no run has been recorded
}

// NewState returns an empty, usable State
func NewState() *State {
	return &State{Found: make(map[string][]string)}
}

// Previous returns the stored slots for key, or nil when the key is absent
func (s *State) Previous(key string) []string {
	if s == nil || s.Found == nil {
		return nil
	}
	return s.Found[key]
}

// Finding is a reportable result for one target and date in the current run
type Finding struct {
	Target   Target
	Date     string
	Slots    []string
	NewSlots []string
	IsNew    bool
}

// Key returns the store key of the finding
func (f Finding) Key() string {
	return StoreKey(f.Target, f.Date)
}

// CheckResult records what one (target, date) check produced
type CheckResult struct {
	Target Target
	Date   string
	Slots  []string
	Err    error
}

// RunSummary holds the counters computed at the end of a run
type RunSummary struct {
	StartedAt       time.Time
	FinishedAt      time.Time
	Checks          int
	Failures        int
	ChecksWithSlots int
	TotalSlots      int
	Findings        int
	NewFindings     int
	SlotsByTarget   map[string]int
}
