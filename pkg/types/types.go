// Package domain defines the core business types for the free games notifier.
package domain

import "time"

// Offer is a single time-boxed free-game promotion extracted from the
// storefront catalog. It is rebuilt on every fetch.
type Offer struct {
	ID          string    `json:"id"                    doc:"Stable catalog identifier"`
	Title       string    `json:"title"                 doc:"Game title"`
	URL         string    `json:"url"                   doc:"Store page link"`
	Description string    `json:"description,omitempty" doc:"Short catalog description"`
	ImageURL    string    `json:"imageUrl,omitempty"    doc:"Thumbnail image"`
	StartDate   time.Time `json:"startDate"             doc:"Promotion start"`
	EndDate     time.Time `json:"endDate"               doc:"Promotion end"`
}

// Trigger identifies what started a cycle.
type Trigger string

// Trigger constants.
const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// CycleResult summarizes one fetch, filter, notify, persist pass.
type CycleResult struct {
	Trigger Trigger `json:"trigger"`
	// Offers is the delta: fetched offers whose ids were not yet recorded.
	Offers         []Offer       `json:"offers"`
	Fetched        int           `json:"fetched"`
	Known          int           `json:"known"`
	NotifyFailures int           `json:"notify_failures"`
	Duration       time.Duration `json:"duration"`
}
