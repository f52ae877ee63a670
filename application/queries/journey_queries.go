package queries

import (
	"errors"

	"journeymap/domain/core/aggregates"
	"journeymap/pkg/utils"
)

// GetJourneyQuery fetches one journey of a user
type GetJourneyQuery struct {
	UserID    string
	JourneyID string
}

// Validate validates the query
func (q GetJourneyQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.JourneyID == "" {
		return errors.New("journey ID is required")
	}
	return nil
}

// CacheKey identifies the query result in the query cache
func (q GetJourneyQuery) CacheKey() string {
	return JourneyCacheKey(q.JourneyID, q.UserID)
}

// JourneyCacheKey is the cache key under which a user's view of a journey
// is stored. Writers delete it after every change.
func JourneyCacheKey(journeyID, userID string) string {
	return "journey:" + journeyID + ":" + userID
}

// ListJourneysQuery lists a user's journeys, most recently updated first
type ListJourneysQuery struct {
	UserID string
	Limit  int
	Offset int
}

// Validate validates the query
func (q ListJourneysQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if q.Offset < 0 {
		return errors.New("offset cannot be negative")
	}
	return nil
}

// ListJourneysResult represents one page of journeys
type ListJourneysResult struct {
	Journeys   []JourneySummary `json:"journeys"`
	TotalCount int              `json:"totalCount"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
}

// JourneySummary represents a journey without its graph
type JourneySummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	ActorCount    int    `json:"actorCount"`
	NodeCount     int    `json:"nodeCount"`
	EdgeCount     int    `json:"edgeCount"`
	Intersections int    `json:"intersectionCount"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// Summarize builds the list entry of a journey
func Summarize(j *aggregates.Journey) JourneySummary {
	counts := j.Content().Counts()
	return JourneySummary{
		ID:            j.ID().String(),
		Title:         j.Title(),
		Description:   j.Description(),
		ActorCount:    counts[0],
		NodeCount:     counts[3],
		EdgeCount:     counts[4],
		Intersections: counts[5],
		CreatedAt:     utils.FormatRFC3339(j.CreatedAt()),
		UpdatedAt:     utils.FormatRFC3339(j.UpdatedAt()),
	}
}
