package service

import (
	"context"
	"time"

	"github.com/Bivtor/cold-cold-cold/internal/apperr"
	"github.com/Bivtor/cold-cold-cold/internal/entity"
	"github.com/Bivtor/cold-cold-cold/internal/repository"
)

// AnalyticsOverview is the aggregate report for the requested date range.
// Rates are fractions in [0, 1]; a zero denominator yields a zero rate.
type AnalyticsOverview struct {
	TotalEmails      int                      `json:"totalEmails"`
	Drafts           int                      `json:"drafts"`
	Sent             int                      `json:"sent"`
	Failed           int                      `json:"failed"`
	GoodResponses    int                      `json:"goodResponses"`
	BadResponses     int                      `json:"badResponses"`
	AwaitingResponse int                      `json:"awaitingResponse"`
	ResponseRate     float64                  `json:"responseRate"`
	OpenRate         float64                  `json:"openRate"`
	ClickRate        float64                  `json:"clickRate"`
	Events           map[entity.EventType]int `json:"events"`
}

// AnalyticsService derives rollup rates from the raw persisted counts.
type AnalyticsService struct {
	events repository.AnalyticsRepository
}

// NewAnalyticsService wires the analytics rollup service.
func NewAnalyticsService(events repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{events: events}
}

// Overview aggregates email outcomes and event counts inside the optional
// date range. The response rate counts good responses against everything that
// was delivered; open and click rates compare their events to sent events.
func (s *AnalyticsService) Overview(ctx context.Context, from, to *time.Time) (*AnalyticsOverview, error) {
	counts, err := s.events.Overview(ctx, from, to)
	if err != nil {
		return nil, apperr.Database("analytics overview", err)
	}

	overview := &AnalyticsOverview{
		TotalEmails:      counts.TotalEmails,
		Drafts:           counts.Drafts,
		Sent:             counts.Sent,
		Failed:           counts.Failed,
		GoodResponses:    counts.GoodResponses,
		BadResponses:     counts.BadResponses,
		AwaitingResponse: counts.AwaitingResponse,
		Events:           counts.Events,
	}

	delivered := counts.GoodResponses + counts.BadResponses + counts.AwaitingResponse
	overview.ResponseRate = ratio(counts.GoodResponses, delivered)
	overview.OpenRate = ratio(counts.Events[entity.EventOpened], counts.Events[entity.EventSent])
	overview.ClickRate = ratio(counts.Events[entity.EventClicked], counts.Events[entity.EventSent])

	return overview, nil
}

// RecordEvent appends one event after checking the type is known.
func (s *AnalyticsService) RecordEvent(ctx context.Context, event *entity.AnalyticsEvent) error {
	if event == nil || !event.EventType.Valid() {
		return apperr.New(apperr.CodeInvalidResponse, "unknown analytics event type", false)
	}
	if err := s.events.Append(ctx, event); err != nil {
		return apperr.Database("record analytics event", err)
	}
	return nil
}

func ratio(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}
