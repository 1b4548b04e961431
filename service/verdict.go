package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"isp-image-guard-service/domain"
)

type RejectionJournal interface {
	Add(event domain.RejectionEvent)
}

type VerdictMetrics interface {
	ObserveAdmission()
	ObserveRejection(stage string)
}

type Verdict struct {
	journal RejectionJournal
	metrics VerdictMetrics
}

func NewVerdict(journal RejectionJournal, metrics VerdictMetrics) Verdict {
	return Verdict{
		journal: journal,
		metrics: metrics,
	}
}

func (s Verdict) ObserveRejection(ctx context.Context, rejection domain.Rejection, viewerId string, payload *domain.Payload) {
	event := domain.RejectionEvent{
		Id:       uuid.NewString(),
		At:       time.Now().UTC(),
		ViewerId: viewerId,
		Stage:    rejection.Stage,
		Reason:   rejection.Reason,
		Digest:   rejection.Digest,
	}
	if payload != nil {
		event.RecordId = payload.RecordId
		event.Field = payload.Field
	}

	s.journal.Add(event)
	s.metrics.ObserveRejection(rejection.Stage)
}

func (s Verdict) ObserveAdmission(ctx context.Context) {
	s.metrics.ObserveAdmission()
}
