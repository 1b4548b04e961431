package repository

import (
	"sync"

	"isp-image-guard-service/domain"
)

// кольцевой буфер последних отказов
type RejectionJournal struct {
	lock sync.Mutex
	buf  []domain.RejectionEvent
	next int
	size int
}

func NewRejectionJournal(capacity int) *RejectionJournal {
	return &RejectionJournal{
		buf: make([]domain.RejectionEvent, capacity),
	}
}

func (r *RejectionJournal) Add(event domain.RejectionEvent) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if len(r.buf) == 0 {
		return
	}

	r.buf[r.next] = event
	r.next = (r.next + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// Recent возвращает последние события, от новых к старым
func (r *RejectionJournal) Recent(limit int) []domain.RejectionEvent {
	r.lock.Lock()
	defer r.lock.Unlock()

	if limit <= 0 || limit > r.size {
		limit = r.size
	}

	events := make([]domain.RejectionEvent, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (r.next - 1 - i + len(r.buf)) % len(r.buf)
		events = append(events, r.buf[idx])
	}

	return events
}
