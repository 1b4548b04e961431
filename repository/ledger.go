package repository

import (
	"context"
	"sync"
	"time"

	"isp-image-guard-service/domain"
)

// учёт в памяти процесса, сбрасывается при перезапуске
type RateLimitLedger struct {
	lock       sync.Mutex
	timestamps map[string][]time.Time
	lastSweep  time.Time
}

func NewRateLimitLedger() *RateLimitLedger {
	return &RateLimitLedger{
		timestamps: map[string][]time.Time{},
		lastSweep:  time.Now(),
	}
}

func (r *RateLimitLedger) Allow(
	ctx context.Context,
	viewerId string,
	window time.Duration,
	quota int,
) (*domain.RateLimitResult, error) {
	now := time.Now()
	windowStart := now.Add(-window)

	r.lock.Lock()
	defer r.lock.Unlock()

	stamps := r.timestamps[viewerId]
	kept := stamps[:0]
	for _, stamp := range stamps {
		if stamp.After(windowStart) {
			kept = append(kept, stamp)
		}
	}

	if len(kept) >= quota {
		r.timestamps[viewerId] = kept
		return &domain.RateLimitResult{
			Allow:      false,
			Remaining:  0,
			RetryAfter: kept[0].Add(window).Sub(now),
		}, nil
	}

	r.timestamps[viewerId] = append(kept, now)
	r.sweep(now, windowStart, window)

	return &domain.RateLimitResult{
		Allow:      true,
		Remaining:  quota - len(kept) - 1,
		RetryAfter: -1,
	}, nil
}

// вычищает неактивных пользователей, не чаще раза в окно
func (r *RateLimitLedger) sweep(now time.Time, windowStart time.Time, window time.Duration) {
	if now.Sub(r.lastSweep) < window {
		return
	}
	r.lastSweep = now

	for viewerId, stamps := range r.timestamps {
		kept := stamps[:0]
		for _, stamp := range stamps {
			if stamp.After(windowStart) {
				kept = append(kept, stamp)
			}
		}
		if len(kept) == 0 {
			delete(r.timestamps, viewerId)
			continue
		}
		r.timestamps[viewerId] = kept
	}
}
