package repository

import (
	"sync"
	"time"

	"isp-image-guard-service/domain"
)

type renderedItem struct {
	image     domain.RenderedImage
	expiredAt time.Time
}

// проверенные изображения живут в памяти процесса;
// байты хранятся как есть, без сериализации
type RenderedImageStore struct {
	lifeTime time.Duration

	lock      sync.Mutex
	store     map[string]renderedItem
	lastSweep time.Time
}

func NewRenderedImageStore(lifeTime time.Duration) *RenderedImageStore {
	return &RenderedImageStore{
		lifeTime:  lifeTime,
		store:     map[string]renderedItem{},
		lastSweep: time.Now(),
	}
}

func (r *RenderedImageStore) Set(image domain.RenderedImage) {
	now := time.Now()

	r.lock.Lock()
	defer r.lock.Unlock()

	r.store[image.Digest] = renderedItem{
		image:     image,
		expiredAt: now.Add(r.lifeTime),
	}

	if now.Sub(r.lastSweep) >= r.lifeTime {
		r.lastSweep = now
		for digest, item := range r.store {
			if now.After(item.expiredAt) {
				delete(r.store, digest)
			}
		}
	}
}

func (r *RenderedImageStore) Get(digest string) (*domain.RenderedImage, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	item, ok := r.store[digest]
	if !ok {
		return nil, false
	}

	if time.Now().After(item.expiredAt) {
		return nil, false
	}

	image := item.image
	return &image, true
}
