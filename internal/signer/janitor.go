package signer

import (
	"context"
	"log"
	"time"
)

// Janitor periodically sweeps upload sessions whose credential TTL has
// passed. Uncommitted sessions with a backend upload handle are aborted so
// orphaned chunks do not accumulate on the backend.
type Janitor struct {
	svc      *Service
	interval time.Duration
}

// NewJanitor creates a Janitor sweeping at interval.
func NewJanitor(svc *Service, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Janitor{svc: svc, interval: interval}
}

// Start runs the sweep loop until ctx is canceled.
func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	log.Printf("sessionJanitor: started (interval=%s)", j.interval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("sessionJanitor: shutting down")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	expired, err := j.svc.store.Expired(ctx)
	if err != nil {
		log.Printf("sessionJanitor: listing expired sessions: %v", err)
		return
	}
	for _, sess := range expired {
		if !sess.Committed && sess.BackendUploadID != "" {
			if err := j.svc.adapter.AbortChunked(ctx, sess); err != nil {
				log.Printf("sessionJanitor: aborting session %s for %q: %v",
					sess.SessionID, sess.StorageKey, err)
				continue
			}
			log.Printf("sessionJanitor: aborted orphaned session %s for %q",
				sess.SessionID, sess.StorageKey)
		}
		if err := j.svc.store.Delete(ctx, sess.SessionID); err != nil {
			log.Printf("sessionJanitor: deleting session %s: %v", sess.SessionID, err)
		}
	}
	if len(expired) > 0 {
		log.Printf("sessionJanitor: swept %d expired session(s)", len(expired))
	}
}
