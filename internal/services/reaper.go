package services

import (
	"context"
	"fugitive-hunt-service/internal/ports"
	"log"
	"time"
)

// ReapSessions periodically deletes sessions older than ttl that were never
// resolved. Abandoned rounds otherwise accumulate forever, since resolution
// is the only path that removes session state. Blocks until ctx is done.
func ReapSessions(ctx context.Context, store ports.GameStore, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-ttl)
			n, err := store.PurgeSessionsBefore(ctx, cutoff)
			if err != nil {
				log.Printf("op=reap_sessions err=%v", err)
				continue
			}
			if n > 0 {
				log.Printf("op=reap_sessions purged=%d", n)
			}
		}
	}
}
