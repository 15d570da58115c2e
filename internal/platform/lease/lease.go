package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Lease grants short-lived exclusive ownership of a key across workers.
type Lease interface {
	// Acquire returns ok=false when another holder owns key. release is a no-op
	// when ok is false and safe to call more than once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// GenerationKey is the lease key for building one artifact type of a document.
func GenerationKey(documentID uuid.UUID, artifactType string) string {
	return fmt.Sprintf("learnsphere:gen:%s:%s", documentID, artifactType)
}

func noop() {}
