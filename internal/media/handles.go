package media

import (
	"sync"

	"github.com/google/uuid"
)

const handleScheme = "blob:authguard/"

// Handle is an ephemeral display reference to an artifact, the analogue of a browser object URL.
type Handle struct {
	ID  string
	URL string
}

// IsZero reports whether h was never issued.
func (h Handle) IsZero() bool {
	return h.ID == ""
}

// Handles issues and revokes display handles and tracks how many are live.
type Handles struct {
	mu   sync.Mutex
	live map[string]struct{}
}

// NewHandles returns an empty registry.
func NewHandles() *Handles {
	return &Handles{live: map[string]struct{}{}}
}

// Open issues a fresh handle.
func (h *Handles) Open() Handle {
	id := uuid.NewString()

	h.mu.Lock()
	h.live[id] = struct{}{}
	h.mu.Unlock()

	return Handle{ID: id, URL: handleScheme + id}
}

// Revoke releases handle. Revoking a zero or already released handle is a no-op.
func (h *Handles) Revoke(handle Handle) {
	if handle.IsZero() {
		return
	}
	h.mu.Lock()
	delete(h.live, handle.ID)
	h.mu.Unlock()
}

// Live returns the number of handles not yet revoked.
func (h *Handles) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}
