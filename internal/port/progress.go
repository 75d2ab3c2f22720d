package port

import "coursevault/internal/domain"

// ProgressFunc receives transfer progress events. Implementations must be
// cheap; the engine calls them inline on the transfer goroutine.
type ProgressFunc func(p domain.Progress)
