package charts

import "errors"

// ErrProducer is returned when the external producer failed to yield a
// dataset. The archive is untouched in that case; the caller decides
// whether to substitute a fallback producer and retry the cycle.
var ErrProducer = errors.New("charts: producer failed to yield a dataset")
