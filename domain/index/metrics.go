package index

// Metrics summarizes the outcome of one reconciliation pass. It is the only
// value returned to the caller and is never persisted.
type Metrics struct {
	processed  int
	successful int
	failed     int
	skipped    int
}

// NewMetrics creates Metrics with the given counts.
func NewMetrics(processed, successful, failed, skipped int) Metrics {
	return Metrics{
		processed:  processed,
		successful: successful,
		failed:     failed,
		skipped:    skipped,
	}
}

// Processed returns the number of symbols the pass looked at.
func (m Metrics) Processed() int { return m.processed }

// Successful returns the number of symbols embedded and stored.
func (m Metrics) Successful() int { return m.successful }

// Failed returns the number of symbols that could not be stored.
func (m Metrics) Failed() int { return m.failed }

// Skipped returns the number of symbols skipped (no documentation text).
func (m Metrics) Skipped() int { return m.skipped }

// RecordSuccess counts one stored symbol.
func (m *Metrics) RecordSuccess() {
	m.processed++
	m.successful++
}

// RecordFailure counts one failed symbol.
func (m *Metrics) RecordFailure() {
	m.processed++
	m.failed++
}

// RecordFailures counts n failed symbols at once (used when a pass is
// abandoned and the remaining symbols are written off).
func (m *Metrics) RecordFailures(n int) {
	m.processed += n
	m.failed += n
}

// RecordSkip counts one skipped symbol.
func (m *Metrics) RecordSkip() {
	m.processed++
	m.skipped++
}
