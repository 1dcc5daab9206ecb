package review

// Publisher surfaces challenge-blocked URLs for manual human review.
// Publishing is best-effort: callers must never fail a scrape on a
// publish error.
type Publisher interface {
	// Publish pushes a blocked URL (with the store it belongs to) onto the review channel
	Publish(store string, url string) error

	// Trim bounds the review channel to its configured maximum length
	Trim() error

	// Close closes the publisher
	Close() error
}
