package rv

// DocumentStore persists one Document per user id. Implementations do
// no locking of their own; callers serialize writers through a Locker.
type DocumentStore interface {
	// Read returns the stored document for uid, or an empty document if
	// none has been written yet.
	Read(uid string) (*Document, error)

	// Write replaces the stored document for uid. A concurrent reader
	// observes either the fully-old or the fully-new document, never a
	// partial one, and a crash mid-write leaves the old document intact.
	Write(uid string, doc *Document) error
}
