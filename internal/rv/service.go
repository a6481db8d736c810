package rv

import (
	"fmt"
	"time"
)

// DefaultLockTimeout bounds lock acquisition and reader courtesy waits.
const DefaultLockTimeout = 200 * time.Millisecond

// ResourceService is the facade composing validation, locking,
// persistence and audit logging into the store's operations. Each
// instance owns one root namespace; instances pointed at different
// roots never interact.
//
// All mutations for a given user are serialized by that user's lock;
// different users proceed in parallel. Every successful mutation also
// appends one audit event, serialized process-wide by the audit log's
// own lock.
type ResourceService struct {
	validator *Validator
	store     DocumentStore
	locker    Locker
	audit     AuditLog
	logger    Logger
	tokens    TokenSource
	timeout   time.Duration
}

// NewResourceService creates a ResourceService with the provided
// dependencies. A non-positive timeout falls back to
// DefaultLockTimeout.
func NewResourceService(validator *Validator, store DocumentStore, locker Locker, audit AuditLog, logger Logger, tokens TokenSource, timeout time.Duration) *ResourceService {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &ResourceService{
		validator: validator,
		store:     store,
		locker:    locker,
		audit:     audit,
		logger:    logger,
		tokens:    tokens,
		timeout:   timeout,
	}
}

// CreateResource creates a named resource for a user with an initial
// revision and returns the new revision id. It fails with
// ErrAlreadyExists if the user already has a resource under the same
// slug (names collide case-insensitively).
func (s *ResourceService) CreateResource(userID, resourceName, content string) (string, error) {
	if err := s.validator.CheckUserID(userID); err != nil {
		return "", err
	}
	name, slug, err := s.validator.CheckResourceName(resourceName)
	if err != nil {
		return "", err
	}

	guard, err := s.locker.Acquire(userID, s.timeout)
	if err != nil {
		return "", err
	}
	defer guard.Release()

	doc, err := s.store.Read(userID)
	if err != nil {
		return "", fmt.Errorf("reading user document: %w", err)
	}
	if _, ok := doc.Get(slug); ok {
		return "", fmt.Errorf("resource %q for user %q: %w", resourceName, userID, ErrAlreadyExists)
	}

	rev := s.tokens.NewToken()
	doc.Set(slug, &Resource{Name: name, Revs: []Revision{{ID: rev, Text: content}}})
	if err := s.store.Write(userID, doc); err != nil {
		return "", fmt.Errorf("writing user document: %w", err)
	}

	if err := s.audit.Append(Event{Action: ActionCreate, Resource: name, Rev: rev, User: userID}); err != nil {
		return "", fmt.Errorf("recording audit event: %w", err)
	}

	s.logger.Info("resource created", "user", userID, "resource", name, "rev", rev)
	return rev, nil
}

// ReadResource returns the text of a resource. An empty revisionID
// selects the latest revision; otherwise the exact matching revision is
// returned, or ErrNotFound if the resource or revision is absent.
// Readers wait for an in-flight mutation only as a bounded courtesy.
func (s *ResourceService) ReadResource(userID, resourceName, revisionID string) (string, error) {
	if err := s.validator.CheckUserID(userID); err != nil {
		return "", err
	}
	_, slug, err := s.validator.CheckResourceName(resourceName)
	if err != nil {
		return "", err
	}

	s.locker.WaitUntilClear(userID, s.timeout)

	doc, err := s.store.Read(userID)
	if err != nil {
		return "", fmt.Errorf("reading user document: %w", err)
	}
	res, ok := doc.Get(slug)
	if !ok {
		return "", fmt.Errorf("resource %q for user %q: %w", resourceName, userID, ErrNotFound)
	}
	if revisionID == "" {
		return res.Revs[len(res.Revs)-1].Text, nil
	}
	for _, r := range res.Revs {
		if r.ID == revisionID {
			return r.Text, nil
		}
	}
	return "", fmt.Errorf("revision %q of %q: %w", revisionID, resourceName, ErrNotFound)
}

// UpdateResource appends a new revision to an existing resource and
// returns its id. It fails with ErrNotFound if the resource is absent.
func (s *ResourceService) UpdateResource(userID, resourceName, content string) (string, error) {
	if err := s.validator.CheckUserID(userID); err != nil {
		return "", err
	}
	name, slug, err := s.validator.CheckResourceName(resourceName)
	if err != nil {
		return "", err
	}

	guard, err := s.locker.Acquire(userID, s.timeout)
	if err != nil {
		return "", err
	}
	defer guard.Release()

	doc, err := s.store.Read(userID)
	if err != nil {
		return "", fmt.Errorf("reading user document: %w", err)
	}
	res, ok := doc.Get(slug)
	if !ok {
		return "", fmt.Errorf("resource %q for user %q: %w", resourceName, userID, ErrNotFound)
	}

	rev := s.tokens.NewToken()
	res.Revs = append(res.Revs, Revision{ID: rev, Text: content})
	if err := s.store.Write(userID, doc); err != nil {
		return "", fmt.Errorf("writing user document: %w", err)
	}

	if err := s.audit.Append(Event{Action: ActionUpdate, Resource: name, Rev: rev, User: userID}); err != nil {
		return "", fmt.Errorf("recording audit event: %w", err)
	}

	s.logger.Info("resource updated", "user", userID, "resource", name, "rev", rev)
	return rev, nil
}

// DeleteResource removes a resource and all its revisions. Recreating
// the same name afterwards starts a brand-new revision chain; the audit
// log keeps the full prior history.
func (s *ResourceService) DeleteResource(userID, resourceName string) error {
	if err := s.validator.CheckUserID(userID); err != nil {
		return err
	}
	name, slug, err := s.validator.CheckResourceName(resourceName)
	if err != nil {
		return err
	}

	guard, err := s.locker.Acquire(userID, s.timeout)
	if err != nil {
		return err
	}
	defer guard.Release()

	doc, err := s.store.Read(userID)
	if err != nil {
		return fmt.Errorf("reading user document: %w", err)
	}
	if _, ok := doc.Get(slug); !ok {
		return fmt.Errorf("resource %q for user %q: %w", resourceName, userID, ErrNotFound)
	}

	doc.Delete(slug)
	if err := s.store.Write(userID, doc); err != nil {
		return fmt.Errorf("writing user document: %w", err)
	}

	if err := s.audit.Append(Event{Action: ActionDelete, Resource: name, User: userID}); err != nil {
		return fmt.Errorf("recording audit event: %w", err)
	}

	s.logger.Info("resource deleted", "user", userID, "resource", name)
	return nil
}

// ListResources returns the user's resource display names in document
// order. A user without a document has no resources.
func (s *ResourceService) ListResources(userID string) ([]string, error) {
	if err := s.validator.CheckUserID(userID); err != nil {
		return nil, err
	}

	s.locker.WaitUntilClear(userID, s.timeout)

	doc, err := s.store.Read(userID)
	if err != nil {
		return nil, fmt.Errorf("reading user document: %w", err)
	}
	return doc.Names(), nil
}

// ListRevisions returns a resource's revision ids in creation order.
func (s *ResourceService) ListRevisions(userID, resourceName string) ([]string, error) {
	if err := s.validator.CheckUserID(userID); err != nil {
		return nil, err
	}
	_, slug, err := s.validator.CheckResourceName(resourceName)
	if err != nil {
		return nil, err
	}

	s.locker.WaitUntilClear(userID, s.timeout)

	doc, err := s.store.Read(userID)
	if err != nil {
		return nil, fmt.Errorf("reading user document: %w", err)
	}
	res, ok := doc.Get(slug)
	if !ok {
		return nil, fmt.Errorf("resource %q for user %q: %w", resourceName, userID, ErrNotFound)
	}
	ids := make([]string, len(res.Revs))
	for i, r := range res.Revs {
		ids[i] = r.ID
	}
	return ids, nil
}

// VerifyAuditLog replays the audit chain and reports whether it is
// intact.
func (s *ResourceService) VerifyAuditLog() (bool, error) {
	return s.audit.Verify()
}
