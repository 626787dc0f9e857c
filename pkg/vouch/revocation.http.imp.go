// File: revocation.http.imp.go

package vouch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

// HTTPRevocationStore is a read-only RevocationStore that fetches
// revocation lists from the subject's own domain at
// .well-known/did-revocations.json, caching each domain's list for
// cacheTTL so a burst of checks against the same issuer doesn't turn into
// a burst of outbound HTTP requests.
type HTTPRevocationStore struct {
	client   *http.Client
	cacheTTL time.Duration

	mu    sync.Mutex
	cache map[string]httpRevocationCacheEntry
}

type httpRevocationCacheEntry struct {
	records   []RevocationRecord
	fetchedAt time.Time
}

func NewHTTPRevocationStore(cacheTTL, httpTimeout time.Duration) *HTTPRevocationStore {
	if cacheTTL <= 0 {
		cacheTTL = 300 * time.Second
	}
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	return &HTTPRevocationStore{
		client:   &http.Client{Timeout: httpTimeout},
		cacheTTL: cacheTTL,
		cache:    make(map[string]httpRevocationCacheEntry),
	}
}

// extractDomain pulls the domain segment from a did:web identifier, the
// only method this store understands.
func extractDomain(identifier Identifier) (string, bool) {
	if identifier.Method() != "web" {
		return "", false
	}
	domain := identifier.Domain()
	return domain, domain != ""
}

func (s *HTTPRevocationStore) fetch(ctx context.Context, domain string) []RevocationRecord {
	url := fmt.Sprintf("https://%s/.well-known/did-revocations.json", domain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logx.Errorf("vouch: build revocation fetch request for %s: %v", domain, err)
		return nil
	}

	resp, err := s.client.Do(req)
	if err != nil {
		logx.Infof("vouch: failed to fetch revocations from %s: %v", domain, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		logx.Infof("vouch: unexpected status %d fetching revocations from %s", resp.StatusCode, domain)
		return nil
	}

	var doc wellKnownRevocationDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		logx.Infof("vouch: malformed revocation document from %s: %v", domain, err)
		return nil
	}
	return doc.Revocations
}

func (s *HTTPRevocationStore) recordsFor(ctx context.Context, domain string) []RevocationRecord {
	s.mu.Lock()
	entry, ok := s.cache[domain]
	if ok && timeNow().Sub(entry.fetchedAt) < s.cacheTTL {
		s.mu.Unlock()
		return entry.records
	}
	s.mu.Unlock()

	records := s.fetch(ctx, domain)

	s.mu.Lock()
	s.cache[domain] = httpRevocationCacheEntry{records: records, fetchedAt: timeNow()}
	s.mu.Unlock()

	return records
}

func (s *HTTPRevocationStore) IsRevoked(ctx context.Context, identifier Identifier) (bool, error) {
	domain, ok := extractDomain(identifier)
	if !ok {
		return false, nil
	}
	now := unixNow()
	for _, record := range s.recordsFor(ctx, domain) {
		if record.Identifier == identifier && isEffective(record, now) {
			return true, nil
		}
	}
	return false, nil
}

func (s *HTTPRevocationStore) Get(ctx context.Context, identifier Identifier) (*RevocationRecord, error) {
	domain, ok := extractDomain(identifier)
	if !ok {
		return nil, nil
	}
	for _, record := range s.recordsFor(ctx, domain) {
		if record.Identifier == identifier {
			r := record
			return &r, nil
		}
	}
	return nil, nil
}

func (s *HTTPRevocationStore) List(_ context.Context) ([]RevocationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []RevocationRecord
	for _, entry := range s.cache {
		out = append(out, entry.records...)
	}
	return out, nil
}

func (s *HTTPRevocationStore) Revoke(_ context.Context, _ RevocationRecord) error {
	return fmt.Errorf("%w: HTTP revocation store is read-only", ErrStoreUnavailable)
}

func (s *HTTPRevocationStore) Reinstate(_ context.Context, _ Identifier) (bool, error) {
	return false, fmt.Errorf("%w: HTTP revocation store is read-only", ErrStoreUnavailable)
}
