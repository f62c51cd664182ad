package adminauth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// DefaultJWKSTTL is how long a fetched key set is trusted.
const DefaultJWKSTTL = time.Hour

// jwksCache caches one key set
type jwksCache struct {
	keys    jwk.Set
	expires time.Time
}

// JWKSManager fetches and caches the admin issuer's signing keys
type JWKSManager struct {
	cache  map[string]*jwksCache
	mu     sync.RWMutex
	ttl    time.Duration
	client *http.Client
	now    func() time.Time
}

// NewJWKSManager creates a new JWKS manager
func NewJWKSManager(ttl time.Duration) *JWKSManager {
	if ttl <= 0 {
		ttl = DefaultJWKSTTL
	}
	return &JWKSManager{
		cache:  make(map[string]*jwksCache),
		ttl:    ttl,
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
	}
}

// GetJWKS retrieves the key set at jwksURL, with caching
func (m *JWKSManager) GetJWKS(ctx context.Context, jwksURL string) (jwk.Set, error) {
	m.mu.RLock()
	cache, exists := m.cache[jwksURL]
	m.mu.RUnlock()

	if exists && m.now().Before(cache.expires) {
		return cache.keys, nil
	}

	keys, err := m.fetchJWKS(ctx, jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	m.mu.Lock()
	m.cache[jwksURL] = &jwksCache{
		keys:    keys,
		expires: m.now().Add(m.ttl),
	}
	m.mu.Unlock()

	return keys, nil
}

// Invalidate drops the cached key set so the next lookup refetches it.
func (m *JWKSManager) Invalidate(jwksURL string) {
	m.mu.Lock()
	delete(m.cache, jwksURL)
	m.mu.Unlock()
}

func (m *JWKSManager) fetchJWKS(ctx context.Context, jwksURL string) (jwk.Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read JWKS response: %w", err)
	}

	keys, err := jwk.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}

	return keys, nil
}
