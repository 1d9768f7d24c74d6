package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Lllllllleong/recordexport/internal/models"
)

// Reference policy names accepted in configuration.
const (
	PolicySigned = "signed"
	PolicyPublic = "public"
)

// BlobStore persists artifacts.
type BlobStore interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
}

// URLSigner is implemented by blob stores that can issue time-limited links.
type URLSigner interface {
	SignURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// PublicURLer is implemented by blob stores whose objects have a stable URL.
type PublicURLer interface {
	PublicURL(key string) string
}

// Reference is a retrieval link for a stored artifact. A zero ExpiresAt
// means the link does not expire.
type Reference struct {
	URL       string
	ExpiresAt time.Time
}

// Expires reports whether the link is time-limited.
func (r Reference) Expires() bool { return !r.ExpiresAt.IsZero() }

// ReferencePolicy produces the retrieval link announced for an artifact.
type ReferencePolicy interface {
	Reference(ctx context.Context, key string, now time.Time) (Reference, error)
}

// SignedPolicy issues links that expire TTL after the reference is made.
type SignedPolicy struct {
	Signer URLSigner
	TTL    time.Duration
}

func (p SignedPolicy) Reference(ctx context.Context, key string, now time.Time) (Reference, error) {
	url, err := p.Signer.SignURL(ctx, key, p.TTL)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: signing %s: %w", models.ErrArtifactReference, key, err)
	}
	return Reference{URL: url, ExpiresAt: now.Add(p.TTL)}, nil
}

// PublicPolicy announces the permanent URL of the artifact.
type PublicPolicy struct {
	Store PublicURLer
}

func (p PublicPolicy) Reference(_ context.Context, key string, _ time.Time) (Reference, error) {
	return Reference{URL: p.Store.PublicURL(key)}, nil
}

// NewReferencePolicy selects a policy by name. The blob store must offer
// the capability the policy needs.
func NewReferencePolicy(name string, store BlobStore, ttl time.Duration) (ReferencePolicy, error) {
	switch name {
	case PolicySigned:
		signer, ok := store.(URLSigner)
		if !ok {
			return nil, &models.ConfigError{Invalid: []string{"URL_POLICY (blob store cannot sign URLs)"}}
		}
		if ttl <= 0 {
			return nil, &models.ConfigError{Invalid: []string{"SIGNED_URL_TTL"}}
		}
		return SignedPolicy{Signer: signer, TTL: ttl}, nil
	case PolicyPublic:
		pub, ok := store.(PublicURLer)
		if !ok {
			return nil, &models.ConfigError{Invalid: []string{"URL_POLICY (blob store has no public URLs)"}}
		}
		return PublicPolicy{Store: pub}, nil
	}
	return nil, &models.ConfigError{Invalid: []string{"URL_POLICY"}}
}
