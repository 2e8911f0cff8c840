package service

import (
	"time"

	"github.com/pulsesocial/pulse/internal/domain"
	"github.com/pulsesocial/pulse/pkg/jwtx"
)

// TokenService issues access/refresh token pairs. Issuance is pure CPU work:
// it has no store dependency and cannot fail due to external state.
type TokenService struct {
	Codec      jwtx.Codec
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issue builds and signs two independent claim sets from the same identity,
// differing only in token use and TTL. Claims are immutable once signed;
// refreshing later produces a brand-new pair, never a mutation of this one.
func (s *TokenService) Issue(identity domain.Identity) (domain.TokenPair, error) {
	now := time.Now().UTC()

	access, err := s.Codec.Sign(jwtx.NewClaims(
		identity.UserID, identity.Username, identity.Email,
		jwtx.UseAccess, s.AccessTTL, s.Issuer, now,
	))
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := s.Codec.Sign(jwtx.NewClaims(
		identity.UserID, identity.Username, identity.Email,
		jwtx.UseRefresh, s.RefreshTTL, s.Issuer, now,
	))
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
