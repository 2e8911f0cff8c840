package service

import (
	"context"
	"errors"

	"github.com/pulsesocial/pulse/internal/domain"
	"github.com/pulsesocial/pulse/internal/store"
	"github.com/pulsesocial/pulse/pkg/cryptox"
	"github.com/pulsesocial/pulse/pkg/idx"
	"github.com/pulsesocial/pulse/pkg/jwtx"
	"github.com/pulsesocial/pulse/pkg/slogx"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// login failures stay uniform.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrInvalidRefresh covers expired, tampered, and orphaned refresh
	// tokens alike; the distinct reason is logged, never returned.
	ErrInvalidRefresh = errors.New("invalid_refresh_token")
)

// AuthService implements registration, login, and the refresh state machine
// on top of the password hasher, token codec, and the user store.
type AuthService struct {
	Store  store.Store
	Tokens *TokenService
}

// Register creates a credential and issues the first token pair. Uniqueness
// conflicts surface as store.ErrEmailTaken / store.ErrUsernameTaken for the
// boundary to report.
func (s *AuthService) Register(
	ctx context.Context,
	username, email, password string,
) (domain.User, domain.TokenPair, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		DisplayName:  username,
		PasswordHash: hash,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	// Re-read so the caller sees the store-assigned timestamps.
	created, err := s.Store.Users().GetUserByID(ctx, user.ID)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	pair, err := s.Tokens.Issue(identityOf(created))
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	return created, pair, nil
}

// Login verifies the credential and issues a fresh token pair. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(
	ctx context.Context,
	email, password string,
) (domain.User, domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Hash anyway so the response time doesn't reveal whether the
			// account exists.
			_ = cryptox.VerifyPassword(password, dummyHash)
			return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.User{}, domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("login password verification failed", "user_id", user.ID)
		return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.Tokens.Issue(identityOf(user))
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a brand-new access/refresh
// pair. The subject must still exist in the store; the old refresh token is
// not invalidated and stays independently valid until its own expiry, which
// is what lets multiple devices refresh from the same token.
func (s *AuthService) Refresh(
	ctx context.Context,
	refreshToken string,
) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Tokens.Codec.Verify(refreshToken)
	if err != nil {
		l.Info("refresh token rejected", "err", err)
		return domain.TokenPair{}, ErrInvalidRefresh
	}
	if err := claims.ValidateUse(jwtx.UseRefresh); err != nil {
		l.Info("refresh token rejected", "err", err)
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	// Subjects are ULIDs; reject anything else before touching the store.
	if _, err := idx.Parse(claims.Subject); err != nil {
		l.Info("refresh token rejected, subject is not an id", "err", err)
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	// Confirm the subject still exists. Tokens are stateless, so a deleted
	// account is only caught here.
	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("refresh rejected, subject no longer exists", "user_id", claims.Subject)
			return domain.TokenPair{}, ErrInvalidRefresh
		}
		return domain.TokenPair{}, err
	}

	return s.Tokens.Issue(identityOf(user))
}

// ChangePassword re-verifies the current password before storing a hash of
// the new one. Outstanding tokens stay valid; there is no revocation state
// to sweep.
func (s *AuthService) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword string,
) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(currentPassword, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.Store.Users().UpdatePasswordHash(ctx, userID, hash)
}

func identityOf(u domain.User) domain.Identity {
	return domain.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// dummyHash is a real Argon2id record for a throwaway password, used to keep
// login timing flat when the email is unknown.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
