package service

import (
	"context"

	"github.com/pulsesocial/pulse/internal/domain"
	"github.com/pulsesocial/pulse/internal/store"
)

// UserService serves profile reads for callers that want the current store
// record rather than the snapshot embedded in their token.
type UserService struct {
	Store store.Store
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// UpdateDisplayName changes the user's display name and returns the updated
// record.
func (s *UserService) UpdateDisplayName(ctx context.Context, userID, displayName string) (domain.User, error) {
	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateDisplayName(ctx, userID, displayName); err != nil {
			return err
		}
		var err error
		updated, err = tx.Users().GetUserByID(ctx, userID)
		return err
	})
	return updated, err
}
