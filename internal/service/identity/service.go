// Package identity resolves the acting user's id and role for the
// current caller. Every appointment query and booking is scoped to the
// identity produced here.
package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/barberhq/booking-api/internal/cache"
	"github.com/barberhq/booking-api/internal/model"
	"github.com/barberhq/booking-api/pkg/auth"
	apperrors "github.com/barberhq/booking-api/pkg/errors"
	"github.com/barberhq/booking-api/pkg/logger"
)

// ProfileFetcher is the remote "who am I" lookup, tried last. The remote
// side validates the token itself, so this works even for tokens this
// process cannot decode locally.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, token string) (*model.Identity, error)
}

type Service struct {
	store    cache.Store
	jwtSvc   auth.JWTService
	profiles ProfileFetcher
	logger   *logger.Logger
}

func NewService(store cache.Store, jwtSvc auth.JWTService, profiles ProfileFetcher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewLogger(nil)
	}
	return &Service{
		store:    store,
		jwtSvc:   jwtSvc,
		profiles: profiles,
		logger:   log,
	}
}

// Resolve produces the caller's identity, trying in order: the cached
// identity blob, a local decode of the bearer token, then the remote
// profile endpoint (persisting its answer for future calls). If all
// three fail the caller must surface an authentication error; no
// operation proceeds with a null actor.
func (s *Service) Resolve(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		return nil, apperrors.NewIdentityUnavailable(errors.New("no token provided"))
	}

	key := cacheKey(token)

	if s.store != nil {
		var cached model.Identity
		found, err := s.store.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Error(err, "identity cache read failed")
		} else if found && cached.ActorID != uuid.Nil {
			return &cached, nil
		}
	}

	var decodeErr error
	if s.jwtSvc != nil {
		claims, err := s.jwtSvc.DecodeToken(token)
		if err == nil {
			identity := &model.Identity{ActorID: claims.UserID, Role: claims.Role}
			s.persist(ctx, key, identity)
			return identity, nil
		}
		decodeErr = err
	}

	if s.profiles != nil {
		identity, err := s.profiles.FetchProfile(ctx, token)
		if err == nil {
			s.persist(ctx, key, identity)
			return identity, nil
		}
		return nil, apperrors.NewIdentityUnavailable(fmt.Errorf("profile lookup failed: %w", err))
	}

	return nil, apperrors.NewIdentityUnavailable(decodeErr)
}

func (s *Service) persist(ctx context.Context, key string, identity *model.Identity) {
	if s.store == nil {
		return
	}
	if err := s.store.Set(ctx, key, identity, cache.IdentityTTL); err != nil {
		s.logger.Error(err, "failed to persist resolved identity")
	}
}

// cacheKey fingerprints the token so raw credentials never become cache keys.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "identity:" + hex.EncodeToString(sum[:8])
}
