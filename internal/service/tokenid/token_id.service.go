package tokenid

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/krobus00/derivex-service/internal/repository"
	"github.com/krobus00/derivex-service/internal/service/exchange"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyToken    = errors.New("token is required")
	ErrLoadTokenIDs  = errors.New("failed to load token ids")
	ErrAssignTokenID = errors.New("failed to assign token id")
	ErrLookupTokenID = errors.New("failed to look up token id")
)

// TokenIDService keeps the registry's auxiliary id index filled from the
// token_ids table, with redis as a read-through cache in front of it. The
// index is best-effort: nothing here checks that the token is registered.
type TokenIDService struct {
	exchangeService *exchange.ExchangeService
	tokenIDRepo     *repository.TokenIDRepository
	tokenIDCache    *repository.TokenIDCacheRepository
}

func NewTokenIDService(exchangeService *exchange.ExchangeService, tokenIDRepo *repository.TokenIDRepository, tokenIDCache *repository.TokenIDCacheRepository) *TokenIDService {
	return &TokenIDService{
		exchangeService: exchangeService,
		tokenIDRepo:     tokenIDRepo,
		tokenIDCache:    tokenIDCache,
	}
}

func (s *TokenIDService) Load(ctx context.Context) (int, error) {
	tokenIDs, err := s.tokenIDRepo.GetAll(ctx)
	if err != nil {
		logrus.Error(err)
		return 0, fmt.Errorf("%w: %v", ErrLoadTokenIDs, err)
	}

	for _, tokenID := range tokenIDs {
		s.exchangeService.AssignTokenID(tokenID.ID, tokenID.Token)
		s.cache(ctx, tokenID.ID, tokenID.Token)
	}

	logrus.WithField("count", len(tokenIDs)).Info("token ids loaded")

	return len(tokenIDs), nil
}

func (s *TokenIDService) Assign(ctx context.Context, id uint64, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}

	if err := s.tokenIDRepo.Upsert(ctx, id, token); err != nil {
		logrus.Error(err)
		return fmt.Errorf("%w: %v", ErrAssignTokenID, err)
	}

	s.exchangeService.AssignTokenID(id, token)
	s.cache(ctx, id, token)

	return nil
}

// Lookup resolves id from the in-memory index first, then redis, then
// postgres. Hits from the slower tiers are written back to the faster ones.
func (s *TokenIDService) Lookup(ctx context.Context, id uint64) (string, bool, error) {
	if token, ok := s.exchangeService.GetTokenByID(id); ok {
		return token, true, nil
	}

	if s.tokenIDCache != nil {
		token, ok, err := s.tokenIDCache.Get(ctx, id)
		if err != nil {
			logrus.WithField("id", id).Warnf("token id cache read failed: %v", err)
		}
		if ok {
			s.exchangeService.AssignTokenID(id, token)
			return token, true, nil
		}
	}

	tokenID, err := s.tokenIDRepo.GetByID(ctx, id)
	if err != nil {
		logrus.Error(err)
		return "", false, fmt.Errorf("%w: %v", ErrLookupTokenID, err)
	}
	if tokenID == nil {
		return "", false, nil
	}

	s.exchangeService.AssignTokenID(tokenID.ID, tokenID.Token)
	s.cache(ctx, tokenID.ID, tokenID.Token)

	return tokenID.Token, true, nil
}

func (s *TokenIDService) cache(ctx context.Context, id uint64, token string) {
	if s.tokenIDCache == nil {
		return
	}

	if err := s.tokenIDCache.Set(ctx, id, token); err != nil {
		logrus.WithField("id", id).Warnf("token id cache write failed: %v", err)
	}
}
