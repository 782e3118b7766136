package memory

import (
	"time"

	"gen8n-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

const oauthStateTTL = 10 * time.Minute

type OAuthStateStore struct {
	cache *cache.Cache
}

func NewOAuthStateStore() contract.OAuthStateStore {
	return &OAuthStateStore{cache: cache.New(oauthStateTTL, 5*time.Minute)}
}

func (s *OAuthStateStore) Issue(state string) {
	s.cache.Set(state, struct{}{}, cache.DefaultExpiration)
}

func (s *OAuthStateStore) Consume(state string) bool {
	if state == "" {
		return false
	}
	if _, found := s.cache.Get(state); !found {
		return false
	}
	s.cache.Delete(state)
	return true
}
