package persistence

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/hxuan190/price-oracle/internal/domain"
)

// Fixture is the JSON interchange format for a pool universe.
type Fixture struct {
	Tokens []StoredToken `json:"tokens"`
	Pools  []StoredPool  `json:"pools"`
}

// DecodeFixture parses a fixture document. Unlike LoadAllPools it rejects the
// whole document on the first malformed record.
func DecodeFixture(data []byte) ([]domain.Token, []*domain.Pool, error) {
	var fx Fixture
	if err := sonic.Unmarshal(data, &fx); err != nil {
		return nil, nil, fmt.Errorf("decode fixture: %w", err)
	}

	tokens := make([]domain.Token, 0, len(fx.Tokens))
	for i := range fx.Tokens {
		token, err := StoredToToken(&fx.Tokens[i])
		if err != nil {
			return nil, nil, fmt.Errorf("token %d: %w", i, err)
		}
		tokens = append(tokens, token)
	}

	pools := make([]*domain.Pool, 0, len(fx.Pools))
	for i := range fx.Pools {
		pool, err := StoredToPool(&fx.Pools[i])
		if err != nil {
			return nil, nil, fmt.Errorf("pool %d: %w", i, err)
		}
		pools = append(pools, pool)
	}
	return tokens, pools, nil
}

func EncodeFixture(tokens []domain.Token, pools []*domain.Pool) ([]byte, error) {
	fx := Fixture{
		Tokens: make([]StoredToken, len(tokens)),
		Pools:  make([]StoredPool, len(pools)),
	}
	for i, t := range tokens {
		fx.Tokens[i] = *TokenToStored(t)
	}
	for i, p := range pools {
		fx.Pools[i] = *PoolToStored(p)
	}
	return sonic.ConfigStd.MarshalIndent(fx, "", "  ")
}
