package persistence

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"slices"

	boltdb "github.com/andrew-solarstorm/bolt-db"
	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/services/market"
)

const (
	PoolsBucket  = "pools"
	TokensBucket = "tokens"

	DefaultDBPath = "./data/oracle.db"
)

type StoredPool struct {
	Address  string `json:"address"`
	Venue    string `json:"venue"`
	TokenA   string `json:"tokenA"`
	TokenB   string `json:"tokenB"`
	ReserveA string `json:"reserveA"`
	ReserveB string `json:"reserveB"`
}

type StoredToken struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol,omitempty"`
	Decimals uint8  `json:"decimals"`
}

type Storage struct {
	db     *boltdb.BoltDatabase
	dbPath string
}

func NewStorage(dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database dir: %w", err)
	}

	db := boltdb.NewBoltDatabase(dbPath)
	if db == nil {
		return nil, fmt.Errorf("failed to open database at %s", dbPath)
	}

	log.Info().Str("path", dbPath).Msg("[oracleStorage] opened database")

	return &Storage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) SavePool(pool *domain.Pool) error {
	data, err := sonic.Marshal(PoolToStored(pool))
	if err != nil {
		return fmt.Errorf("failed to marshal pool: %w", err)
	}
	return s.db.Set(PoolsBucket, []byte(pool.Address.Hex()), data)
}

func (s *Storage) SavePoolBatch(pools []*domain.Pool) error {
	if len(pools) == 0 {
		return nil
	}

	batch := s.db.NewBatch()
	for _, pool := range pools {
		data, err := sonic.Marshal(PoolToStored(pool))
		if err != nil {
			return fmt.Errorf("failed to marshal pool %s: %w", pool.Address.Hex(), err)
		}

		value := data
		op := &boltdb.WriteOperation{
			Bucket: []byte(PoolsBucket),
			Key:    []byte(pool.Address.Hex()),
			Value:  &value,
			Op:     boltdb.OpSet,
		}
		if err := batch.Add(op); err != nil {
			return fmt.Errorf("failed to add pool %s to batch: %w", pool.Address.Hex(), err)
		}
	}

	if err := batch.Execute(); err != nil {
		log.Error().Err(err).Int("count", len(pools)).Msg("[oracleStorage] FAILED to execute pool batch")
		return err
	}

	log.Info().Int("count", len(pools)).Msg("[oracleStorage] saved pool batch")
	return nil
}

func (s *Storage) SaveToken(token domain.Token) error {
	data, err := sonic.Marshal(TokenToStored(token))
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	return s.db.Set(TokensBucket, []byte(token.Address.Hex()), data)
}

func (s *Storage) SaveTokenBatch(tokens []domain.Token) error {
	if len(tokens) == 0 {
		return nil
	}

	batch := s.db.NewBatch()
	for _, token := range tokens {
		data, err := sonic.Marshal(TokenToStored(token))
		if err != nil {
			return fmt.Errorf("failed to marshal token %s: %w", token.Address.Hex(), err)
		}

		value := data
		op := &boltdb.WriteOperation{
			Bucket: []byte(TokensBucket),
			Key:    []byte(token.Address.Hex()),
			Value:  &value,
			Op:     boltdb.OpSet,
		}
		if err := batch.Add(op); err != nil {
			return fmt.Errorf("failed to add token %s to batch: %w", token.Address.Hex(), err)
		}
	}

	if err := batch.Execute(); err != nil {
		log.Error().Err(err).Int("count", len(tokens)).Msg("[oracleStorage] FAILED to execute token batch")
		return err
	}
	return nil
}

// LoadAllPools skips records that fail to decode and logs a summary.
func (s *Storage) LoadAllPools() ([]*domain.Pool, error) {
	data, err := s.db.List(PoolsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}

	pools := make([]*domain.Pool, 0, len(data))
	unmarshalFailed := 0
	conversionFailed := 0

	for address, value := range data {
		var stored StoredPool
		if err := sonic.Unmarshal(value, &stored); err != nil {
			log.Error().Str("address", address).Err(err).Msg("[oracleStorage] failed to unmarshal pool, skipping")
			unmarshalFailed++
			continue
		}

		pool, err := StoredToPool(&stored)
		if err != nil {
			log.Error().Str("address", address).Err(err).Msg("[oracleStorage] failed to convert stored pool, skipping")
			conversionFailed++
			continue
		}
		pools = append(pools, pool)
	}

	if unmarshalFailed > 0 || conversionFailed > 0 {
		log.Error().
			Int("total_in_db", len(data)).
			Int("loaded", len(pools)).
			Int("unmarshal_failed", unmarshalFailed).
			Int("conversion_failed", conversionFailed).
			Msg("[oracleStorage] pool loading completed with errors")
	} else {
		log.Debug().
			Int("total_in_db", len(data)).
			Int("loaded", len(pools)).
			Msg("[oracleStorage] pool loading completed successfully")
	}

	return pools, nil
}

func (s *Storage) LoadAllTokens() ([]domain.Token, error) {
	data, err := s.db.List(TokensBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	tokens := make([]domain.Token, 0, len(data))
	for address, value := range data {
		var stored StoredToken
		if err := sonic.Unmarshal(value, &stored); err != nil {
			log.Warn().Str("address", address).Err(err).Msg("[oracleStorage] failed to unmarshal token, skipping")
			continue
		}
		token, err := StoredToToken(&stored)
		if err != nil {
			log.Warn().Str("address", address).Err(err).Msg("[oracleStorage] invalid token, skipping")
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// Pools reads the venue's pools from disk on every call, ordered by address.
func (s *Storage) Pools(_ context.Context, venue domain.Venue) ([]*domain.Pool, error) {
	all, err := s.LoadAllPools()
	if err != nil {
		return nil, err
	}
	pools := make([]*domain.Pool, 0, len(all))
	for _, p := range all {
		if p.Venue == venue {
			pools = append(pools, p)
		}
	}
	slices.SortFunc(pools, func(a, b *domain.Pool) int {
		return bytes.Compare(a.Address.Bytes(), b.Address.Bytes())
	})
	return pools, nil
}

func (s *Storage) FindPool(ctx context.Context, tokenA, tokenB common.Address, venue domain.Venue) (*domain.Pool, error) {
	pools, err := s.Pools(ctx, venue)
	if err != nil {
		return nil, err
	}
	for _, p := range pools {
		if tokenA != tokenB && p.Has(tokenA) && p.Has(tokenB) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s on %v", market.ErrPoolNotFound, tokenA.Hex(), tokenB.Hex(), venue)
}

func (s *Storage) Decimals(_ context.Context, token common.Address) (uint8, error) {
	value, err := s.db.Get(TokensBucket, []byte(token.Hex()))
	if err != nil {
		return 0, fmt.Errorf("failed to read token %s: %w", token.Hex(), err)
	}
	if value == nil {
		return 0, fmt.Errorf("%w: %s", market.ErrUnknownToken, token.Hex())
	}
	var stored StoredToken
	if err := sonic.Unmarshal(value, &stored); err != nil {
		return 0, fmt.Errorf("decode token %s: %w", token.Hex(), err)
	}
	return stored.Decimals, nil
}

func (s *Storage) GetPoolCount() (int, error) {
	data, err := s.db.List(PoolsBucket)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

func PoolToStored(pool *domain.Pool) *StoredPool {
	reserveA := "0"
	reserveB := "0"
	if pool.ReserveA != nil {
		reserveA = pool.ReserveA.String()
	}
	if pool.ReserveB != nil {
		reserveB = pool.ReserveB.String()
	}

	return &StoredPool{
		Address:  pool.Address.Hex(),
		Venue:    pool.Venue.String(),
		TokenA:   pool.TokenA.Hex(),
		TokenB:   pool.TokenB.Hex(),
		ReserveA: reserveA,
		ReserveB: reserveB,
	}
}

func StoredToPool(stored *StoredPool) (*domain.Pool, error) {
	for name, addr := range map[string]string{"address": stored.Address, "tokenA": stored.TokenA, "tokenB": stored.TokenB} {
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid %s %q", name, addr)
		}
	}

	venue, err := domain.ParseVenue(stored.Venue)
	if err != nil {
		return nil, err
	}

	reserveA, ok := new(big.Int).SetString(stored.ReserveA, 10)
	if !ok || reserveA.Sign() < 0 {
		return nil, fmt.Errorf("invalid reserveA %q", stored.ReserveA)
	}
	reserveB, ok := new(big.Int).SetString(stored.ReserveB, 10)
	if !ok || reserveB.Sign() < 0 {
		return nil, fmt.Errorf("invalid reserveB %q", stored.ReserveB)
	}

	return &domain.Pool{
		Address:  common.HexToAddress(stored.Address),
		Venue:    venue,
		TokenA:   common.HexToAddress(stored.TokenA),
		TokenB:   common.HexToAddress(stored.TokenB),
		ReserveA: reserveA,
		ReserveB: reserveB,
	}, nil
}

func TokenToStored(token domain.Token) *StoredToken {
	return &StoredToken{
		Address:  token.Address.Hex(),
		Symbol:   token.Symbol,
		Decimals: token.Decimals,
	}
}

func StoredToToken(stored *StoredToken) (domain.Token, error) {
	if !common.IsHexAddress(stored.Address) {
		return domain.Token{}, fmt.Errorf("invalid address %q", stored.Address)
	}
	return domain.Token{
		Address:  common.HexToAddress(stored.Address),
		Symbol:   stored.Symbol,
		Decimals: stored.Decimals,
	}, nil
}
