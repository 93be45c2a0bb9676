package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/price-oracle/internal/adapters/evm"
	"github.com/hxuan190/price-oracle/internal/adapters/memory"
	"github.com/hxuan190/price-oracle/internal/adapters/persistence"
	"github.com/hxuan190/price-oracle/internal/config"
	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/services"
	"github.com/hxuan190/price-oracle/internal/services/market"
)

const ORACLE_SERVICE = "oracle-service"

type Service struct {
	container.BaseDIInstance
	logger *services.ServiceLogger

	oracleConf *config.OracleConfig
	storeConf  *config.StoreConfig
	rpcConf    *config.RPCConfig

	storage *persistence.Storage
	client  *ethclient.Client

	reader *market.Reader
	oracle *Oracle
}

func (svc *Service) ID() string {
	return ORACLE_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	oracleConf, ok := c.GetConfig(config.ORACLE_CONFIG_KEY).(*config.OracleConfig)
	if !ok || oracleConf == nil {
		return errors.New("invalid oracle config")
	}
	storeConf, ok := c.GetConfig(config.STORE_CONFIG_KEY).(*config.StoreConfig)
	if !ok || storeConf == nil {
		return errors.New("invalid store config")
	}
	rpcConf, ok := c.GetConfig(config.RPC_CONFIG_KEY).(*config.RPCConfig)
	if !ok || rpcConf == nil {
		return errors.New("invalid rpc config")
	}
	return svc.setup(oracleConf, storeConf, rpcConf)
}

// setup wires pool sources, quoters and the router for the configured pool source.
func (svc *Service) setup(oracleConf *config.OracleConfig, storeConf *config.StoreConfig, rpcConf *config.RPCConfig) (err error) {
	defer func() {
		if err != nil {
			svc.release()
		}
	}()

	svc.logger = services.NewServiceLogger(svc)
	svc.oracleConf = oracleConf
	svc.storeConf = storeConf
	svc.rpcConf = rpcConf
	svc.reader = market.NewReader()

	var (
		meta   market.TokenMetadata
		prices market.PriceSource = memory.NewRateSource()
	)

	if rpcConf.RPCUrl != "" {
		client, err := evm.Dial(context.Background(), rpcConf.RPCUrl)
		if err != nil {
			return err
		}
		svc.client = client
		if rpcConf.OneSplit != (common.Address{}) {
			prices = evm.NewOneSplitSource(client, rpcConf.OneSplit, rpcConf.CallTimeout)
		}
	}

	switch storeConf.PoolSource {
	case config.PoolSourceRPC:
		if err := rpcConf.Validate(); err != nil {
			return err
		}
		factories := make(map[domain.Venue]common.Address)
		if rpcConf.InternalFactory != (common.Address{}) {
			factories[domain.VenueInternal] = rpcConf.InternalFactory
		}
		if rpcConf.UniswapFactory != (common.Address{}) {
			factories[domain.VenueUniswap] = rpcConf.UniswapFactory
		}
		factorySrc, err := evm.NewFactorySource(svc.client, factories, evm.DefaultMaxPairs, rpcConf.CallTimeout)
		if err != nil {
			return err
		}
		svc.reader.Register(factorySrc, factorySrc.Venues()...)

		pairs := make([][2]common.Address, len(rpcConf.AggregatorPairs))
		for i, p := range rpcConf.AggregatorPairs {
			pairs[i] = [2]common.Address{p.TokenA, p.TokenB}
		}
		svc.reader.Register(evm.NewListedPairs(pairs), domain.VenueAggregator)

		decimalsReader, err := evm.NewDecimalsReader(svc.client, rpcConf.DecimalsCacheSize, rpcConf.CallTimeout)
		if err != nil {
			return err
		}
		meta = decimalsReader

	default:
		storage, err := persistence.NewStorage(storeConf.DBPath)
		if err != nil {
			return err
		}
		svc.storage = storage
		svc.reader.Register(storage, domain.AllVenues...)
		meta = storage
	}

	o, err := NewFromConfig(svc.reader, meta, prices, oracleConf)
	if err != nil {
		return err
	}
	o.SetLogger(svc.logger.Component("oracle"))
	svc.oracle = o
	return nil
}

func (svc *Service) Start() error {
	if svc.storage == nil {
		svc.logger.Info().Str("source", svc.storeConf.PoolSource).Msg("reading pools from chain")
		return nil
	}
	count, err := svc.storage.GetPoolCount()
	if err != nil {
		return err
	}
	svc.logger.Info().Int("pools", count).Str("path", svc.storeConf.DBPath).Msg("reading pools from store")
	return nil
}

func (svc *Service) Stop() error {
	return svc.release()
}

// release closes the rpc client and the store; both are nil afterwards.
func (svc *Service) release() error {
	if svc.client != nil {
		svc.client.Close()
		svc.client = nil
	}
	if svc.storage == nil {
		return nil
	}
	err := svc.storage.Close()
	svc.storage = nil
	if err != nil {
		svc.logger.Error().Err(err).Msg("failed to close storage")
	}
	return err
}

func (svc *Service) GetCoinPrices(ctx context.Context, inputs, quotes []common.Address, selector domain.VenueSelector) ([]domain.PriceResult, error) {
	return svc.oracle.GetCoinPrices(ctx, inputs, quotes, selector)
}

func (svc *Service) CalcRoute(ctx context.Context, src, dst common.Address) (*domain.Route, error) {
	return svc.oracle.CalcRoute(ctx, src, dst)
}

func (svc *Service) CalcRouteOn(ctx context.Context, src, dst common.Address, venue domain.Venue) (*domain.Route, error) {
	return svc.oracle.CalcRouteOn(ctx, src, dst, venue)
}

// ListPools returns a snapshot of venue's pools. Unconfigured venues list as empty.
func (svc *Service) ListPools(ctx context.Context, venue domain.Venue) ([]*domain.Pool, error) {
	if !venue.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnknownVenue, venue)
	}
	snap, err := svc.reader.Snapshot(ctx, venue)
	if errors.Is(err, market.ErrVenueNotConfigured) {
		return []*domain.Pool{}, nil
	}
	if err != nil {
		return nil, err
	}
	return snap.Pools(), nil
}

// FindPool returns the pool trading the pair on venue. Unconfigured venues have no pools.
func (svc *Service) FindPool(ctx context.Context, tokenA, tokenB common.Address, venue domain.Venue) (*domain.Pool, error) {
	if !venue.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnknownVenue, venue)
	}
	pool, err := svc.reader.FindPool(ctx, tokenA, tokenB, venue)
	if errors.Is(err, market.ErrVenueNotConfigured) {
		return nil, fmt.Errorf("%w: %v", market.ErrPoolNotFound, err)
	}
	return pool, err
}

func (svc *Service) Oracle() *Oracle {
	return svc.oracle
}
