package http

import (
	"context"
	"errors"
	"fmt"
	gohttp "net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/price-oracle/internal/config"
	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/http/httputil"
	"github.com/hxuan190/price-oracle/internal/http/middlewares"
	"github.com/hxuan190/price-oracle/internal/oracle"
)

const (
	API_VERSION  = "v1"
	HTTP_SERVICE = "http-service"
)

// PriceOracle is the oracle surface served over HTTP.
type PriceOracle interface {
	GetCoinPrices(ctx context.Context, inputs, quotes []common.Address, selector domain.VenueSelector) ([]domain.PriceResult, error)
	CalcRoute(ctx context.Context, src, dst common.Address) (*domain.Route, error)
	CalcRouteOn(ctx context.Context, src, dst common.Address, venue domain.Venue) (*domain.Route, error)
	ListPools(ctx context.Context, venue domain.Venue) ([]*domain.Pool, error)
	FindPool(ctx context.Context, tokenA, tokenB common.Address, venue domain.Venue) (*domain.Pool, error)
}

type HTTPService struct {
	container.BaseDIInstance

	oracle      PriceOracle
	rateLimiter *middlewares.RateLimiter
	server      *gohttp.Server
	conf        *config.GeneralConfig

	handlers []httputil.IHttpHandler
}

func (svc *HTTPService) ID() string {
	return HTTP_SERVICE
}

func (svc *HTTPService) Start() error {
	svc.server = &gohttp.Server{
		Addr:         svc.conf.HTTPHost + ":" + svc.conf.HTTPPort,
		Handler:      svc.Engine(),
		ReadTimeout:  svc.conf.ReadTimeout,
		WriteTimeout: svc.conf.WriteTimeout,
	}
	log.Info().Str("host", svc.conf.HTTPHost).Str("port", svc.conf.HTTPPort).Msg("http server started")

	if err := svc.server.ListenAndServe(); err != nil && err != gohttp.ErrServerClosed {
		return err
	}

	return nil
}

// Engine builds the gin router with middlewares, infra routes and API handlers.
func (svc *HTTPService) Engine() *gin.Engine {
	if svc.conf.Env != config.DevEnv {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConf := cors.DefaultConfig()
	corsConf.AllowAllOrigins = true
	r.Use(cors.New(corsConf))

	r.Use(middlewares.MetricsMiddleware())
	r.Use(svc.rateLimiter.RateLimitMiddleware())

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(gohttp.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("api")
	pub := api.Group(API_VERSION)
	priv := api.Group(API_VERSION)

	admin := api.Group(fmt.Sprintf("%s/admin", API_VERSION))

	httputil.MountAll(svc.handlers, pub, priv, admin)
	return r
}

func (svc *HTTPService) Configure(c container.IContainer) error {
	svc.conf = c.GetConfig(config.GENERAL_CONFIG_KEY).(*config.GeneralConfig)
	if svc.conf == nil {
		return errors.New("invalid server config")
	}

	svc.init(c.Instance(oracle.ORACLE_SERVICE).(*oracle.Service))
	return nil
}

func (svc *HTTPService) init(o PriceOracle) {
	svc.oracle = o
	svc.rateLimiter = middlewares.NewRateLimiter(svc.conf.RateLimit, svc.conf.RateBurst)

	svc.handlers = []httputil.IHttpHandler{
		NewPriceHandler(svc.oracle),
		NewRouteHandler(svc.oracle),
		NewPoolHandler(svc.oracle),
	}
}

func (svc *HTTPService) Stop() error {
	if svc.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), svc.conf.ShutdownTimeout)
	defer cancel()

	if err := svc.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to stop http server")
		return err
	}
	log.Info().Msg("http server stopped gracefully")
	return nil
}

func parseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid token address %q", raw)
	}
	return common.HexToAddress(raw), nil
}

func parseAddresses(raw []string) ([]common.Address, error) {
	out := make([]common.Address, 0, len(raw))
	for _, s := range raw {
		addr, err := parseAddress(s)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

func hexList(addrs []common.Address) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.Hex()
	}
	return out
}
