package http

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/price-oracle/internal/common"
	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/http/httputil"
)

type PoolHandler struct {
	oracle PriceOracle
}

func NewPoolHandler(o PriceOracle) *PoolHandler {
	return &PoolHandler{oracle: o}
}

func (h *PoolHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("/stats", h.getStats)
	pub.GET("/list", h.listPools)
	pub.GET("/pair", h.getPair)
	pub.GET("/:address", h.getPool)
}

func (h *PoolHandler) Root() string {
	return "/pools"
}

// PoolStatsResponse contains the number of pools each venue currently exposes
type PoolStatsResponse struct {
	// Pool count keyed by venue name
	Venues map[string]int `json:"venues"`

	// Sum over all venues
	Total int `json:"total" example:"1247"`
}

// @Summary Pool statistics
// @Tags pools
// @Produce json
// @Success 200 {object} httputil.Response{data=PoolStatsResponse}
// @Router /api/v1/pools/stats [get]
func (h *PoolHandler) getStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), common.RequestTimeout)
	defer cancel()

	resp := PoolStatsResponse{Venues: make(map[string]int, len(domain.AllVenues))}
	for _, venue := range domain.AllVenues {
		pools, err := h.oracle.ListPools(ctx, venue)
		if err != nil {
			httputil.HandleError(c, err)
			return
		}
		resp.Venues[venue.String()] = len(pools)
		resp.Total += len(pools)
	}
	httputil.Success(c, resp)
}

// PoolInfo contains the state of one pool as read for this request
type PoolInfo struct {
	// Pool address
	Address string `json:"address" example:"0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc"`

	// Venue the pool belongs to
	Venue string `json:"venue" example:"uniswap"`

	// Pair tokens
	TokenA string `json:"tokenA" example:"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"`
	TokenB string `json:"tokenB" example:"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"`

	// Reserves in native token units; empty for aggregator pairs
	ReserveA string `json:"reserveA,omitempty" example:"41235009123456"`
	ReserveB string `json:"reserveB,omitempty" example:"13695412345678901234567"`
}

// PoolListResponse contains paginated list of pools of one venue
type PoolListResponse struct {
	Pools []PoolInfo `json:"pools"`

	// Total number of pools across all pages
	Total int `json:"total" example:"1247"`

	// Current page number (1-indexed)
	Page int `json:"page" example:"1"`

	// Number of pools per page (max 500)
	Limit int `json:"limit" example:"100"`

	// Total number of pages available
	Pages int `json:"pages" example:"13"`
}

// @Summary List pools
// @Tags pools
// @Produce json
// @Param venue query string true "internal, uniswap or aggregator"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size, max 500" default(100)
// @Success 200 {object} httputil.Response{data=PoolListResponse}
// @Failure 400 {object} httputil.Response
// @Router /api/v1/pools/list [get]
func (h *PoolHandler) listPools(c *gin.Context) {
	venue, err := domain.ParseVenue(c.Query("venue"))
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), common.RequestTimeout)
	defer cancel()

	allPools, err := h.oracle.ListPools(ctx, venue)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	total := len(allPools)

	pages := (total + limit - 1) / limit
	if page > pages {
		page = max(pages, 1)
	}
	offset := (page - 1) * limit
	end := offset + limit
	if end > total {
		end = total
	}

	pools := make([]PoolInfo, 0, end-offset)
	for _, pool := range allPools[offset:end] {
		pools = append(pools, toPoolInfo(pool))
	}

	httputil.Success(c, PoolListResponse{
		Pools: pools,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	})
}

// @Summary Find pool by pair
// @Tags pools
// @Produce json
// @Param tokenA query string true "First token address"
// @Param tokenB query string true "Second token address"
// @Param venue query string true "internal, uniswap or aggregator"
// @Success 200 {object} httputil.Response{data=PoolInfo}
// @Failure 400 {object} httputil.Response
// @Failure 404 {object} httputil.Response
// @Router /api/v1/pools/pair [get]
func (h *PoolHandler) getPair(c *gin.Context) {
	tokenA, err := parseAddress(c.Query("tokenA"))
	if err != nil {
		httputil.BadRequest(c, "tokenA: "+err.Error())
		return
	}
	tokenB, err := parseAddress(c.Query("tokenB"))
	if err != nil {
		httputil.BadRequest(c, "tokenB: "+err.Error())
		return
	}
	venue, err := domain.ParseVenue(c.Query("venue"))
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), common.RequestTimeout)
	defer cancel()

	pool, err := h.oracle.FindPool(ctx, tokenA, tokenB, venue)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, toPoolInfo(pool))
}

// @Summary Get pool
// @Tags pools
// @Produce json
// @Param address path string true "Pool address"
// @Success 200 {object} httputil.Response{data=PoolInfo}
// @Failure 404 {object} httputil.Response
// @Router /api/v1/pools/{address} [get]
func (h *PoolHandler) getPool(c *gin.Context) {
	address, err := parseAddress(c.Param("address"))
	if err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), common.RequestTimeout)
	defer cancel()

	for _, venue := range domain.AllVenues {
		pools, err := h.oracle.ListPools(ctx, venue)
		if err != nil {
			httputil.HandleError(c, err)
			return
		}
		for _, p := range pools {
			if p.Address == address {
				httputil.Success(c, toPoolInfo(p))
				return
			}
		}
	}
	httputil.NotFound(c, "pool not found")
}

func toPoolInfo(pool *domain.Pool) PoolInfo {
	info := PoolInfo{
		Address: pool.Address.Hex(),
		Venue:   pool.Venue.String(),
		TokenA:  pool.TokenA.Hex(),
		TokenB:  pool.TokenB.Hex(),
	}
	if pool.ReserveA != nil && pool.ReserveB != nil {
		info.ReserveA = pool.ReserveA.String()
		info.ReserveB = pool.ReserveB.String()
	}
	return info
}
