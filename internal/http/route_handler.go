package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/price-oracle/internal/common"
	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/http/httputil"
)

type RouteHandler struct {
	oracle PriceOracle
}

func NewRouteHandler(o PriceOracle) *RouteHandler {
	return &RouteHandler{oracle: o}
}

func (h *RouteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getRoute)
}

func (h *RouteHandler) Root() string {
	return "/route"
}

type RouteRequest struct {
	From  string `form:"from" binding:"required" example:"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"`
	To    string `form:"to" binding:"required" example:"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"`
	Venue string `form:"venue" example:"internal"`
}

// HopInfo is one pool crossing of a route
type HopInfo struct {
	Pool     string `json:"pool"`
	TokenIn  string `json:"tokenIn"`
	TokenOut string `json:"tokenOut"`
}

// RouteResponse is the ordered pool sequence from source to destination
type RouteResponse struct {
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Venue       string    `json:"venue"`
	Pools       []string  `json:"pools"`
	Hops        []HopInfo `json:"hops"`
}

// @Summary Calculate route
// @Description Returns the pools a price query walks from source to destination.
// @Description An empty pool list means source and destination are the same token.
// @Tags route
// @Produce json
// @Param from query string true "Source token address"
// @Param to query string true "Destination token address"
// @Param venue query string false "internal, uniswap or aggregator; defaults to the configured route venue"
// @Success 200 {object} httputil.Response{data=RouteResponse}
// @Failure 400 {object} httputil.Response
// @Failure 404 {object} httputil.Response "No route within the hop limit"
// @Router /api/v1/route [get]
func (h *RouteHandler) getRoute(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}
	src, err := parseAddress(req.From)
	if err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}
	dst, err := parseAddress(req.To)
	if err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), common.RequestTimeout)
	defer cancel()

	var route *domain.Route
	if req.Venue == "" {
		route, err = h.oracle.CalcRoute(ctx, src, dst)
	} else {
		venue, perr := domain.ParseVenue(req.Venue)
		if perr != nil {
			httputil.HandleError(c, perr)
			return
		}
		route, err = h.oracle.CalcRouteOn(ctx, src, dst, venue)
	}
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	resp := RouteResponse{
		Source:      route.Source.Hex(),
		Destination: route.Destination.Hex(),
		Venue:       route.Venue.String(),
		Pools:       make([]string, 0, route.Len()),
		Hops:        make([]HopInfo, 0, route.Len()),
	}
	for _, hop := range route.Hops {
		resp.Pools = append(resp.Pools, hop.Pool.Address.Hex())
		resp.Hops = append(resp.Hops, HopInfo{
			Pool:     hop.Pool.Address.Hex(),
			TokenIn:  hop.TokenIn.Hex(),
			TokenOut: hop.TokenOut.Hex(),
		})
	}
	httputil.Success(c, resp)
}
