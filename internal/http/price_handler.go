package http

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/price-oracle/internal/common"
	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/http/httputil"
)

type PriceHandler struct {
	oracle PriceOracle
}

func NewPriceHandler(o PriceOracle) *PriceHandler {
	return &PriceHandler{oracle: o}
}

func (h *PriceHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.POST("", h.postPrices)
	pub.GET("", h.getPrices)
}

func (h *PriceHandler) Root() string {
	return "/prices"
}

// PriceRequest asks for the price of every input token in one of the quote tokens
type PriceRequest struct {
	// Tokens to price, as hex addresses. Results come back in the same order.
	InputTokens []string `json:"inputTokens" example:"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"`

	// Acceptable quote tokens in preference order
	QuoteTokens []string `json:"quoteTokens" example:"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"`

	// Venue selector: 0 internal, 1 uniswap, 2 aggregator, 3 best
	Venue *int `json:"venue" binding:"required" example:"3"`
}

// PriceInfo is the price of one input token
type PriceInfo struct {
	// Input token address
	Token string `json:"token" example:"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"`

	// Quote token the price is expressed in; empty when unavailable
	Quote string `json:"quote,omitempty" example:"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"`

	// Venue that produced the price; empty when unavailable
	Venue string `json:"venue,omitempty" example:"internal"`

	// Units of quote token per unit of input token, fixed point with 18 decimals.
	// "0" means no price is available.
	Price string `json:"price" example:"3012450000000000000000"`

	// False when no quote token was reachable
	Available bool `json:"available" example:"true"`

	// Tokens walked from input to quote
	Path []string `json:"path,omitempty"`
}

// PriceResponse holds one PriceInfo per requested input token
type PriceResponse struct {
	Selector string      `json:"selector" example:"best"`
	Prices   []PriceInfo `json:"prices"`
}

// @Summary Get token prices
// @Description Prices each input token in the first reachable quote token, routing through AMM pools
// @Description on the selected venue. Prices are fixed point with 18 decimals regardless of token precision.
// @Description Unreachable tokens return price "0" with available=false.
// @Tags price
// @Accept json
// @Produce json
// @Param request body PriceRequest true "Tokens and venue selector"
// @Success 200 {object} httputil.Response{data=PriceResponse}
// @Failure 400 {object} httputil.Response "Malformed address or invalid venue selector"
// @Failure 422 {object} httputil.Response "Token metadata missing or out of range"
// @Router /api/v1/prices [post]
func (h *PriceHandler) postPrices(c *gin.Context) {
	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}
	selector, err := domain.ParseVenueSelector(*req.Venue)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	h.respond(c, req.InputTokens, req.QuoteTokens, selector)
}

// @Summary Get token prices
// @Description Query-string form of POST /api/v1/prices
// @Tags price
// @Produce json
// @Param inputs query string true "Comma separated input token addresses"
// @Param quotes query string true "Comma separated quote token addresses in preference order"
// @Param venue query string false "internal, uniswap, aggregator, best or 0-3" default(best)
// @Success 200 {object} httputil.Response{data=PriceResponse}
// @Failure 400 {object} httputil.Response
// @Router /api/v1/prices [get]
func (h *PriceHandler) getPrices(c *gin.Context) {
	selector, err := domain.ParseVenueSelectorName(c.DefaultQuery("venue", domain.SelectBest.String()))
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	h.respond(c, splitQuery(c.Query("inputs")), splitQuery(c.Query("quotes")), selector)
}

func (h *PriceHandler) respond(c *gin.Context, rawInputs, rawQuotes []string, selector domain.VenueSelector) {
	if len(rawInputs) > common.MaxPriceTokens || len(rawQuotes) > common.MaxPriceTokens {
		httputil.BadRequest(c, fmt.Sprintf("at most %d input and %d quote tokens", common.MaxPriceTokens, common.MaxPriceTokens))
		return
	}
	inputs, err := parseAddresses(rawInputs)
	if err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}
	quotes, err := parseAddresses(rawQuotes)
	if err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), common.RequestTimeout)
	defer cancel()

	results, err := h.oracle.GetCoinPrices(ctx, inputs, quotes, selector)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	prices := make([]PriceInfo, len(results))
	for i, r := range results {
		prices[i] = toPriceInfo(r)
	}
	httputil.Success(c, PriceResponse{Selector: selector.String(), Prices: prices})
}

func toPriceInfo(r domain.PriceResult) PriceInfo {
	if r.IsZero() {
		return PriceInfo{Token: r.Token.Hex(), Price: "0"}
	}
	return PriceInfo{
		Token:     r.Token.Hex(),
		Quote:     r.Quote.Hex(),
		Venue:     r.Venue.String(),
		Price:     r.Price.String(),
		Available: true,
		Path:      hexList(r.Path),
	}
}

func splitQuery(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
