package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/price-oracle/internal/domain"
)

const sampleFixture = `{
  "tokens": [
    {"address": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "symbol": "WETH", "decimals": 18},
    {"address": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", "symbol": "USDC", "decimals": 6}
  ],
  "pools": [
    {
      "address": "0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc",
      "venue": "uniswap",
      "tokenA": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
      "tokenB": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
      "reserveA": "41235009123456",
      "reserveB": "13695412345678901234567"
    }
  ]
}`

func TestDecodeFixture(t *testing.T) {
	tokens, pools, err := DecodeFixture([]byte(sampleFixture))
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	require.Len(t, pools, 1)

	assert.Equal(t, uint8(6), tokens[1].Decimals)
	assert.Equal(t, domain.VenueUniswap, pools[0].Venue)
	assert.Equal(t, "13695412345678901234567", pools[0].ReserveB.String())
}

func TestDecodeFixture_Rejects(t *testing.T) {
	_, _, err := DecodeFixture([]byte(`{"pools": [{"address": "0x1", "venue": "uniswap"}]}`))
	assert.Error(t, err)

	_, _, err = DecodeFixture([]byte(`{"tokens": [{"address": "weth"}]}`))
	assert.Error(t, err)

	_, _, err = DecodeFixture([]byte(`not json`))
	assert.Error(t, err)
}

func TestEncodeFixtureRoundTrip(t *testing.T) {
	tokens, pools, err := DecodeFixture([]byte(sampleFixture))
	require.NoError(t, err)

	data, err := EncodeFixture(tokens, pools)
	require.NoError(t, err)

	tokens2, pools2, err := DecodeFixture(data)
	require.NoError(t, err)
	assert.Equal(t, tokens, tokens2)
	require.Len(t, pools2, 1)
	assert.Equal(t, pools[0].Address, pools2[0].Address)
	assert.Equal(t, 0, pools[0].ReserveA.Cmp(pools2[0].ReserveA))
}
