package evm

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// revertError mimics the JSON-RPC error geth returns for a reverted call.
type revertError struct{}

func (revertError) Error() string  { return "execution reverted" }
func (revertError) ErrorCode() int { return 3 }

// emptyCaller answers every call with no data, as an account without code does.
type emptyCaller struct{}

func (emptyCaller) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, nil
}

func (emptyCaller) BlockNumber(context.Context) (uint64, error) { return 1, nil }

type callHandler func(method string, args []interface{}, block *big.Int) ([]interface{}, error)

type contractStub struct {
	abi     abi.ABI
	handler callHandler
}

// fakeChain answers eth_call by decoding calldata with the contract ABI and
// packing whatever the stub handler returns.
type fakeChain struct {
	mu        sync.Mutex
	head      uint64
	contracts map[common.Address]contractStub
	calls     map[string]int
	blocks    []*big.Int
}

func newFakeChain(head uint64) *fakeChain {
	return &fakeChain{
		head:      head,
		contracts: make(map[common.Address]contractStub),
		calls:     make(map[string]int),
	}
}

func (f *fakeChain) deploy(addr common.Address, contract abi.ABI, handler callHandler) {
	f.contracts[addr] = contractStub{abi: contract, handler: handler}
}

func (f *fakeChain) BlockNumber(context.Context) (uint64, error) {
	return f.head, nil
}

func (f *fakeChain) CallContract(_ context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	stub, ok := f.contracts[*msg.To]
	if !ok {
		return nil, revertError{}
	}
	method, err := stub.abi.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.calls[method.Name]++
	f.blocks = append(f.blocks, block)
	f.mu.Unlock()

	outs, err := stub.handler(method.Name, args, block)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(outs...)
}

func (f *fakeChain) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

type fakePair struct {
	address  common.Address
	token0   common.Address
	token1   common.Address
	reserve0 *big.Int
	reserve1 *big.Int
}

func (f *fakeChain) deployFactory(factory common.Address, pairs ...fakePair) {
	f.deploy(factory, FactoryABI, func(method string, args []interface{}, _ *big.Int) ([]interface{}, error) {
		switch method {
		case "allPairsLength":
			return []interface{}{big.NewInt(int64(len(pairs)))}, nil
		case "allPairs":
			i := args[0].(*big.Int).Int64()
			return []interface{}{pairs[i].address}, nil
		case "getPair":
			a, b := args[0].(common.Address), args[1].(common.Address)
			for _, p := range pairs {
				if (p.token0 == a && p.token1 == b) || (p.token0 == b && p.token1 == a) {
					return []interface{}{p.address}, nil
				}
			}
			return []interface{}{common.Address{}}, nil
		}
		return nil, fmt.Errorf("unexpected %s", method)
	})

	for _, p := range pairs {
		f.deploy(p.address, PairABI, func(method string, _ []interface{}, _ *big.Int) ([]interface{}, error) {
			switch method {
			case "token0":
				return []interface{}{p.token0}, nil
			case "token1":
				return []interface{}{p.token1}, nil
			case "getReserves":
				return []interface{}{p.reserve0, p.reserve1, uint32(1700000000)}, nil
			}
			return nil, fmt.Errorf("unexpected %s", method)
		})
	}
}

func (f *fakeChain) deployToken(token common.Address, decimals uint8) {
	f.deploy(token, ERC20ABI, func(string, []interface{}, *big.Int) ([]interface{}, error) {
		return []interface{}{decimals}, nil
	})
}
