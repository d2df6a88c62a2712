package protocols

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"defolio/internal/app/port"
	"defolio/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// aavePoolABI covers the two Pool views the adapter reads.
const aavePoolABI = `[
	{"inputs":[{"name":"user","type":"address"}],"name":"getUserAccountData","outputs":[{"name":"totalCollateralBase","type":"uint256"},{"name":"totalDebtBase","type":"uint256"},{"name":"availableBorrowsBase","type":"uint256"},{"name":"currentLiquidationThreshold","type":"uint256"},{"name":"ltv","type":"uint256"},{"name":"healthFactor","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"asset","type":"address"}],"name":"getReserveData","outputs":[{"components":[{"components":[{"name":"data","type":"uint256"}],"name":"configuration","type":"tuple"},{"name":"liquidityIndex","type":"uint128"},{"name":"currentLiquidityRate","type":"uint128"},{"name":"variableBorrowIndex","type":"uint128"},{"name":"currentVariableBorrowRate","type":"uint128"},{"name":"currentStableBorrowRate","type":"uint128"},{"name":"lastUpdateTimestamp","type":"uint40"},{"name":"id","type":"uint16"},{"name":"aTokenAddress","type":"address"},{"name":"stableDebtTokenAddress","type":"address"},{"name":"variableDebtTokenAddress","type":"address"},{"name":"interestRateStrategyAddress","type":"address"},{"name":"accruedToTreasury","type":"uint128"},{"name":"unbacked","type":"uint128"},{"name":"isolationModeTotalDebt","type":"uint128"}],"name":"","type":"tuple"}],"stateMutability":"view","type":"function"}
]`

// aavePoolByChain maps chain ids to the Aave v3 Pool proxy address.
var aavePoolByChain = map[entity.ChainID]string{
	"1":     "0x87870Bca3F3fD6335C3F4ce8392D69350B4fA4E2",
	"10":    "0x794a61358D6845594F94dc1DB02A252b5b4814aD",
	"56":    "0x6807dc923806fE8Fd134338EABCA509979a7e0cB",
	"137":   "0x794a61358D6845594F94dc1DB02A252b5b4814aD",
	"8453":  "0xA238Dd80C259a72e81d7e4664a9801593F98d1c5",
	"42161": "0x794a61358D6845594F94dc1DB02A252b5b4814aD",
	"43114": "0x794a61358D6845594F94dc1DB02A252b5b4814aD",
}

// aaveReserveData mirrors the Pool.getReserveData return tuple.
type aaveReserveData struct {
	Configuration struct {
		Data *big.Int
	}
	LiquidityIndex              *big.Int
	CurrentLiquidityRate        *big.Int
	VariableBorrowIndex         *big.Int
	CurrentVariableBorrowRate   *big.Int
	CurrentStableBorrowRate     *big.Int
	LastUpdateTimestamp         *big.Int
	Id                          uint16
	ATokenAddress               common.Address
	StableDebtTokenAddress      common.Address
	VariableDebtTokenAddress    common.Address
	InterestRateStrategyAddress common.Address
	AccruedToTreasury           *big.Int
	Unbacked                    *big.Int
	IsolationModeTotalDebt      *big.Int
}

var (
	aaveABIOnce   sync.Once
	parsedAaveABI abi.ABI
)

func aaveABI() abi.ABI {
	aaveABIOnce.Do(func() {
		var err error
		parsedAaveABI, err = abi.JSON(strings.NewReader(aavePoolABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse Aave Pool ABI: %v", err))
		}
	})
	return parsedAaveABI
}

// AaveV3Adapter reads lending positions from Aave v3 Pool contracts. It
// scans the chain's wrapped native token and configured stablecoins as
// candidate reserves.
type AaveV3Adapter struct{}

// NewAaveV3Adapter builds the adapter.
func NewAaveV3Adapter() *AaveV3Adapter {
	return &AaveV3Adapter{}
}

func (a *AaveV3Adapter) Info() entity.ProtocolInfo {
	return entity.ProtocolInfo{
		ID:           "aave-v3",
		Name:         "Aave V3",
		Category:     entity.CategoryLending,
		Website:      "https://aave.com",
		PassiveYield: true,
	}
}

func (a *AaveV3Adapter) SupportedChains() []entity.ChainID {
	chains := make([]entity.ChainID, 0, len(aavePoolByChain))
	for id := range aavePoolByChain {
		chains = append(chains, id)
	}
	return chains
}

func (a *AaveV3Adapter) HasPositions(ctx context.Context, client port.ChainClient, address string, chainID entity.ChainID) bool {
	pool, ok := aavePoolByChain[chainID]
	if !ok {
		return false
	}
	_, totalDebt, _, err := a.accountData(ctx, client, pool, address)
	if err != nil {
		return false
	}
	if totalDebt.Sign() > 0 {
		return true
	}
	return hasPositionsViaGet(ctx, a, client, address, chainID)
}

// candidateReserve is one asset the adapter probes on a chain.
type candidateReserve struct {
	address  string
	symbol   string
	decimals uint8
}

func candidateReserves(ctx context.Context, client port.ChainClient) []candidateReserve {
	cfg := client.Config()
	var reserves []candidateReserve
	if cfg.WrappedNativeAddress != "" {
		reserves = append(reserves, candidateReserve{
			address:  cfg.WrappedNativeAddress,
			symbol:   "W" + cfg.Native.Symbol,
			decimals: cfg.Native.Decimals,
		})
	}
	for symbol, address := range cfg.Stablecoins {
		// Decimals vary per chain for the same stable (USDT is 6 on
		// Ethereum, 18 on BSC); read them from the contract.
		md := safeTokenMetadata(ctx, client, address)
		reserves = append(reserves, candidateReserve{address: address, symbol: symbol, decimals: md.Decimals})
	}
	return reserves
}

func (a *AaveV3Adapter) GetPositions(ctx context.Context, client port.ChainClient, address string, chainID entity.ChainID) ([]entity.Position, error) {
	pool, ok := aavePoolByChain[chainID]
	if !ok {
		return nil, nil
	}
	reserves := candidateReserves(ctx, client)
	if len(reserves) == 0 {
		return nil, nil
	}

	// Reserve lookups that fail are skipped: one delisted asset must not
	// hide the rest of the account.
	type reserveState struct {
		reserve candidateReserve
		data    aaveReserveData
	}
	var states []reserveState
	var requests []entity.BalanceRequest
	for _, reserve := range reserves {
		data, err := a.reserveData(ctx, client, pool, reserve.address)
		if err != nil {
			continue
		}
		if data.ATokenAddress == (common.Address{}) {
			continue
		}
		states = append(states, reserveState{reserve: reserve, data: data})
		requests = append(requests,
			entity.BalanceRequest{
				Type:          entity.TokenBalanceRequest,
				WalletAddress: address,
				TokenAddress:  data.ATokenAddress.Hex(),
				TokenSymbol:   "a" + reserve.symbol,
				TokenDecimals: reserve.decimals,
			},
			entity.BalanceRequest{
				Type:          entity.TokenBalanceRequest,
				WalletAddress: address,
				TokenAddress:  data.VariableDebtTokenAddress.Hex(),
				TokenSymbol:   "variableDebt" + reserve.symbol,
				TokenDecimals: reserve.decimals,
			},
		)
	}
	if len(states) == 0 {
		return nil, nil
	}

	results, err := client.Balances(ctx, requests)
	if err != nil {
		return nil, fmt.Errorf("aave v3 balances on chain %s: %w", chainID, err)
	}

	healthFactor := a.healthFactor(ctx, client, pool, address)

	var positions []entity.Position
	for i, state := range states {
		supplyResult := results[2*i]
		debtResult := results[2*i+1]

		if supplyResult.Error == nil && supplyResult.Balance != nil && supplyResult.Balance.Sign() > 0 {
			positions = append(positions, entity.Position{
				Protocol: a.Info(),
				ChainID:  chainID,
				Type:     entity.PositionSupply,
				Tokens: []entity.TokenAmount{
					newTokenAmount(state.reserve.address, state.reserve.symbol, state.reserve.decimals, supplyResult.Balance),
				},
				Yield: &entity.YieldInfo{
					APY: rayRateToAPY(state.data.CurrentLiquidityRate),
					APR: rayRateToAPR(state.data.CurrentLiquidityRate),
				},
			})
		}
		if debtResult.Error == nil && debtResult.Balance != nil && debtResult.Balance.Sign() > 0 {
			positions = append(positions, entity.Position{
				Protocol: a.Info(),
				ChainID:  chainID,
				Type:     entity.PositionBorrow,
				Tokens: []entity.TokenAmount{
					newTokenAmount(state.reserve.address, state.reserve.symbol, state.reserve.decimals, debtResult.Balance),
				},
				Yield: &entity.YieldInfo{
					APY: rayRateToAPY(state.data.CurrentVariableBorrowRate),
					APR: rayRateToAPR(state.data.CurrentVariableBorrowRate),
				},
				HealthFactor: healthFactor,
			})
		}
	}
	return positions, nil
}

func (a *AaveV3Adapter) GetYieldRates(ctx context.Context, client port.ChainClient, chainID entity.ChainID) ([]entity.YieldRate, error) {
	pool, ok := aavePoolByChain[chainID]
	if !ok {
		return nil, nil
	}
	var rates []entity.YieldRate
	for _, reserve := range candidateReserves(ctx, client) {
		data, err := a.reserveData(ctx, client, pool, reserve.address)
		if err != nil || data.ATokenAddress == (common.Address{}) {
			continue
		}
		rates = append(rates, entity.YieldRate{
			Protocol: a.Info().ID,
			ChainID:  chainID,
			Asset:    reserve.address,
			Symbol:   reserve.symbol,
			Type:     entity.PositionSupply,
			APY:      rayRateToAPY(data.CurrentLiquidityRate),
			APR:      rayRateToAPR(data.CurrentLiquidityRate),
		})
	}
	return rates, nil
}

func (a *AaveV3Adapter) reserveData(ctx context.Context, client port.ChainClient, pool, asset string) (aaveReserveData, error) {
	input, err := aaveABI().Pack("getReserveData", common.HexToAddress(asset))
	if err != nil {
		return aaveReserveData{}, fmt.Errorf("pack getReserveData: %w", err)
	}
	raw, err := client.CallContract(ctx, pool, input)
	if err != nil {
		return aaveReserveData{}, fmt.Errorf("getReserveData(%s): %w", asset, err)
	}
	unpacked, err := aaveABI().Unpack("getReserveData", raw)
	if err != nil || len(unpacked) == 0 {
		return aaveReserveData{}, fmt.Errorf("decode getReserveData(%s): %w", asset, err)
	}
	data := *abi.ConvertType(unpacked[0], new(aaveReserveData)).(*aaveReserveData)
	return data, nil
}

func (a *AaveV3Adapter) accountData(ctx context.Context, client port.ChainClient, pool, user string) (totalCollateral, totalDebt, healthFactor *big.Int, err error) {
	input, err := aaveABI().Pack("getUserAccountData", common.HexToAddress(user))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("pack getUserAccountData: %w", err)
	}
	raw, err := client.CallContract(ctx, pool, input)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("getUserAccountData(%s): %w", user, err)
	}
	unpacked, err := aaveABI().Unpack("getUserAccountData", raw)
	if err != nil || len(unpacked) < 6 {
		return nil, nil, nil, fmt.Errorf("decode getUserAccountData(%s): %w", user, err)
	}
	totalCollateral, _ = unpacked[0].(*big.Int)
	totalDebt, _ = unpacked[1].(*big.Int)
	healthFactor, _ = unpacked[5].(*big.Int)
	if totalCollateral == nil || totalDebt == nil || healthFactor == nil {
		return nil, nil, nil, fmt.Errorf("getUserAccountData(%s) returned unexpected types", user)
	}
	return totalCollateral, totalDebt, healthFactor, nil
}

// healthFactor returns the account health factor as a float, or nil when
// the account has no debt (Aave reports max uint256) or the call fails.
func (a *AaveV3Adapter) healthFactor(ctx context.Context, client port.ChainClient, pool, user string) *float64 {
	_, totalDebt, hf, err := a.accountData(ctx, client, pool, user)
	if err != nil || totalDebt.Sign() == 0 {
		return nil
	}
	value, _ := new(big.Float).Quo(new(big.Float).SetInt(hf), big.NewFloat(1e18)).Float64()
	return &value
}

var _ port.ProtocolAdapter = (*AaveV3Adapter)(nil)
