package client

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Unipool view/write surface, minimal part used by this service.
const poolABI = `[
{"type":"function","name":"userShares","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
{"type":"function","name":"getUserShareValue","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
{"type":"function","name":"userInvestedAmount","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
{"type":"function","name":"getPortfolioValue","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
{"type":"function","name":"totalShares","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
{"type":"function","name":"portfolioAssets","inputs":[],"outputs":[{"name":"","type":"address[]"}],"stateMutability":"view"},
{"type":"function","name":"assetBalances","inputs":[{"name":"","type":"address[]"}],"outputs":[{"name":"","type":"uint256[]"}],"stateMutability":"view"},
{"type":"function","name":"invest","inputs":[{"name":"amount","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
{"type":"function","name":"withdraw","inputs":[{"name":"basisPoints","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"}
]`

// ERC20 ABI minimal part for metadata, balances and allowances.
const erc20ABI = `[
{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[{"name":"_owner","type":"address"},{"name":"_spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":false,"inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

var (
	parsedPoolABI  abi.ABI
	parsedERC20ABI abi.ABI
	parseABIsOnce  sync.Once
)

func initParsedABIs() {
	parseABIsOnce.Do(func() {
		var err error
		parsedPoolABI, err = abi.JSON(strings.NewReader(poolABI))
		if err != nil {
			// Critical error during initialization, panic is appropriate
			panic(fmt.Sprintf("failed to parse pool ABI: %v", err))
		}
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
	})
}
