package networkdefinition

import (
	"unipool_backend/internal/app/port"
	"unipool_backend/internal/domain/entity"
)

// Predefined pool deployments
var ( //nolint:gochecknoglobals // Global for definitions
	Unichain = entity.PoolDeployment{
		ChainID:          130,
		Name:             "Unichain Mainnet",
		Identifier:       "unichain",
		PrimaryRPCURL:    "https://mainnet.unichain.org",
		FallbackRPCURLs:  []string{"https://unichain-rpc.publicnode.com", "https://unichain.drpc.org"},
		BlockExplorerURL: "https://uniscan.xyz",
		PoolAddress:      "0xc79AB5D4544E50Db86061cF34908Ea42ADc2EDda",
		StableAddress:    "0x078D782b760474a361dDA0AF3839290b0EF57AD6",
		StableSymbol:     "USDC",
		StableDecimals:   6,
	}
	Ethereum = entity.PoolDeployment{
		ChainID:          1,
		Name:             "Ethereum Mainnet",
		Identifier:       "ethereum",
		PrimaryRPCURL:    "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
		BlockExplorerURL: "https://etherscan.io",
		PoolAddress:      "0x742d35Cc6634C0532925a3b8D400a83b7b8C1B21",
		StableAddress:    "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		StableSymbol:     "USDC",
		StableDecimals:   6,
	}
	Sepolia = entity.PoolDeployment{
		ChainID:          11155111,
		Name:             "Sepolia Testnet",
		Identifier:       "sepolia",
		PrimaryRPCURL:    "https://ethereum-sepolia-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.sepolia.org"},
		BlockExplorerURL: "https://sepolia.etherscan.io",
		PoolAddress:      "0x8c7C8b1f6c64BbF2c4b6d3BDE1eC5c50b6ee1D27",
		StableAddress:    "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238",
		StableSymbol:     "USDC",
		StableDecimals:   6,
	}
)

// DeploymentProvider provides the supported pool deployments.
type DeploymentProvider struct {
	logger      port.Logger
	deployments map[uint64]entity.PoolDeployment
}

// NewDeploymentProvider creates a provider over the predefined deployments.
func NewDeploymentProvider(l port.Logger) *DeploymentProvider {
	p := &DeploymentProvider{
		logger:      l,
		deployments: make(map[uint64]entity.PoolDeployment),
	}
	for _, d := range []entity.PoolDeployment{Unichain, Ethereum, Sepolia} {
		p.deployments[d.ChainID] = d
	}
	if l != nil {
		l.Info("Pool deployment table initialized", "count", len(p.deployments))
	}
	return p
}

// All returns every known deployment.
func (p *DeploymentProvider) All() []entity.PoolDeployment {
	out := make([]entity.PoolDeployment, 0, len(p.deployments))
	for _, d := range p.deployments {
		out = append(out, d)
	}
	return out
}

// ByChainID returns the deployment for chainID, and false when the chain is
// not supported.
func (p *DeploymentProvider) ByChainID(chainID uint64) (entity.PoolDeployment, bool) {
	d, ok := p.deployments[chainID]
	return d, ok
}
