package entity

// PoolDeployment holds the per-chain addresses and RPC endpoints of one
// Unipool deployment. Defined at the domain level so application and
// infrastructure layers share it.
type PoolDeployment struct {
	ChainID          uint64   `json:"chainId" yaml:"chainId"`
	Name             string   `json:"name" yaml:"name"`
	Identifier       string   `json:"identifier" yaml:"identifier"`
	PrimaryRPCURL    string   `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs  []string `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
	BlockExplorerURL string   `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	PoolAddress      string   `json:"poolAddress" yaml:"poolAddress"`
	StableAddress    string   `json:"stableAddress" yaml:"stableAddress"`
	StableSymbol     string   `json:"stableSymbol" yaml:"stableSymbol"`
	// StableDecimals is read from the deployment table, never assumed. The
	// historical front-ends disagreed on 6 vs 18; the asset's own decimals
	// are authoritative everywhere else.
	StableDecimals uint8 `json:"stableDecimals" yaml:"stableDecimals"`
}
