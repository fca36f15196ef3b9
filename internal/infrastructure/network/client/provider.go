package client

import (
	"fmt"
	"sync"
	"time"

	"unipool_backend/internal/app/port"
	"unipool_backend/internal/domain/entity"
	"unipool_backend/internal/infrastructure/configloader"

	networkdefinition "unipool_backend/internal/infrastructure/network/definition"
)

// Provider implements port.ChainClientProvider. Clients are dialed lazily per
// chain and reused; an unknown chain id short-circuits with
// entity.ErrUnsupportedChain before any network activity.
type Provider struct {
	deployments *networkdefinition.DeploymentProvider
	cfg         *configloader.Config
	logger      port.Logger

	mu      sync.Mutex
	pools   map[uint64]*PoolClient
	writers map[uint64]*PoolTxClient
}

// NewProvider creates a provider over the deployment table.
func NewProvider(deployments *networkdefinition.DeploymentProvider, cfg *configloader.Config, l port.Logger) *Provider {
	return &Provider{
		deployments: deployments,
		cfg:         cfg,
		logger:      l,
		pools:       make(map[uint64]*PoolClient),
		writers:     make(map[uint64]*PoolTxClient),
	}
}

// Reader returns the pool reader for chainID, dialing on first use.
func (p *Provider) Reader(chainID uint64) (port.PoolReader, error) {
	return p.poolClient(chainID)
}

// Resolver returns the asset metadata resolver for chainID.
func (p *Provider) Resolver(chainID uint64) (port.AssetResolver, error) {
	pool, err := p.poolClient(chainID)
	if err != nil {
		return nil, err
	}
	return NewAssetResolver(pool, p.logger), nil
}

// Writer returns the transaction writer for chainID. It requires a signer key
// in the configuration; a read-only instance never builds a writer.
func (p *Provider) Writer(chainID uint64) (port.PoolWriter, error) {
	if p.cfg.Chain.SignerPrivateKey == "" {
		return nil, fmt.Errorf("no signer key configured, transactions are disabled")
	}

	pool, err := p.poolClient(chainID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if writer, ok := p.writers[chainID]; ok {
		return writer, nil
	}

	confirmTimeout := time.Duration(p.cfg.Transactions.ConfirmTimeoutSeconds) * time.Second
	writer, err := NewPoolTxClient(pool, p.cfg.Chain.SignerPrivateKey, confirmTimeout, p.logger)
	if err != nil {
		return nil, err
	}
	p.writers[chainID] = writer
	p.logger.Info("Transaction writer initialized", "chain_id", chainID, "owner", writer.Owner())
	return writer, nil
}

func (p *Provider) poolClient(chainID uint64) (*PoolClient, error) {
	deployment, ok := p.deployments.ByChainID(chainID)
	if !ok {
		return nil, fmt.Errorf("chain %d: %w", chainID, entity.ErrUnsupportedChain)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if pool, ok := p.pools[chainID]; ok {
		return pool, nil
	}

	if p.cfg.Chain.RPCURLOverride != "" {
		deployment.PrimaryRPCURL = p.cfg.Chain.RPCURLOverride
		deployment.FallbackRPCURLs = nil
	}

	opts := PoolClientOptions{
		ConnectionTimeout: time.Duration(p.cfg.Chain.ConnectionTimeoutSeconds) * time.Second,
		RPCCallTimeout:    time.Duration(p.cfg.Chain.RPCCallTimeoutSeconds) * time.Second,
		MaxRetries:        p.cfg.Chain.MaxRetries,
		RetryDelay:        time.Duration(p.cfg.Chain.RetryDelayMs) * time.Millisecond,
		RateLimit:         p.cfg.Chain.RateLimit,
		BurstLimit:        p.cfg.Chain.BurstLimit,
	}

	pool, err := NewPoolClient(deployment, opts, p.logger)
	if err != nil {
		return nil, err
	}
	p.pools[chainID] = pool
	p.logger.Info("Pool client connected", "chain_id", chainID, "network", deployment.Name)
	return pool, nil
}
