package client

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"unipool_backend/internal/app/port"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const fallbackGasLimit = 300_000

// PoolTxClient implements port.PoolWriter. It signs with a locally held key
// and observes success only through the mined receipt; the contract write
// surface returns nothing directly.
type PoolTxClient struct {
	pool           *PoolClient
	privateKey     *ecdsa.PrivateKey
	address        common.Address
	chainID        *big.Int
	confirmTimeout time.Duration
	logger         port.Logger
}

// NewPoolTxClient creates a writer over an existing pool client.
func NewPoolTxClient(pool *PoolClient, privateKeyHex string, confirmTimeout time.Duration, l port.Logger) (*PoolTxClient, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid signer private key: %w", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("error casting public key to ECDSA")
	}

	return &PoolTxClient{
		pool:           pool,
		privateKey:     privateKey,
		address:        crypto.PubkeyToAddress(*publicKey),
		chainID:        new(big.Int).SetUint64(pool.Deployment().ChainID),
		confirmTimeout: confirmTimeout,
		logger:         l,
	}, nil
}

// Owner returns the address the writer signs for.
func (c *PoolTxClient) Owner() string {
	return c.address.Hex()
}

// Approve submits an allowance of amount for the pool on the stable asset.
func (c *PoolTxClient) Approve(ctx context.Context, amount *big.Int) (string, error) {
	poolAddr := common.HexToAddress(c.pool.Deployment().PoolAddress)
	callData, err := parsedERC20ABI.Pack("approve", poolAddr, amount)
	if err != nil {
		return "", fmt.Errorf("failed to pack approve call: %w", err)
	}
	return c.submit(ctx, common.HexToAddress(c.pool.Deployment().StableAddress), callData)
}

// Invest submits an invest of amount (stable-asset raw units) into the pool.
func (c *PoolTxClient) Invest(ctx context.Context, amount *big.Int) (string, error) {
	callData, err := parsedPoolABI.Pack("invest", amount)
	if err != nil {
		return "", fmt.Errorf("failed to pack invest call: %w", err)
	}
	return c.submit(ctx, common.HexToAddress(c.pool.Deployment().PoolAddress), callData)
}

// Withdraw submits a withdrawal of basisPoints (10000 = the full position).
func (c *PoolTxClient) Withdraw(ctx context.Context, basisPoints uint64) (string, error) {
	callData, err := parsedPoolABI.Pack("withdraw", new(big.Int).SetUint64(basisPoints))
	if err != nil {
		return "", fmt.Errorf("failed to pack withdraw call: %w", err)
	}
	return c.submit(ctx, common.HexToAddress(c.pool.Deployment().PoolAddress), callData)
}

func (c *PoolTxClient) submit(ctx context.Context, to common.Address, callData []byte) (string, error) {
	ethClient := c.pool.EthClient()

	nonce, err := ethClient.PendingNonceAt(ctx, c.address)
	if err != nil {
		return "", fmt.Errorf("failed to get account nonce: %w", err)
	}

	gasPrice, err := ethClient.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get gas price: %w", err)
	}

	gasLimit, err := ethClient.EstimateGas(ctx, ethereum.CallMsg{
		From: c.address,
		To:   &to,
		Data: callData,
	})
	if err != nil {
		c.logger.Warn("Gas estimation failed, using fallback gas limit",
			"to", to.Hex(), "fallback", fallbackGasLimit, "error", err)
		gasLimit = fallbackGasLimit
	}

	tx := types.NewTransaction(nonce, to, big.NewInt(0), gasLimit, gasPrice, callData)

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := ethClient.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	txHash := signedTx.Hash().Hex()
	c.logger.Info("Transaction submitted", "tx_hash", txHash, "to", to.Hex(), "nonce", nonce)
	return txHash, nil
}

// WaitConfirmed blocks until the transaction is mined or the confirmation
// timeout elapses. A receipt with status 0 is reported as a revert.
func (c *PoolTxClient) WaitConfirmed(ctx context.Context, txHash string) error {
	ethClient := c.pool.EthClient()

	waitCtx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	tx, _, err := ethClient.TransactionByHash(waitCtx, common.HexToHash(txHash))
	if err != nil {
		return fmt.Errorf("failed to look up transaction %s: %w", txHash, err)
	}

	receipt, err := bind.WaitMined(waitCtx, ethClient, tx)
	if err != nil {
		return fmt.Errorf("failed to wait for transaction %s: %w", txHash, err)
	}
	if receipt.Status == 0 {
		return fmt.Errorf("transaction %s reverted in block %d", txHash, receipt.BlockNumber.Uint64())
	}

	c.logger.Info("Transaction confirmed", "tx_hash", txHash, "block", receipt.BlockNumber.Uint64())
	return nil
}
