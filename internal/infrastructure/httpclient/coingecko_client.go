package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"unipool_backend/internal/app/port"
	"unipool_backend/internal/domain/entity"
	"unipool_backend/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const apiKeyHeader = "x-cg-demo-api-key"

// coinGeckoClientImpl fetches spot USD prices from the CoinGecko simple price
// endpoint. Symbols are queried in batches of maxSymbolsPerRequest and the
// response keys are normalized to lower case.
type coinGeckoClientImpl struct {
	client               *fasthttp.Client
	baseURL              string
	apiKey               string
	timeout              time.Duration
	maxSymbolsPerRequest int
	logger               *zap.Logger
}

// NewCoinGeckoClient creates a new CoinGecko price oracle client.
func NewCoinGeckoClient(baseURL, apiKey string, timeout time.Duration, maxSymbolsPerRequest int, logger *zap.Logger) port.PriceOracle {
	return &coinGeckoClientImpl{
		client:               &fasthttp.Client{},
		baseURL:              strings.TrimRight(baseURL, "/"),
		apiKey:               apiKey,
		timeout:              timeout,
		maxSymbolsPerRequest: maxSymbolsPerRequest,
		logger:               logger.Named("CoinGeckoClient"),
	}
}

// FetchPrices implements the port.PriceOracle interface. An empty id list
// returns an empty map without touching the network. Ids absent from the
// response are simply missing from the result; callers treat them as zero.
func (c *coinGeckoClientImpl) FetchPrices(ctx context.Context, priceIDs []string) (map[string]entity.PricePoint, error) {
	prices := make(map[string]entity.PricePoint)
	if len(priceIDs) == 0 {
		return prices, nil
	}

	for _, batch := range utils.BatchStrings(priceIDs, c.maxSymbolsPerRequest) {
		if err := c.fetchBatch(ctx, batch, prices); err != nil {
			return nil, err
		}
	}
	return prices, nil
}

func (c *coinGeckoClientImpl) fetchBatch(ctx context.Context, priceIDs []string, out map[string]entity.PricePoint) error {
	requestURL := fmt.Sprintf("%s/simple/price?vs_currencies=usd&symbols=%s",
		c.baseURL, url.QueryEscape(strings.Join(priceIDs, ",")))

	c.logger.Debug("Requesting prices from CoinGecko",
		zap.Int("symbolCount", len(priceIDs)))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request to CoinGecko", zap.String("url", requestURL), zap.Error(err))
			return fmt.Errorf("%w: request to %s: %v", entity.ErrPriceFetch, requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute request to CoinGecko (with default timeout)", zap.String("url", requestURL), zap.Error(err))
			return fmt.Errorf("%w: request to %s: %v", entity.ErrPriceFetch, requestURL, err)
		}
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("CoinGecko API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody))
		return fmt.Errorf("%w: CoinGecko returned status %d", entity.ErrPriceFetch, resp.StatusCode())
	}

	var parsed entity.CoinGeckoPriceResponse
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		c.logger.Error("Failed to unmarshal CoinGecko response",
			zap.ByteString("responseBody", rawBody), zap.Error(err))
		return fmt.Errorf("%w: failed to unmarshal response: %v", entity.ErrPriceFetch, err)
	}

	for key, quote := range parsed {
		id := strings.ToLower(key)
		out[id] = entity.PricePoint{
			PriceID:  id,
			PriceUSD: decimal.NewFromFloat(quote.USD),
		}
	}

	c.logger.Debug("Successfully fetched CoinGecko prices",
		zap.Int("requested", len(priceIDs)), zap.Int("received", len(parsed)))
	return nil
}
