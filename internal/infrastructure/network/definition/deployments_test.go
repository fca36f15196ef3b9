package networkdefinition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeploymentProviderLookup(t *testing.T) {
	p := NewDeploymentProvider(nil)

	d, ok := p.ByChainID(130)
	require.True(t, ok)
	assert.Equal(t, "unichain", d.Identifier)
	assert.Equal(t, "0xc79AB5D4544E50Db86061cF34908Ea42ADc2EDda", d.PoolAddress)
	assert.Equal(t, uint8(6), d.StableDecimals)

	_, ok = p.ByChainID(999_999)
	assert.False(t, ok, "unknown chain id must not resolve")
}

func TestDeploymentProviderAll(t *testing.T) {
	p := NewDeploymentProvider(nil)
	all := p.All()
	assert.Len(t, all, 3)
}
