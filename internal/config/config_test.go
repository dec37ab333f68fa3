package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const minimal = `
pool_address: "0x00000000000000000000000000000000000000f0"
owner: "0x00000000000000000000000000000000000000ee"
assets:
  - address: "0x000000000000000000000000000000000000000a"
    symbol: AAA
  - address: "0x000000000000000000000000000000000000000b"
    symbol: BBB
`

func TestParse_Fallbacks(t *testing.T) {
	t.Parallel()

	cfg, err := Parse(strings.NewReader(minimal))
	require.NoError(t, err)

	require.Equal(t, ":1337", cfg.ListenAddr)
	require.Equal(t, 5*time.Second, cfg.GraceTimeout)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.Equal(t, 5*time.Second, cfg.ReadHeaderTimeout)
	require.Equal(t, 5*time.Second, cfg.Chain.CallTimeout)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, StorageFile, cfg.Storage.Driver)
	require.Equal(t, "data", cfg.Storage.Path)
	require.Empty(t, cfg.Identities())
	require.Equal(t, []common.Address{
		common.HexToAddress("0x000000000000000000000000000000000000000a"),
		common.HexToAddress("0x000000000000000000000000000000000000000b"),
	}, cfg.AssetAddresses())
}

func TestParse_Full(t *testing.T) {
	t.Parallel()

	cfg, err := Parse(strings.NewReader(minimal + `
listen_addr: ":8080"
request_timeout: 2s
log_level: debug
faucet:
  enabled: true
  grants:
    - owner: "0x00000000000000000000000000000000000a11ce"
      asset: "0x000000000000000000000000000000000000000a"
      amount: "1000000000000000000000"
storage:
  driver: postgres
  dsn: postgres://localhost/ammpool
chain:
  rpc_url: http://localhost:8545
  call_timeout: 750ms
auth:
  tokens:
    - address: "0x00000000000000000000000000000000000a11ce"
      token: alice-secret
    - address: "0x00000000000000000000000000000000000000ee"
      token: owner-secret
`))
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.ListenAddr)
	require.Equal(t, 2*time.Second, cfg.RequestTimeout)
	require.Equal(t, "debug", cfg.LogLevel)
	require.True(t, cfg.Faucet.Enabled)
	require.Len(t, cfg.Faucet.Grants, 1)
	require.Equal(t, StoragePostgres, cfg.Storage.Driver)
	require.Equal(t, 750*time.Millisecond, cfg.Chain.CallTimeout)
	require.Equal(t, map[string]common.Address{
		"alice-secret": common.HexToAddress("0x00000000000000000000000000000000000a11ce"),
		"owner-secret": common.HexToAddress("0x00000000000000000000000000000000000000ee"),
	}, cfg.Identities())
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ``},
		{"bad pool", strings.Replace(minimal, "0x00000000000000000000000000000000000000f0", "pool", 1)},
		{"no assets", "pool_address: \"0x00000000000000000000000000000000000000f0\"\nowner: \"0x00000000000000000000000000000000000000ee\"\n"},
		{"unknown driver", minimal + "storage:\n  driver: redis\n"},
		{"postgres without dsn", minimal + "storage:\n  driver: postgres\n"},
		{"bad grant", minimal + "faucet:\n  grants:\n    - owner: \"0x00000000000000000000000000000000000a11ce\"\n      asset: \"0x000000000000000000000000000000000000000a\"\n      amount: \"-1\"\n"},
		{"malformed", "pool_address: [1, 2"},
		{"rpc url without scheme", minimal + "chain:\n  rpc_url: localhost:8545\n"},
		{"rpc url with unsupported scheme", minimal + "chain:\n  rpc_url: ftp://node:8545\n"},
		{"rpc url without host", minimal + "chain:\n  rpc_url: \"http://\"\n"},
		{"token with bad address", minimal + "auth:\n  tokens:\n    - address: alice\n      token: s\n"},
		{"empty token", minimal + "auth:\n  tokens:\n    - address: \"0x00000000000000000000000000000000000a11ce\"\n"},
		{"duplicate token", minimal + "auth:\n  tokens:\n    - address: \"0x00000000000000000000000000000000000a11ce\"\n      token: s\n    - address: \"0x00000000000000000000000000000000000000ee\"\n      token: s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(strings.NewReader(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Assets, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
