package config

import (
	"io"
	"math/big"
	"net/url"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	StorageNone     = "none"
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Asset is one asset the reference bank serves.
type Asset struct {
	Address string `yaml:"address"`
	Symbol  string `yaml:"symbol"`
}

// Grant is an initial balance credited by the reference bank on first start.
type Grant struct {
	Owner  string `yaml:"owner"`
	Asset  string `yaml:"asset"`
	Amount string `yaml:"amount"`
}

// Faucet controls the /faucet endpoint and the initial balances.
type Faucet struct {
	Enabled bool    `yaml:"enabled"`
	Grants  []Grant `yaml:"grants"`
}

type Storage struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

// Token binds a bearer token to the address it authenticates.
type Token struct {
	Address string `yaml:"address"`
	Token   string `yaml:"token"`
}

// Auth lists the bearer tokens accepted on mutating endpoints. With no tokens
// every mutating request is rejected.
type Auth struct {
	Tokens []Token `yaml:"tokens"`
}

// Chain configures a read-only check of the configured assets against an
// Ethereum node at startup. Reserves always reconcile against the reference
// bank, which is the ledger that performs transfers.
type Chain struct {
	RPCURL      string        `yaml:"rpc_url"`
	CallTimeout time.Duration `yaml:"call_timeout"`
}

// Config holds application configuration loaded from file.
type Config struct {
	ListenAddr        string        `yaml:"listen_addr"`
	GraceTimeout      time.Duration `yaml:"shutdown_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	LogLevel          string        `yaml:"log_level"`

	PoolAddress string  `yaml:"pool_address"`
	Owner       string  `yaml:"owner"`
	Assets      []Asset `yaml:"assets"`
	Faucet      Faucet  `yaml:"faucet"`
	Storage     Storage `yaml:"storage"`
	Chain       Chain   `yaml:"chain"`
	Auth        Auth    `yaml:"auth"`
}

// Load reads the config from a YAML file path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "os.Open")
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes YAML from r, applies fallbacks and validates the result.
func Parse(r io.Reader) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decoder.Decode")
	}

	// Fallbacks
	const defaultTimeout = 5 * time.Second
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":1337"
	}
	if cfg.GraceTimeout == 0 {
		cfg.GraceTimeout = defaultTimeout
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultTimeout
	}
	if cfg.ReadHeaderTimeout == 0 {
		cfg.ReadHeaderTimeout = defaultTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageFile
	}
	if cfg.Storage.Driver == StorageFile && cfg.Storage.Path == "" {
		cfg.Storage.Path = "data"
	}
	if cfg.Chain.CallTimeout == 0 {
		cfg.Chain.CallTimeout = defaultTimeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks addresses, amounts, tokens, the chain endpoint and the
// storage driver.
func (c *Config) Validate() error {
	if !common.IsHexAddress(c.PoolAddress) {
		return errors.Errorf("pool_address %q is not a hex address", c.PoolAddress)
	}
	if !common.IsHexAddress(c.Owner) {
		return errors.Errorf("owner %q is not a hex address", c.Owner)
	}
	if len(c.Assets) == 0 {
		return errors.New("at least one asset is required")
	}
	for _, a := range c.Assets {
		if !common.IsHexAddress(a.Address) {
			return errors.Errorf("asset %q is not a hex address", a.Address)
		}
	}
	for _, g := range c.Faucet.Grants {
		if !common.IsHexAddress(g.Owner) || !common.IsHexAddress(g.Asset) {
			return errors.Errorf("faucet grant %s/%s has a bad address", g.Owner, g.Asset)
		}
		if v, ok := new(big.Int).SetString(g.Amount, 10); !ok || v.Sign() < 0 {
			return errors.Errorf("faucet grant amount %q is not a non-negative integer", g.Amount)
		}
	}

	seen := make(map[string]struct{}, len(c.Auth.Tokens))
	for i, t := range c.Auth.Tokens {
		if !common.IsHexAddress(t.Address) {
			return errors.Errorf("auth token %d: address %q is not a hex address", i, t.Address)
		}
		if t.Token == "" {
			return errors.Errorf("auth token %d: token is empty", i)
		}
		if _, ok := seen[t.Token]; ok {
			return errors.Errorf("auth token %d: token is not unique", i)
		}
		seen[t.Token] = struct{}{}
	}

	if c.Chain.RPCURL != "" {
		u, err := url.Parse(c.Chain.RPCURL)
		if err != nil {
			return errors.Wrap(err, "chain.rpc_url")
		}
		switch u.Scheme {
		case "http", "https", "ws", "wss":
		default:
			return errors.Errorf("chain.rpc_url scheme %q is not http(s) or ws(s)", u.Scheme)
		}
		if u.Host == "" {
			return errors.New("chain.rpc_url has no host")
		}
	}

	switch c.Storage.Driver {
	case StorageNone, StorageFile:
	case StoragePostgres:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the postgres driver")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// Identities returns the address authenticated by each configured token.
func (c *Config) Identities() map[string]common.Address {
	out := make(map[string]common.Address, len(c.Auth.Tokens))
	for _, t := range c.Auth.Tokens {
		out[t.Token] = common.HexToAddress(t.Address)
	}
	return out
}

// AssetAddresses returns the configured asset ids.
func (c *Config) AssetAddresses() []common.Address {
	out := make([]common.Address, 0, len(c.Assets))
	for _, a := range c.Assets {
		out = append(out, common.HexToAddress(a.Address))
	}
	return out
}
