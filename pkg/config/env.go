package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Environment variables read by FromEnv.
const (
	EnvChain       = "CALAMUS_CHAIN"
	EnvTestnet     = "CALAMUS_TESTNET"
	EnvRPCAddr     = "CALAMUS_RPC_ADDR"
	EnvSubgraphURL = "CALAMUS_SUBGRAPH_URL"
	EnvAPIURL      = "CALAMUS_API_URL"
	EnvCovalentKey = "CALAMUS_COVALENT_KEY"
	EnvPrivateKey  = "CALAMUS_PRIVATE_KEY"
	EnvDebug       = "CALAMUS_DEBUG"
)

// FromEnv builds a Config from CALAMUS_* environment variables. The given
// dotenv files are loaded first (".env" when none is given); a missing file
// is not an error and variables already set in the environment win.
// The returned config is not validated.
func FromEnv(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				zap.L().Debug("dotenv file not found", zap.String("file", f))
				continue
			}
			return nil, err
		}
	}

	cfg := &Config{
		Chain:       os.Getenv(EnvChain),
		RPCAddr:     os.Getenv(EnvRPCAddr),
		SubgraphURL: os.Getenv(EnvSubgraphURL),
		APIURL:      os.Getenv(EnvAPIURL),
		CovalentKey: os.Getenv(EnvCovalentKey),
		PrivateKey:  os.Getenv(EnvPrivateKey),
	}

	var err error
	if cfg.Testnet, err = envBool(EnvTestnet); err != nil {
		return nil, err
	}
	if cfg.Debug, err = envBool(EnvDebug); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envBool(name string) (bool, error) {
	v := os.Getenv(name)
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}
