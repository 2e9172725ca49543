package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/bonder-network/bonder/bridge"
	"github.com/bonder-network/bonder/broker"
	"github.com/bonder-network/bonder/chain"
	"github.com/bonder-network/bonder/config/types"
	"github.com/bonder-network/bonder/exporter"
	"github.com/bonder-network/bonder/log"
	"github.com/bonder-network/bonder/notifier"
	"github.com/bonder-network/bonder/syncwatcher"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

const (
	// FlagCfg is the flag for cfg.
	FlagCfg = "cfg"
	// FlagComponents is the flag for components.
	FlagComponents = "components"
	// FlagSaveConfigPath is the flag to save the final configuration file
	FlagSaveConfigPath = "save-config-path"
	// FlagMinConfig is the flag to only print the mandatory vars
	FlagMinConfig = "min-config"

	EnvVarPrefix       = "BONDER"
	ConfigType         = "toml"
	SaveConfigFileName = "bonder_config.toml"

	DefaultCreationFilePermissions = os.FileMode(0600)
)

var (
	ErrNoTokens       = errors.New("no tokens configured")
	ErrNoBonder       = errors.New("bonder address is required")
	ErrUnknownBridge  = errors.New("bridge configured on an unknown chain")
	ErrDuplicateToken = errors.New("token configured twice")
)

/*
Config represents the configuration of the entire bonder node
The file is [TOML format]

[TOML format]: https://en.wikipedia.org/wiki/TOML
*/
type Config struct {
	// Configure Log level for all the services, allow also to store the logs in a file
	Log log.Config
	// Chains the node connects to, exactly one of them is the root chain
	Chains []chain.Config
	// Tokens watched by the node
	Tokens []TokenConfig
	// Retry of the failed RPC calls made while syncing
	Retry RetryConfig
	// SyncWatcher is the configuration shared by the watchers of every chain and token
	SyncWatcher syncwatcher.Config
	// Storage of the transfers and transfer roots
	Storage StorageConfig
	// Exporter of the liquidity snapshot
	Exporter exporter.Config
	// Notifier of the sync errors
	Notifier notifier.Config
	// Broker used by the notifier and the exporter
	Broker broker.Config
	// RPC is the config for the RPC server
	RPC RPCConfig
}

// TokenConfig describes a bridged token
type TokenConfig struct {
	// Symbol of the token (USDC, ETH, ...)
	Symbol string `mapstructure:"Symbol"`
	// Decimals of the token, used to format and parse amounts
	Decimals uint8 `mapstructure:"Decimals"`
	// Bridges of the token, one per chain
	Bridges []TokenBridgeConfig `mapstructure:"Bridges"`
}

// TokenBridgeConfig is the bridge of a token on a chain
type TokenBridgeConfig struct {
	// Chain is the slug of the chain
	Chain         string `mapstructure:"Chain"`
	bridge.Config `mapstructure:",squash"`
}

// RetryConfig is the retry policy of the chain clients
type RetryConfig struct {
	// RetryAfterErrorPeriod is the time waited before retrying a failed RPC call
	RetryAfterErrorPeriod types.Duration `mapstructure:"RetryAfterErrorPeriod"`
	// MaxRetryAttemptsAfterError is the number of retries of a failed RPC call, -1 retries forever
	MaxRetryAttemptsAfterError int `mapstructure:"MaxRetryAttemptsAfterError"`
	// SyncBlockChunkSize is used by the chains that don't set their own
	SyncBlockChunkSize uint64 `mapstructure:"SyncBlockChunkSize"`
}

// StorageConfig is the location of the databases
type StorageConfig struct {
	// DBDir is the directory of the databases, one per token
	DBDir string `mapstructure:"DBDir"`
}

// DBPath returns the database of a token
func (c StorageConfig) DBPath(token string) string {
	return filepath.Join(c.DBDir, strings.ToLower(token)+".sqlite")
}

// RPCConfig is the RPC server config plus the limits of the bonder endpoints
type RPCConfig struct {
	jRPC.Config `mapstructure:",squash"`
	// MaxTimeRange is the longest range served by the time range queries
	MaxTimeRange types.Duration `mapstructure:"MaxTimeRange"`
}

// Validate checks the relations between sections that the decoding can't check
func (c *Config) Validate() error {
	if c.SyncWatcher.BonderAddress == (common.Address{}) {
		return ErrNoBonder
	}
	if len(c.Tokens) == 0 {
		return ErrNoTokens
	}
	topology, err := chain.NewTopology(c.Chains)
	if err != nil {
		return err
	}
	symbols := make(map[string]struct{}, len(c.Tokens))
	for _, token := range c.Tokens {
		symbol := strings.ToUpper(token.Symbol)
		if _, ok := symbols[symbol]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateToken, symbol)
		}
		symbols[symbol] = struct{}{}
		for _, b := range token.Bridges {
			if _, err := topology.BySlug(b.Chain); err != nil {
				return fmt.Errorf("%w: %s on %s", ErrUnknownBridge, symbol, b.Chain)
			}
		}
	}
	return nil
}

// Load loads the configuration
func Load(ctx *cli.Context) (*Config, error) {
	configFilePath := ctx.StringSlice(FlagCfg)
	filesData, err := readFiles(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading files:  Err:%w", err)
	}
	saveConfigPath := ctx.String(FlagSaveConfigPath)
	return LoadFile(filesData, saveConfigPath)
}

func readFiles(files []string) ([]FileData, error) {
	result := make([]FileData, 0, len(files))
	for _, file := range files {
		fileContent, err := readFileToString(file)
		if err != nil {
			return nil, fmt.Errorf("error reading file content: %s. Err:%w", file, err)
		}
		fileExtension := getFileExtension(file)
		if fileExtension != ConfigType {
			fileContent, err = convertFileToToml(fileContent, fileExtension)
			if err != nil {
				return nil, fmt.Errorf("error converting file: %s from %s to TOML. Err:%w", file, fileExtension, err)
			}
		}
		if err := checkTomlSyntax(file, fileContent); err != nil {
			return nil, err
		}
		result = append(result, FileData{Name: file, Content: fileContent})
	}
	return result, nil
}

func getFileExtension(fileName string) string {
	return fileName[strings.LastIndex(fileName, ".")+1:]
}

// LoadFileFromString decodes a rendered configuration
func LoadFileFromString(configFileData string, configType string) (*Config, error) {
	cfg := &Config{}
	if err := loadString(cfg, configFileData, configType, true, EnvVarPrefix); err != nil {
		return nil, err
	}
	return cfg, nil
}

func SaveConfigToString(cfg Config) (string, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LoadFile merges the defaults with files, resolves the vars and decodes the result
func LoadFile(files []FileData, saveConfigPath string) (*Config, error) {
	fileData := make([]FileData, 0, len(files)+2)
	fileData = append(fileData, FileData{Name: "default_vars", Content: DefaultVars})
	fileData = append(fileData, FileData{Name: "default_values", Content: DefaultValues})
	fileData = append(fileData, files...)

	renderedCfg, err := NewConfigRender(fileData, EnvVarPrefix).Render()
	if err != nil {
		return nil, err
	}
	if saveConfigPath != "" {
		fullPath := filepath.Join(saveConfigPath, SaveConfigFileName)
		err = os.WriteFile(fullPath, []byte(renderedCfg), DefaultCreationFilePermissions)
		if err != nil {
			err = fmt.Errorf("error writing config file: %s. Err: %w", fullPath, err)
			log.Error(err)
			return nil, err
		}
	}
	cfg, err := LoadFileFromString(renderedCfg, ConfigType)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadString(cfg *Config, configData string, configType string, allowEnvVars bool, envPrefix string) error {
	v := viper.New()
	v.SetConfigType(configType)
	if allowEnvVars {
		replacer := strings.NewReplacer(".", "_")
		v.SetEnvKeyReplacer(replacer)
		v.SetEnvPrefix(envPrefix)
		v.AutomaticEnv()
	}
	err := v.ReadConfig(bytes.NewBuffer([]byte(configData)))
	if err != nil {
		return err
	}
	decodeHooks := []viper.DecoderConfigOption{
		// this allows arrays to be decoded from env var separated by ",", example: MY_VAR="value1,value2,value3"
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(), mapstructure.StringToSliceHookFunc(","))),
	}
	return v.Unmarshal(&cfg, decodeHooks...)
}
