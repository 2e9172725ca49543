package config

// DefaultMandatoryVars have no default value because they depend on the deployment
const DefaultMandatoryVars = `
# BonderAddress is the address of the bonder whose liquidity is tracked
BonderAddress = "0x0000000000000000000000000000000000000000"

# RPC providers of the chains
EthereumURL = "http://localhost:8545"
OptimismURL = "http://localhost:9545"

# Chains the node connects to. Exactly one of them must be the root chain
[[Chains]]
  Slug = "ethereum"
  ChainID = 1
  URL = "{{EthereumURL}}"
  IsRootChain = true
[[Chains]]
  Slug = "optimism"
  ChainID = 10
  URL = "{{OptimismURL}}"
  IsOptimisticRollup = true

# Tokens watched on every chain where a bridge is configured
[[Tokens]]
  Symbol = "USDC"
  Decimals = 6
  [[Tokens.Bridges]]
    Chain = "ethereum"
    Address = "0x0000000000000000000000000000000000000000"
    DeployedBlock = 0
  [[Tokens.Bridges]]
    Chain = "optimism"
    Address = "0x0000000000000000000000000000000000000000"
    DeployedBlock = 0
`

// DefaultVars are used to avoid repetition in config files, they don't belong to the config
const DefaultVars = `
PathRWData = "/tmp/bonder"
SyncBlockChunkSize = 1000
`

// DefaultValues is the default configuration
const DefaultValues = `
[Log]
  # Environment is the environment where the node is running
  Environment = "development" # "production" or "development"
  # Level is the log level
  Level = "info"
  # Outputs are the outputs where the logs will be written
  Outputs = ["stderr"]

[Retry]
  # RetryAfterErrorPeriod is the time waited before retrying a failed RPC call
  RetryAfterErrorPeriod = "1s"
  # MaxRetryAttemptsAfterError is the number of retries of a failed RPC call, -1 retries forever
  MaxRetryAttemptsAfterError = 5
  # SyncBlockChunkSize is the default max number of blocks requested on each eth_getLogs call
  SyncBlockChunkSize = {{SyncBlockChunkSize}}

[SyncWatcher]
  # BonderAddress is the bonder whose credit is computed
  BonderAddress = "{{BonderAddress}}"
  # ResyncInterval is the time between two sync cycles
  ResyncInterval = "10s"
  # SyncFromDate is the unix timestamp where the first cycle starts. 0 resumes from the
  # last synced block of each stream
  SyncFromDate = 0
  # CreditSyncInterval is the number of cycles between two bonder credit computations
  CreditSyncInterval = 10
  # UnbondedRootStaleAfter excludes unbonded transfer root amounts older than this from the
  # available credit
  UnbondedRootStaleAfter = "10m"
  # ReconcileBatchSize is the max number of incomplete items populated concurrently
  ReconcileBatchSize = 20
  [SyncWatcher.GasCost]
    # Enabled turns on the bond gas cost estimations
    Enabled = false
    # PollInterval is the time between two estimations
    PollInterval = "1m"
    # MinBonderFeeUSD is the minimum fee charged by the bonder
    MinBonderFeeUSD = 0.25
    # PricesUSD are the prices used to convert gas costs into token units
    [SyncWatcher.GasCost.PricesUSD]
      ETH = 2500.0
      USDC = 1.0

[Storage]
  # DBDir is the directory of the databases, one per token
  DBDir = "{{PathRWData}}/db"

[Exporter]
  # Enabled turns on the export mode: the watchers compute every amount on every cycle and
  # the liquidity snapshot is published
  Enabled = false
  # MinPublishInterval is the minimum time between two publications
  MinPublishInterval = "60s"
  # FilePath is the file where the snapshot is written. Empty disables the file target
  FilePath = "{{PathRWData}}/liquidity.json"
  # RoutingKey used when publishing the snapshot to the broker
  RoutingKey = ""

[Notifier]
  # Label identifies the node on the notifications
  Label = "bonder"
  # BufferSize is the number of notifications queued before new ones are dropped
  BufferSize = 100
  # RoutingKey used when publishing notifications to the broker
  RoutingKey = ""

[Broker]
  # URL of the AMQP server. Empty disables the broker
  URL = ""
  # Exchange where messages are published
  Exchange = "bonder"

[RPC]
  # Host defines the network adapter that will be used to serve the HTTP requests
  Host = "0.0.0.0"
  # Port defines the port to serve the endpoints via HTTP
  Port = 5577
  # ReadTimeout is the HTTP server read timeout
  # check net/http.server.ReadTimeout and net/http.server.ReadHeaderTimeout
  ReadTimeout = "2s"
  # WriteTimeout is the HTTP server write timeout
  # check net/http.server.WriteTimeout
  WriteTimeout = "2s"
  # MaxRequestsPerIPAndSecond defines how much requests a single IP can
  # send within a single second
  MaxRequestsPerIPAndSecond = 10
  # MaxTimeRange is the longest range served by the time range queries
  MaxTimeRange = "168h"
`
