package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"

	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/bonder-network/bonder"
	"github.com/bonder-network/bonder/bridge"
	"github.com/bonder-network/bonder/broker"
	"github.com/bonder-network/bonder/chain"
	bondercommon "github.com/bonder-network/bonder/common"
	"github.com/bonder-network/bonder/config"
	"github.com/bonder-network/bonder/exporter"
	"github.com/bonder-network/bonder/log"
	"github.com/bonder-network/bonder/notifier"
	"github.com/bonder-network/bonder/rpc"
	"github.com/bonder-network/bonder/store"
	"github.com/bonder-network/bonder/sync"
	"github.com/bonder-network/bonder/syncwatcher"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

// tokenNode is everything running for a token: one storage shared by one watcher per chain
type tokenNode struct {
	symbol   string
	storage  *store.SQLStorage
	registry *syncwatcher.Registry
}

func start(cliCtx *cli.Context) error {
	c, err := config.Load(cliCtx)
	if err != nil {
		return err
	}

	log.Init(c.Log)

	if c.Log.Environment == log.EnvironmentDevelopment {
		bonder.PrintVersion(os.Stdout)
		log.Info("Starting application")
	} else if c.Log.Environment == log.EnvironmentProduction {
		logVersion()
	}

	components := cliCtx.StringSlice(config.FlagComponents)
	if isNeeded([]string{bondercommon.EXPORTER}, components) {
		c.Exporter.Enabled = true
	}
	ctx, cancel := context.WithCancel(cliCtx.Context)

	topology, err := chain.NewTopology(c.Chains)
	if err != nil {
		log.Fatal(err)
	}
	ethClients := dialChains(topology, c.Chains)

	producer := newBrokerProducerIfNeeded(c.Broker)
	notif := createNotifier(c.Notifier, producer)
	go notif.Start(ctx)
	exp := createExporterIfNeeded(c.Exporter, producer)

	var prices syncwatcher.PriceFeed = syncwatcher.NewStaticPriceFeed(c.SyncWatcher.GasCost.PricesUSD)
	nodes := make([]tokenNode, 0, len(c.Tokens))
	for _, token := range c.Tokens {
		nodes = append(nodes, createTokenNode(ctx, *c, token, topology, ethClients, notif, exp, prices))
	}

	if isNeeded([]string{bondercommon.SYNC_WATCHER, bondercommon.RPC, bondercommon.EXPORTER}, components) {
		for _, node := range nodes {
			for _, w := range node.registry.Watchers() {
				go func(w *syncwatcher.SyncWatcher) {
					if err := w.Start(ctx); err != nil {
						log.Fatalf("error running watcher %s.%s: %v", w.Chain().Slug, w.Token(), err)
					}
				}(w)
			}
		}
	}

	if isNeeded([]string{bondercommon.RPC}, components) {
		server := createRPC(c.RPC, nodes)
		go func() {
			if err := server.Start(); err != nil {
				log.Fatal(err)
			}
		}()
	}

	cancelFuncs := []context.CancelFunc{cancel}
	if producer != nil {
		cancelFuncs = append(cancelFuncs, producer.Close)
	}
	waitSignal(cancelFuncs)

	return nil
}

func dialChains(topology *chain.Topology, cfgs []chain.Config) map[uint64]*ethclient.Client {
	clients := make(map[uint64]*ethclient.Client, len(cfgs))
	for _, cfg := range cfgs {
		log.Debugf("dialing %s client at: %s", cfg.Slug, cfg.URL)
		client, err := ethclient.Dial(cfg.URL)
		if err != nil {
			log.Fatalf("failed to create client for %s using URL: %s. Err:%v", cfg.Slug, cfg.URL, err)
		}
		c, err := topology.ByID(cfg.ChainID)
		if err != nil {
			log.Fatal(err)
		}
		clients[c.ID] = client
	}
	return clients
}

func createTokenNode(
	ctx context.Context,
	c config.Config,
	token config.TokenConfig,
	topology *chain.Topology,
	ethClients map[uint64]*ethclient.Client,
	notif syncwatcher.Notifier,
	exp syncwatcher.Exporter,
	prices syncwatcher.PriceFeed,
) tokenNode {
	symbol := strings.ToUpper(token.Symbol)
	logger := log.WithFields("module", bondercommon.SYNC_WATCHER, "token", symbol)
	if err := os.MkdirAll(c.Storage.DBDir, 0o755); err != nil {
		logger.Fatalf("error creating db dir %s: %v", c.Storage.DBDir, err)
	}
	storage, err := store.NewSQLStorage(logger, c.Storage.DBPath(symbol))
	if err != nil {
		logger.Fatal(err)
	}

	watchers := make([]*syncwatcher.SyncWatcher, 0, len(token.Bridges))
	for _, b := range token.Bridges {
		ch, err := topology.BySlug(b.Chain)
		if err != nil {
			logger.Fatal(err)
		}
		client := createBridgeClient(c, symbol, token.Decimals, ch, b.Config, ethClients[ch.ID], storage)
		watchers = append(watchers, syncwatcher.New(c.SyncWatcher, symbol, client, storage, topology, notif, exp, prices))
	}
	registry, err := syncwatcher.NewRegistry(watchers...)
	if err != nil {
		logger.Fatal(err)
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range registry.Watchers() {
		w := w
		g.Go(func() error { return w.Init(gctx) })
	}
	if err := g.Wait(); err != nil {
		logger.Fatal(err)
	}
	return tokenNode{symbol: symbol, storage: storage, registry: registry}
}

func createBridgeClient(
	c config.Config,
	symbol string,
	decimals uint8,
	ch chain.Chain,
	cfg bridge.Config,
	ethClient *ethclient.Client,
	storage *store.SQLStorage,
) *bridge.Client {
	chainCfg := chainConfig(c.Chains, ch.ID)
	chunkSize := chainCfg.SyncBlockChunkSize
	if chunkSize == 0 {
		chunkSize = c.Retry.SyncBlockChunkSize
	}
	downloader, err := sync.NewEVMDownloader(
		fmt.Sprintf("%s.%s", ch.Slug, symbol),
		ethClient,
		chunkSize,
		chain.BlockNumberFinality(chainCfg.BlockFinality),
		&sync.RetryHandler{
			RetryAfterErrorPeriod:      c.Retry.RetryAfterErrorPeriod.Duration,
			MaxRetryAttemptsAfterError: c.Retry.MaxRetryAttemptsAfterError,
		},
	)
	if err != nil {
		log.Fatal(err)
	}
	client, err := bridge.NewClient(ch, symbol, decimals, cfg, ethClient, downloader, storage)
	if err != nil {
		log.Fatal(err)
	}
	return client
}

func chainConfig(cfgs []chain.Config, chainID uint64) chain.Config {
	for _, cfg := range cfgs {
		if cfg.ChainID == chainID {
			return cfg
		}
	}
	return chain.Config{}
}

func newBrokerProducerIfNeeded(cfg broker.Config) *broker.Producer {
	if cfg.URL == "" {
		return nil
	}
	producer, err := broker.NewProducer(cfg)
	if err != nil {
		log.Fatalf("failed to connect to the broker: %v", err)
	}
	return producer
}

func createNotifier(cfg notifier.Config, producer *broker.Producer) *notifier.Notifier {
	sinks := []notifier.Sink{notifier.NewLogSink()}
	if producer != nil && cfg.RoutingKey != "" {
		sinks = append(sinks, notifier.NewBrokerSink(producer, cfg.RoutingKey))
	}
	return notifier.New(cfg, sinks...)
}

// createExporterIfNeeded returns a nil interface when the export mode is disabled
func createExporterIfNeeded(cfg exporter.Config, producer *broker.Producer) syncwatcher.Exporter {
	if !cfg.Enabled {
		return nil
	}
	var publishers []exporter.Publisher
	if cfg.FilePath != "" {
		publishers = append(publishers, exporter.NewFilePublisher(cfg.FilePath))
	}
	if producer != nil && cfg.RoutingKey != "" {
		publishers = append(publishers, exporter.NewBrokerPublisher(producer, cfg.RoutingKey))
	}
	if len(publishers) == 0 {
		log.Warn("exporter enabled without targets, snapshots are only kept in memory")
	}
	return exporter.New(cfg, publishers...)
}

func createRPC(cfg config.RPCConfig, nodes []tokenNode) *jRPC.Server {
	logger := log.WithFields("module", bondercommon.RPC)
	tokens := make(map[string]rpc.Token, len(nodes))
	for _, node := range nodes {
		watchers := make(map[uint64]rpc.CreditReader)
		for _, w := range node.registry.Watchers() {
			watchers[w.Chain().ID] = w
		}
		tokens[node.symbol] = rpc.Token{Storage: node.storage, Watchers: watchers}
	}
	services := []jRPC.Service{
		{
			Name: rpc.BONDER,
			Service: rpc.NewBonderEndpoints(
				logger,
				cfg.ReadTimeout.Duration,
				uint64(cfg.MaxTimeRange.Seconds()),
				tokens,
			),
		},
	}

	return jRPC.NewServer(cfg.Config, services, jRPC.WithLogger(logger.GetSugaredLogger()))
}

func logVersion() {
	log.Infow("Starting application",
		// version is already logged by default
		"gitRevision", bonder.GitRev,
		"gitBranch", bonder.GitBranch,
		"goVersion", runtime.Version(),
		"built", bonder.BuildDate,
		"os/arch", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	)
}

func waitSignal(cancelFuncs []context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	for sig := range signals {
		switch sig {
		case os.Interrupt, os.Kill:
			log.Info("terminating application gracefully...")

			exitStatus := 0
			for _, cancel := range cancelFuncs {
				cancel()
			}
			os.Exit(exitStatus)
		}
	}
}

func isNeeded(casesWhereNeeded, actualCases []string) bool {
	for _, actualCase := range actualCases {
		for _, caseWhereNeeded := range casesWhereNeeded {
			if actualCase == caseWhereNeeded {
				return true
			}
		}
	}

	return false
}
