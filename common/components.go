package common

const (
	// SYNC_WATCHER name to identify the sync watchers (one per chain and token)
	SYNC_WATCHER = "sync-watcher" //nolint:stylecheck
	// RPC name to identify the rpc component (implies SYNC_WATCHER)
	RPC = "rpc"
	// EXPORTER name to identify the liquidity snapshot exporter (implies SYNC_WATCHER)
	EXPORTER = "exporter"
)
