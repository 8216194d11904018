package constants

// Common string constants used throughout the codebase
const (
	ServiceName = "governance-proposals"

	// Stages
	StageProd  = "prod"
	StageDev   = "dev"
	StageLocal = "local"
	StageTest  = "test"

	// Clusters
	ClusterMainnet = "mainnet"
	ClusterDevnet  = "devnet"

	// RPC defaults, overridable through MAINNET_RPC / DEVNET_RPC
	DefaultMainnetRPC = "https://mango.rpcpool.com/946ef7337da3f5b8d3e4a34e7f88"
	DefaultDevnetRPC  = "https://mango.devnet.rpcpool.com"

	DefaultCommitment = "confirmed"
	DefaultPort       = "8000"
)

// IsValidStage checks if the provided stage string is one of the defined valid stages.
func IsValidStage(stage string) bool {
	switch stage {
	case StageProd, StageDev, StageLocal, StageTest:
		return true
	default:
		return false
	}
}
