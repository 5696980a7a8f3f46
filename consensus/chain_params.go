package consensus

// ChainParams bundles the handful of values that vary by network, so the
// rest of the consensus package can stay oblivious to which network it is
// running against (mainnet, testnet, or a throwaway devnet for local
// integration tests).
type ChainParams struct {
	Name             string
	Net              Network
	GenesisTimestamp uint64
}

// GenesisDevFundHash is the deterministic placeholder pubkey hash genesis's
// premine output pays to (§6 Genesis): BLAKE3("rill genesis dev fund").
var GenesisDevFundHash = Blake3([]byte("rill genesis dev fund"))

// genesisTimestampMainnet is 2026-01-01T00:00:00Z in Unix seconds.
const genesisTimestampMainnet uint64 = 1767225600

// MainnetParams returns the production network's parameters.
func MainnetParams() ChainParams {
	return ChainParams{Name: "mainnet", Net: Mainnet, GenesisTimestamp: genesisTimestampMainnet}
}

// TestnetParams returns the public test network's parameters: same genesis
// timestamp convention, distinct HRP via Network.
func TestnetParams() ChainParams {
	return ChainParams{Name: "testnet", Net: Testnet, GenesisTimestamp: genesisTimestampMainnet}
}

// DevnetParams returns parameters for local integration tests and the CLI's
// scratch chains: still Testnet's HRP (no dedicated devnet HRP is specified),
// but callers are expected to use a throwaway data directory per run.
func DevnetParams() ChainParams {
	return ChainParams{Name: "devnet", Net: Testnet, GenesisTimestamp: genesisTimestampMainnet}
}
