// Command rillcoind is a thin inspection CLI over the chain store: it can
// bring up genesis, connect a single block read from a JSON file, print
// chain tip/decay-pool/circulating-supply, and dump a UTXO entry. It is
// explicitly not a node: no P2P transport, no RPC server, and no PoW
// mining loop live here, mirroring the teacher's cmd/rubin-node skeleton
// narrowed to what the core actually exposes.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/decred/slog"
	"github.com/jessevdk/go-flags"

	"rillcoin.dev/node/consensus"
	"rillcoin.dev/node/rpcshim"
	"rillcoin.dev/node/store"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	sub, global, cfg, err := parseCommandLine(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}

	backend := slog.NewBackend(stderr)
	rilcLog := backend.Logger("RILC")
	rilcLog.SetLevel(slog.LevelInfo)
	store.Log = backend.Logger("STOR")
	store.Log.SetLevel(slog.LevelInfo)
	rilcLog.Infof("rillcoind: network=%s datadir=%s subcommand=%s", global.Network, global.DataDir, sub)

	params, err := paramsForNetwork(global.Network)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}

	if err := os.MkdirAll(global.DataDir, 0o750); err != nil {
		_, _ = fmt.Fprintf(stderr, "datadir create failed: %v\n", err)
		return 2
	}

	s, err := store.Open(chainStatePath(global.DataDir), params)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "store open failed: %v\n", err)
		return 2
	}
	defer func() { _ = s.Close() }()

	switch sub {
	case genesisInitSubCmd:
		return cmdGenesisInit(s, stdout, stderr)
	case connectBlockSubCmd:
		return cmdConnectBlock(s, cfg.(*connectBlockConfig), stdout, stderr)
	case tipSubCmd:
		return cmdTip(s, stdout)
	case dumpUTXOSubCmd:
		return cmdDumpUTXO(s, cfg.(*dumpUTXOConfig), stdout, stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "unknown subcommand %q\n", sub)
		return 2
	}
}

func paramsForNetwork(name string) (consensus.ChainParams, error) {
	switch name {
	case "mainnet":
		return consensus.MainnetParams(), nil
	case "testnet":
		return consensus.TestnetParams(), nil
	case "devnet", "":
		return consensus.DevnetParams(), nil
	default:
		return consensus.ChainParams{}, fmt.Errorf("unknown network %q (want mainnet|testnet|devnet)", name)
	}
}

func cmdGenesisInit(s *store.Store, stdout, stderr io.Writer) int {
	if s.HasTip() {
		_, _ = fmt.Fprintf(stdout, "genesis already initialized: height=%d hash=%s\n", s.TipHeight(), s.TipHash())
		return 0
	}
	if err := s.InitGenesis(); err != nil {
		_, _ = fmt.Fprintf(stderr, "genesis init failed: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "genesis initialized: height=%d hash=%s supply=%d\n", s.TipHeight(), s.TipHash(), s.CirculatingSupply())
	return 0
}

func cmdConnectBlock(s *store.Store, cfg *connectBlockConfig, stdout, stderr io.Writer) int {
	raw, err := os.ReadFile(cfg.File)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "read block file: %v\n", err)
		return 2
	}
	var shim rpcshim.Block
	if err := json.Unmarshal(raw, &shim); err != nil {
		_, _ = fmt.Fprintf(stderr, "parse block JSON: %v\n", err)
		return 2
	}
	block, err := shim.ToCore()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "decode block: %v\n", err)
		return 2
	}
	result, err := s.ConnectBlock(block, block.Header.Timestamp)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "connect block: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "connected: height=%d hash=%s utxos_created=%d utxos_spent=%d fees=%d pool_release=%d\n",
		s.TipHeight(), s.TipHash(), result.UTXOsCreated, result.UTXOsSpent, result.Fees, result.PoolRelease)
	return 0
}

type tipJSON struct {
	Height            uint64 `json:"height"`
	Hash              string `json:"hash"`
	CirculatingSupply uint64 `json:"circulating_supply"`
	DecayPool         uint64 `json:"decay_pool"`
}

func cmdTip(s *store.Store, stdout io.Writer) int {
	out := tipJSON{
		Height:            s.TipHeight(),
		Hash:              s.TipHash().String(),
		CirculatingSupply: s.CirculatingSupply(),
		DecayPool:         s.DecayPool(),
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return encodeOrFail(enc, out)
}

func cmdDumpUTXO(s *store.Store, cfg *dumpUTXOConfig, stdout, stderr io.Writer) int {
	txid, err := rpcshim.DecodeHash(cfg.Txid)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}
	entry, ok, err := s.GetUTXO(consensus.OutPoint{TxID: txid, Index: cfg.Index})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "lookup failed: %v\n", err)
		return 2
	}
	if !ok {
		_, _ = fmt.Fprintf(stderr, "utxo not found or already spent\n")
		return 1
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return encodeOrFail(enc, rpcshim.UtxoEntryFromCore(entry))
}

func encodeOrFail(enc *json.Encoder, v interface{}) int {
	if err := enc.Encode(v); err != nil {
		return 1
	}
	return 0
}
