package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
)

const (
	genesisInitSubCmd  = "genesis-init"
	connectBlockSubCmd = "connect-block"
	tipSubCmd          = "tip"
	dumpUTXOSubCmd     = "dump-utxo"
)

// globalFlags are accepted before any subcommand, mirroring the teacher's
// node.Config surface narrowed to what the chain store actually needs: a
// data directory and a network selector, not transport or peer settings.
type globalFlags struct {
	DataDir string `long:"datadir" description:"node data directory" default:"~/.rillcoind"`
	Network string `long:"network" description:"network name: mainnet|testnet|devnet" default:"devnet"`
}

type connectBlockConfig struct {
	File string `long:"file" short:"f" description:"path to a JSON-encoded block (rpcshim.Block)" required:"true"`
}

type dumpUTXOConfig struct {
	Txid  string `long:"txid" description:"hex-encoded transaction id" required:"true"`
	Index uint32 `long:"index" description:"output index" default:"0"`
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".rillcoind"
	}
	return filepath.Join(home, ".rillcoind")
}

// parseCommandLine parses argv into a global config plus whichever
// subcommand's config was selected, following kaspawallet's
// cmd/config.go pattern of one flags.Parser with AddCommand per verb.
func parseCommandLine(args []string) (subCommand string, global globalFlags, sub interface{}, err error) {
	global = globalFlags{DataDir: defaultDataDir(), Network: "devnet"}
	parser := flags.NewParser(&global, flags.PrintErrors|flags.HelpFlag)

	genesisConf := &struct{}{}
	parser.AddCommand(genesisInitSubCmd, "Initialize the genesis block",
		"Creates the chain store (if absent) and writes the fixed genesis block as tip 0.", genesisConf)

	connectConf := &connectBlockConfig{}
	parser.AddCommand(connectBlockSubCmd, "Connect a block read from a JSON file",
		"Decodes an rpcshim.Block from --file and connects it to the current tip.", connectConf)

	tipConf := &struct{}{}
	parser.AddCommand(tipSubCmd, "Print chain tip, decay pool and circulating supply",
		"Prints the current tip height/hash, decay pool balance and circulating supply as JSON.", tipConf)

	dumpConf := &dumpUTXOConfig{}
	parser.AddCommand(dumpUTXOSubCmd, "Dump a single UTXO entry",
		"Looks up --txid:--index in the UTXO set and prints it as JSON.", dumpConf)

	if _, err := parser.ParseArgs(args); err != nil {
		return "", global, nil, err
	}

	if parser.Command.Active == nil {
		return "", global, nil, errors.New("a subcommand is required: " +
			genesisInitSubCmd + "|" + connectBlockSubCmd + "|" + tipSubCmd + "|" + dumpUTXOSubCmd)
	}

	switch parser.Command.Active.Name {
	case genesisInitSubCmd:
		return genesisInitSubCmd, global, genesisConf, nil
	case connectBlockSubCmd:
		return connectBlockSubCmd, global, connectConf, nil
	case tipSubCmd:
		return tipSubCmd, global, tipConf, nil
	case dumpUTXOSubCmd:
		return dumpUTXOSubCmd, global, dumpConf, nil
	default:
		return "", global, nil, errors.New("unknown subcommand")
	}
}

func chainStatePath(dataDir string) string {
	return filepath.Join(dataDir, "chain.db")
}
