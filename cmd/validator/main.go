package main

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/config"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/vdb"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/wire"
)

func newRootCommand() *cobra.Command {
	var input string
	opts, envErr := config.FromEnv()

	cmd := &cobra.Command{
		Use:   "validator",
		Short: "Transactional version store and validation engine",
		Long: `Reads framed commands from stdin (or --input) and writes one byte per
released validation to stdout, '0' for a passed validation and '1' for a
conflict. Logs go to stderr.

Every flag defaults to its VALIDATOR_* environment variable.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// flags may still repair invalid env values, Validate decides
			if envErr != nil && !errors.Is(envErr, config.ErrInvalidOptions) {
				return envErr
			}
			if err := opts.Validate(); err != nil {
				return err
			}
			if err := opts.ApplyLogLevel(); err != nil {
				return err
			}
			layout, err := wire.ParseLayout(opts.TxnLayout)
			if err != nil {
				return err
			}
			in := os.Stdin
			if input != "" {
				if in, err = os.Open(input); err != nil {
					return err
				}
				defer in.Close()
			}
			db, err := vdb.Open(opts)
			if err != nil {
				return err
			}
			defer db.Close()
			return serve(db, in, cmd.OutOrStdout(), layout)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&input, "input", "", "read commands from this file instead of stdin")
	flags.IntVar(&opts.Workers, "workers", opts.Workers, "clause fan-out pool size, 0 disables it")
	flags.IntVar(&opts.ParallelClauses, "parallel-clauses", opts.ParallelClauses, "minimum clause count for a fan-out")
	flags.Uint32Var(&opts.QueueCapacity, "queue-capacity", opts.QueueCapacity, "initial pending result ring size")
	flags.IntVar(&opts.IndexDegree, "index-degree", opts.IndexDegree, "btree degree of the version indexes")
	flags.StringVar(&opts.TxnLayout, "txn-layout", opts.TxnLayout, "transaction message layout (contest|interleaved)")
	flags.BoolVar(&opts.StrictTxnOrder, "strict-txn-order", opts.StrictTxnOrder, "reject transactions whose id does not increase")
	flags.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "log level")
	return cmd
}

func main() {
	logrus.SetOutput(os.Stderr)
	if err := newRootCommand().Execute(); err != nil {
		logrus.Fatal(err)
	}
}
