package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sweep "github.com/digineo/go-sweep"
)

var opts = struct {
	privileged  bool
	bind4       string
	bind6       string
	payloadSize uint16
}{
	bind4: "0.0.0.0",
	bind6: "::",
}

func main() {
	root := &cobra.Command{
		Use:          "sweep-live [flags] [input-file]",
		Short:        "live view of a concurrent ICMP Echo sweep",
		Args:         cobra.MaximumNArgs(1),
		RunE:         run,
		SilenceUsage: true,
	}

	flags := root.Flags()
	flags.BoolVar(&opts.privileged, "privileged", false, "use raw sockets (requires elevated privileges)")
	flags.StringVar(&opts.bind4, "bind", opts.bind4, "IPv4 bind address")
	flags.StringVar(&opts.bind6, "bind6", opts.bind6, "IPv6 bind address")
	flags.Uint16Var(&opts.payloadSize, "size", 56, "size of additional payload data")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	input := os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}

	targets, err := sweep.ParseTargets(input)
	if err != nil {
		return err
	}

	sweeper := sweep.New()
	sweeper.Privileged = opts.privileged
	sweeper.PayloadSize = opts.payloadSize
	if err := sweeper.Start(opts.bind4, opts.bind6); err != nil {
		return fmt.Errorf("unable to bind: %w (running as root?)", err)
	}
	defer sweeper.Close()

	rows := make([]*row, len(targets))
	byAddr := make(map[string]*row, len(targets))
	for i, t := range targets {
		rows[i] = newRow(t)
		byAddr[t.Addr.IP.String()] = rows[i]
	}

	// keep stray log output from tearing the UI
	li := interceptLog(20)
	defer li.flush(os.Stderr)

	go func() {
		err := sweeper.Run(targets, sweep.Concurrent, func(rec sweep.Record) {
			byAddr[rec.Addr.IP.String()].add(rec)
		})
		if err != nil {
			logrus.Errorf("sweep failed: %v", err)
		}
	}()

	ui := buildTUI(rows)
	go ui.update()

	return ui.Run()
}
