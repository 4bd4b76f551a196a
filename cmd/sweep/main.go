package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	pb "gopkg.in/cheggaaa/pb.v1"

	sweep "github.com/digineo/go-sweep"
	"github.com/digineo/go-sweep/stats"
)

var opts = struct {
	concurrent  bool
	privileged  bool
	bind4       string
	bind6       string
	payloadSize uint16
	progress    bool
	summary     bool
	verbose     bool
}{
	bind4: "0.0.0.0",
	bind6: "::",
}

func main() {
	root := &cobra.Command{
		Use:   "sweep [flags] [input-file]",
		Short: "ICMP Echo sweeps over many IPv4 targets",
		Long: "sweep reads \"address,count,interval_ms\" rows from the input file\n" +
			"(or stdin) and probes every target over one shared socket. Completed\n" +
			"records are written to stdout as \"address,sequence,ttl,elapsed_microseconds\";\n" +
			"timed out requests carry a TTL of -1 and the nominal timeout as elapsed time.",
		Args:         cobra.MaximumNArgs(1),
		RunE:         run,
		SilenceUsage: true,
	}

	flags := root.Flags()
	flags.BoolVarP(&opts.concurrent, "concurrent", "c", false, "probe all targets at once instead of one after another")
	flags.BoolVar(&opts.privileged, "privileged", false, "use raw sockets (requires elevated privileges)")
	flags.StringVar(&opts.bind4, "bind", opts.bind4, "IPv4 bind address")
	flags.StringVar(&opts.bind6, "bind6", opts.bind6, "IPv6 bind address")
	flags.Uint16Var(&opts.payloadSize, "size", 56, "size of additional payload data")
	flags.BoolVar(&opts.progress, "progress", false, "show a progress bar on stderr")
	flags.BoolVar(&opts.summary, "summary", false, "print per-target aggregates to stderr after the sweep")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logrus.SetOutput(os.Stderr)
	if opts.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

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
	logrus.Debugf("parsed %d targets", len(targets))

	sweeper := sweep.New()
	sweeper.Privileged = opts.privileged
	sweeper.PayloadSize = opts.payloadSize
	if err := sweeper.Start(opts.bind4, opts.bind6); err != nil {
		return fmt.Errorf("unable to bind: %w (running as root?)", err)
	}
	defer sweeper.Close()

	mode := sweep.Sequential
	if opts.concurrent {
		mode = sweep.Concurrent
	}

	total := 0
	for _, t := range targets {
		total += t.Count
	}

	var bar *pb.ProgressBar
	if opts.progress {
		bar = pb.New(total)
		bar.Output = os.Stderr
		bar.Start()
	}

	var histories map[string]*stats.History
	if opts.summary {
		histories = make(map[string]*stats.History, len(targets))
		for _, t := range targets {
			h := stats.NewHistory(t.Count)
			histories[t.Addr.IP.String()] = &h
		}
	}

	err = sweeper.Run(targets, mode, func(rec sweep.Record) {
		fmt.Println(rec.String())
		if bar != nil {
			bar.Increment()
		}
		if histories != nil {
			histories[rec.Addr.IP.String()].Add(rec)
		}
	})
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if opts.summary {
		printSummary(targets, histories)
	}
	return nil
}

func printSummary(targets []sweep.Target, histories map[string]*stats.History) {
	for _, t := range targets {
		m := histories[t.Addr.IP.String()].Compute()
		if m == nil {
			continue
		}
		fmt.Fprintf(os.Stderr, "%s: sent=%d lost=%d best=%v worst=%v mean=%v median=%v stddev=%v\n",
			t.Addr.IP, m.PacketsSent, m.PacketsLost, m.Best, m.Worst, m.Mean, m.Median, m.StdDev)
	}
}
