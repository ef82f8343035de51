// Skein CLI - load a process network from a skein.toml manifest and drive
// it to quiescence.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tliron/commonlog"

	"github.com/skeinflow/skein/engine"
	"github.com/skeinflow/skein/ir"
	"github.com/skeinflow/skein/manifest"
	"github.com/skeinflow/skein/trace"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("skein")

func main() {
	check := flag.Bool("check", false, "Validate the manifest and exit")
	ticks := flag.Int("ticks", 1, "Number of global ticks to run")
	tracePath := flag.String("trace", "", "Save the execution trace to this SQLite database")
	runID := flag.String("run", "", "Run id for the saved trace (default: timestamp)")
	verbose := flag.Int("v", 0, "Log verbosity")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: skein [options] [dir]\n\n")
		fmt.Fprintf(os.Stderr, "Loads skein.toml from dir (default .), binds the built-in body catalog,\n")
		fmt.Fprintf(os.Stderr, "and runs the network.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  skein -check ./examples/tripler       # Validate only\n")
		fmt.Fprintf(os.Stderr, "  skein -ticks 3 ./examples/tripler     # Run three global ticks\n")
		fmt.Fprintf(os.Stderr, "  skein -trace runs.db ./examples/tripler\n")
	}
	flag.Parse()

	commonlog.Configure(*verbose, nil)

	dir := "."
	if flag.NArg() > 0 {
		dir = flag.Arg(0)
	}

	if err := run(dir, *check, *ticks, *tracePath, *runID); err != nil {
		fmt.Fprintf(os.Stderr, "skein: %v\n", err)
		os.Exit(1)
	}
}

func run(dir string, check bool, ticks int, tracePath, runID string) error {
	m, err := manifest.Load(dir)
	if err != nil {
		return err
	}

	if check {
		if err := m.Validate(); err != nil {
			return err
		}
		fmt.Printf("%s: ok (%d channels, %d procs)\n", m.Network.Name, len(m.Channels), len(m.Procs))
		return nil
	}

	network, bodies, err := manifest.BuildNetwork(m, builtinRegistry())
	if err != nil {
		return err
	}

	var recorder *trace.Memory
	opts := &engine.Options{}
	if tracePath != "" {
		recorder = trace.NewMemory()
		opts.Observer = recorder
	}

	rt, err := engine.New(network, bodies, opts)
	if err != nil {
		return err
	}

	for i := 0; i < ticks; i++ {
		report := rt.Tick()
		log.Infof("tick %d: %d passes, %d/%d procs complete",
			i+1, report.Passes, len(report.Completed), len(network.Procs()))
		if report.Stalled() {
			for proc, ch := range report.BlockedOn {
				fmt.Printf("tick %d: proc %q blocked on channel %q\n",
					i+1, network.Proc(proc).Name, network.Channel(ch).Name)
			}
		}
	}

	dumpChannels(rt)

	if tracePath != "" {
		store, err := trace.OpenStore(tracePath)
		if err != nil {
			return err
		}
		defer store.Close()
		if runID == "" {
			runID = time.Now().UTC().Format(time.RFC3339Nano)
		}
		l := recorder.Log(network.Name)
		if err := store.Save(runID, &l); err != nil {
			return err
		}
	}
	return nil
}

// dumpChannels drains and prints what every channel holds after the run.
func dumpChannels(rt *engine.Runtime) {
	for _, ch := range rt.Network().Channels() {
		q := rt.Queues().Queue(ch.ID)
		if q.Len() == 0 {
			continue
		}
		fmt.Printf("%s:", ch.Name)
		if ch.Kind == ir.FIFO { // reads consume
			for {
				v, ok := q.Dequeue()
				if !ok {
					break
				}
				fmt.Printf(" %s", v)
			}
		} else {
			v, _ := q.Dequeue()
			fmt.Printf(" %s", v)
		}
		fmt.Println()
	}
}
