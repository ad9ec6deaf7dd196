package commands

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"ubfuzz/internal/config"
	"ubfuzz/internal/corpusdb"
	"ubfuzz/internal/monitor"
	"ubfuzz/internal/printer"
	"ubfuzz/internal/program"
	"ubfuzz/internal/scheduler"
)

// FuzzCommand runs the scheduler's main loop against an external oracle
// command (spec.md §4.I), optionally persisting candidates to a corpus
// database and serving a live monitor over websockets (SPEC_FULL.md's
// domain-stack wiring). There is no retry or sandboxing around the oracle
// invocation — a crash or timeout in the oracle command is itself the
// signal the scheduler is looking for.
func FuzzCommand(args []string) error {
	fs := flag.NewFlagSet("fuzz", flag.ContinueOnError)
	seed := fs.Int64("seed", 1, "RNG seed")
	oracleSpec := fs.String("oracle", "", "external oracle command (required)")
	timeout := fs.Duration("timeout", 5*time.Second, "per-run oracle timeout")
	steps := fs.Int("steps", 0, "number of scheduler steps to run (0 = unbounded)")
	stopAfter := fs.Int("stop-after", 0, "stop after this many total hits (0 = unbounded)")
	stopAfterFirstHit := fs.Bool("stop-after-first-hit", false, "stop as soon as a single hit is found")
	outDir := fs.String("out", "findings", "directory interesting candidates are written to")
	corpusDSN := fs.String("corpus-dsn", "", "corpus database DSN (empty disables persistence)")
	corpusDriver := fs.String("corpus-driver", "sqlite", "corpus database driver")
	monitorAddr := fs.String("monitor", "", "live monitor listen address, e.g. :8089 (empty disables)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *oracleSpec == "" {
		return fmt.Errorf("commands: -oracle is required")
	}

	orc, err := newOracle(*oracleSpec, *timeout)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("commands: failed to create %s: %w", *outDir, err)
	}

	opts := config.DefaultSchedulerOptions()
	opts.Seed = *seed
	opts.StopAfter = *stopAfter
	opts.StopAfterHit = *stopAfterFirstHit
	opts.CorpusDSN = *corpusDSN
	opts.CorpusDriver = *corpusDriver
	opts.MonitorListen = *monitorAddr

	findingN := 0
	feedback := func(p *program.Program) (int, bool) {
		hit, runErr := orc.run(p)
		if runErr != nil {
			return p.CountNodes(), false
		}
		return p.CountNodes(), hit
	}
	output := func(p *program.Program) {
		findingN++
		path := filepath.Join(*outDir, fmt.Sprintf("finding-%04d.cpp", findingN))
		f, err := os.Create(path)
		if err != nil {
			log.Printf("fuzz: failed to save finding: %v", err)
			return
		}
		defer f.Close()
		if err := printer.Print(p, f); err != nil {
			log.Printf("fuzz: failed to print finding: %v", err)
		}
	}

	sched := scheduler.New(opts, config.DefaultLangOpts(), nil, feedback, output)

	if opts.CorpusDSN != "" {
		store, err := corpusdb.Open(context.Background(), opts.CorpusDriver, opts.CorpusDSN)
		if err != nil {
			return fmt.Errorf("commands: failed to open corpus database: %w", err)
		}
		sched.SetCorpus(store)
	}

	if opts.MonitorListen != "" {
		hub := monitor.NewHub()
		events := make(chan scheduler.StepEvent, 64)
		sched.SetEvents(events)
		hub.Drain(events)
		go func() {
			if err := hub.Run(opts.MonitorListen); err != nil {
				log.Printf("fuzz: monitor server: %v", err)
			}
		}()
	}

	n := 0
	for *steps == 0 || n < *steps {
		hit, done := sched.Step()
		n++
		if hit {
			log.Printf("fuzz: step %d found a hit", n)
		}
		if done {
			break
		}
	}

	snap := sched.Snapshot()
	log.Printf("fuzz: stopped after %d steps, %d hits, queue size %d, best score %d",
		snap.StepCount, snap.HitCount, snap.QueueSize, snap.BestScore)
	return nil
}
