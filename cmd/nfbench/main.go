package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/neuroflow/neuroflow/linalg"
	"github.com/neuroflow/neuroflow/mechanism"
	"github.com/neuroflow/neuroflow/modelfile"
	"github.com/neuroflow/neuroflow/process"
	"github.com/neuroflow/neuroflow/registry"
	"github.com/neuroflow/neuroflow/system"
)

var (
	trials  = flag.Int("trials", 1000, "Number of trials per test")
	size    = flag.Int("size", 64, "Mechanism vector size")
	layers  = flag.Int("layers", 4, "Pathway depth for the synthetic benchmark")
	workers = flag.Int("workers", runtime.NumCPU(), "Worker goroutines per execution set")
)

func main() {
	flag.Parse()

	fmt.Printf("NeuroFlow Benchmark\n")
	fmt.Printf("===================\n")
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("CPUs: %d\n", runtime.NumCPU())
	fmt.Printf("Trials: %d, Size: %d, Layers: %d\n\n", *trials, *size, *layers)

	if args := flag.Args(); len(args) > 0 {
		benchModel(args[0])
		return
	}
	benchSynthetic()
}

// benchModel runs a model file for the configured number of trials.
func benchModel(path string) {
	model, err := modelfile.Load(path)
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}
	sys, err := model.Build()
	if err != nil {
		log.Fatalf("Failed to build model: %v", err)
	}

	stimuli := model.Stimuli()
	if len(stimuli) == 0 {
		fmt.Fprintln(os.Stderr, "model has no run section")
		os.Exit(1)
	}

	start := time.Now()
	for i := 0; i < *trials; i++ {
		if _, err := sys.Run(stimuli); err != nil {
			log.Fatalf("Run failed: %v", err)
		}
	}
	report(path, time.Since(start), *trials)
}

// benchSynthetic builds a deep linear pathway and measures trial throughput.
func benchSynthetic() {
	reg := registry.New()
	entries := make([]process.Entry, *layers)
	for i := range entries {
		m, err := mechanism.NewTransfer(mechanism.TransferConfig{Size: *size, Registry: reg})
		if err != nil {
			log.Fatalf("Failed to build mechanism: %v", err)
		}
		entries[i] = process.Entry{Mechanism: m}
	}
	p, err := process.New(process.Config{Pathway: entries, Registry: reg})
	if err != nil {
		log.Fatalf("Failed to build process: %v", err)
	}
	sys, err := system.New(system.Config{
		Processes: []*process.Process{p},
		Workers:   *workers,
		Registry:  reg,
	})
	if err != nil {
		log.Fatalf("Failed to build system: %v", err)
	}

	origin := p.Origin().Name()
	stim := make(linalg.Vector, *size)
	for i := range stim {
		stim[i] = rand.Float64()
	}

	start := time.Now()
	for i := 0; i < *trials; i++ {
		if _, err := sys.Execute(system.Inputs{origin: stim}); err != nil {
			log.Fatalf("Execute failed: %v", err)
		}
	}
	report("synthetic pathway", time.Since(start), *trials)
}

func report(name string, elapsed time.Duration, trials int) {
	perTrial := elapsed / time.Duration(trials)
	fmt.Printf("%-24s %10s total  %10s/trial  %8.0f trials/s\n",
		name, elapsed.Round(time.Microsecond), perTrial.Round(time.Nanosecond),
		float64(trials)/elapsed.Seconds())
}
