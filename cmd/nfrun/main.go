package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"

	"github.com/neuroflow/neuroflow"
	"github.com/neuroflow/neuroflow/modelfile"
	"github.com/neuroflow/neuroflow/runlog"
)

func main() {
	var (
		csvPath = flag.String("csv", "", "Write recorded trial values to a CSV file")
		dbPath  = flag.String("db", "", "Persist recorded trial values to a SQLite database")
		seed    = flag.Int64("seed", 0, "Seed for stochastic functions (0 uses a random seed)")
		verbose = flag.Bool("verbose", false, "Enable verbose output")
		version = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		fmt.Println("nfrun - NeuroFlow Runner v1.0.0")
		fmt.Printf("Built with Go %s\n", runtime.Version())
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <model.yaml>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	model, err := modelfile.Load(args[0])
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}
	if len(model.Run.Stimuli) == 0 {
		log.Fatalf("Model %s has no run section; nothing to execute", args[0])
	}

	logger := neuroflow.NopLogger()
	if *verbose {
		logger, err = neuroflow.NewStdLogger()
		if err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
	}

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewSource(*seed))
	}

	recorder := runlog.NewRecorder()
	sys, err := model.Build(modelfile.BuildConfig{
		Logger:   logger,
		Rand:     rng,
		Observer: recorder.Observe,
	})
	if err != nil {
		log.Fatalf("Failed to build model: %v", err)
	}

	results, err := sys.Run(model.Stimuli())
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	for trial, res := range results {
		for name, value := range res {
			fmt.Printf("trial %d  %s: %v\n", trial, name, value)
		}
	}

	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			log.Fatalf("Failed to create CSV file: %v", err)
		}
		defer f.Close()
		if err := recorder.WriteCSV(f); err != nil {
			log.Fatalf("Failed to write CSV: %v", err)
		}
		if *verbose {
			fmt.Printf("Wrote %d entries to %s\n", len(recorder.Entries()), *csvPath)
		}
	}

	if *dbPath != "" {
		store, err := runlog.Open(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open store: %v", err)
		}
		defer store.Close()
		if err := store.Save(recorder); err != nil {
			log.Fatalf("Failed to save run: %v", err)
		}
		if *verbose {
			fmt.Printf("Saved run %s to %s\n", recorder.RunID(), *dbPath)
		}
	}
}
