package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/neuroflow/neuroflow/modelfile"
	"github.com/neuroflow/neuroflow/system"
)

func main() {
	var (
		showSets = flag.Bool("sets", true, "Show execution sets")
		version  = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		fmt.Println("nfinspect - NeuroFlow Inspector v1.0.0")
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
	sys, err := model.Build()
	if err != nil {
		log.Fatalf("Failed to build model: %v", err)
	}

	fmt.Printf("System: %s\n", sys.Name())
	fmt.Printf("Mechanisms: %d\n\n", len(sys.Mechanisms()))

	for _, m := range sys.Mechanisms() {
		roles := sys.RolesOf(m.Name())
		labels := make([]string, len(roles))
		for i, r := range roles {
			labels[i] = r.String()
		}
		fmt.Printf("  %-24s %s\n", m.Name(), strings.Join(labels, ", "))
	}

	if *showSets {
		fmt.Println("\nExecution sets:")
		for i, set := range sys.ExecutionSets() {
			fmt.Printf("  %d: %s\n", i, strings.Join(set, ", "))
		}
	}

	for _, role := range []system.Role{system.Origin, system.Terminal} {
		names := sys.MechanismsByRole(role)
		fmt.Printf("\n%s: %s\n", role, strings.Join(names, ", "))
	}
}
