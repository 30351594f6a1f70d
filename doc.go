// Package neuroflow implements a cognitive-modeling engine built from composable
// computation graphs.
//
// Neuroflow models are constructed from four kinds of components:
//
//   - Mechanisms: units of computation wrapping a parameterized function
//   - Projections: weighted connections carrying one mechanism's output to
//     another mechanism's input
//   - Processes: ordered pathways of mechanisms and projections executed serially
//   - Systems: collections of processes composed into a non-linear execution graph
//
// # Architecture Overview
//
// The engine consists of several key packages:
//
//   - linalg: dense vector/matrix primitives and matrix constructors
//   - function: parameterized transfer, integrator, distribution, decision and
//     learning functions
//   - mechanism: Transfer, Integrator, Recurrent and DDM mechanisms
//   - projection: mapping projections with keyword or explicit weight matrices
//   - process: serial pathways with optional backpropagation learning
//   - system: graph composition, role classification and phased scheduling
//   - modelfile: declarative YAML model loading
//   - runlog: run recording with CSV and SQLite persistence
//
// # Basic Usage
//
//	in, _ := mechanism.NewTransfer(mechanism.TransferConfig{Name: "input", Size: 2})
//	out, _ := mechanism.NewTransfer(mechanism.TransferConfig{
//	    Name:     "output",
//	    Size:     2,
//	    Function: &function.Logistic{Gain: 1},
//	})
//	p, _ := process.New(process.Config{Pathway: []process.Entry{{Mechanism: in}, {Mechanism: out}}})
//	s, _ := system.New(system.Config{Processes: []*process.Process{p}})
//
//	results, err := s.Run(system.Stimuli{
//	    "input": {{1, 0}, {0, 1}},
//	})
//
// Models can also be declared in YAML and executed with the nfrun tool; see
// the modelfile package and cmd/nfrun.
package neuroflow
