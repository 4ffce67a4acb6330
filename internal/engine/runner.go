/*
PURPOSE:
  The benchmark sweeps. Each one loops over its configured parameter lists,
  builds circuits, routes them, records the outcome, writes the result file
  and prints a summary.

REQUIREMENTS:
  User-specified:
  - BV: qubits x circuits-per-size, random hidden strings.
  - Large BV: small counts routed for real, large counts estimated.
  - QFT: every width from min to max.
  - QV: qubits x depths x circuits-per-config, seed = idx + 100n + 10000d,
    best of N trials.

  Implementation-discovered:
  - Every record and summary carries the sweep's run id.
  - On cancellation the records gathered so far are still written.
  - Sweep counters and histograms go to a Prometheus text file when
    metrics_file is configured.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (bench subcommands)
  - Uses: internal/engine (Engine, Recorder, Summarize)

ERROR HANDLING:
  - Logs errors but continues (resilience): a failed circuit is skipped and
    produces no record.

USAGE:
  report, err := engine.New(cfg).RunQV(ctx)

RELATED FILES:
  - internal/engine/engine.go
  - internal/engine/summary.go
*/

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/daryltucker/sabre-bench/internal/circuit"
	"github.com/daryltucker/sabre-bench/internal/model"
	"github.com/daryltucker/sabre-bench/internal/output"
	"github.com/daryltucker/sabre-bench/internal/transpile"
	"github.com/google/uuid"
)

// Report is what a sweep produced.
type Report struct {
	RunID      string
	Benchmark  model.Benchmark
	Records    []model.Record
	Summaries  []model.Summary
	Skipped    int
	OutputPath string
}

type sweep struct {
	e      *Engine
	report *Report
	rec    *Recorder
	w      output.RecordWriter
}

func (e *Engine) start(bench model.Benchmark, file, format string) (*sweep, error) {
	w, path, err := e.openOutput(file, format)
	if err != nil {
		return nil, err
	}
	s := &sweep{
		e:      e,
		report: &Report{RunID: uuid.NewString(), Benchmark: bench, OutputPath: path},
		rec:    NewRecorder(),
		w:      w,
	}
	output.Logger.Info("Starting sweep", "benchmark", bench, "run_id", s.report.RunID, "seed", e.seed)
	return s, nil
}

func (s *sweep) add(r model.Record) {
	r.RunID = s.report.RunID
	r.Benchmark = s.report.Benchmark
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	s.rec.Add(r)
	s.e.Metrics.observe(r)
}

func (s *sweep) skip(msg string, err error, args ...any) {
	s.report.Skipped++
	s.e.Metrics.skipped(s.report.Benchmark)
	output.Logger.Error(msg, append(args, "error", err)...)
}

func (s *sweep) finish(ctx context.Context) (*Report, error) {
	s.report.Records = s.rec.Records()
	s.report.Summaries = Summarize(s.report.Records)
	if s.w != nil {
		if err := s.rec.WriteAll(s.w); err != nil {
			return s.report, fmt.Errorf("failed to write results to %s: %w", s.report.OutputPath, err)
		}
		output.Logger.Info("Results written", "path", s.report.OutputPath, "records", len(s.report.Records))
	}
	if name := s.e.Config.MetricsFile; name != "" {
		path := s.e.resolve(name)
		if err := s.e.Metrics.WriteTextfile(path); err != nil {
			return s.report, fmt.Errorf("failed to write metrics to %s: %w", path, err)
		}
		output.Logger.Debug("Metrics written", "path", path)
	}
	if err := ctx.Err(); err != nil {
		return s.report, err
	}
	return s.report, nil
}

// measure builds spec, routes it and fills the circuit and routing fields of a record.
func (e *Engine) measure(ctx context.Context, opt transpile.Optimizer, spec circuit.Spec, trials int) (model.Record, error) {
	c, err := spec.Build()
	if err != nil {
		return model.Record{}, err
	}
	runner := &transpile.Runner{Optimizer: opt, Seed: e.rng.Int63()}
	res, err := runner.Run(ctx, c, trials)
	if err != nil {
		return model.Record{}, err
	}
	r := model.Record{
		Qubits:          spec.Qubits(),
		Depth:           spec.DepthParam(),
		HiddenString:    spec.HiddenString(),
		SwapCount:       res.SwapCount,
		TranspileTime:   res.Elapsed,
		OriginalDepth:   c.Depth(),
		TranspiledDepth: res.Depth,
		OriginalSize:    c.Size(),
		TranspiledSize:  res.Size,
	}
	if seed, ok := spec.Seed(); ok {
		r.Seed = &seed
	}
	return r, nil
}

// RunBV benchmarks random Bernstein-Vazirani circuits.
func (e *Engine) RunBV(ctx context.Context) (*Report, error) {
	cfg := e.Config.BV
	m, opt, err := e.target(cfg.Coupling)
	if err != nil {
		return nil, err
	}
	s, err := e.start(model.BenchBV, cfg.OutputFile, cfg.Format)
	if err != nil {
		return nil, err
	}
	output.Logger.Debug("Coupling map", "name", m.Name(), "qubits", m.Size())

	fmt.Fprintln(e.Out, "Running Bernstein-Vazirani benchmarks...")
loop:
	for _, n := range cfg.Qubits {
		fmt.Fprintf(e.Out, "\nTesting with %d qubits:\n", n)
		for i := 0; i < cfg.CircuitsPerSize; i++ {
			if ctx.Err() != nil {
				break loop
			}
			hidden := circuit.RandomHiddenString(n, e.rng)
			fmt.Fprintf(e.Out, "  Circuit %d/%d - Hidden string: %s\n", i+1, cfg.CircuitsPerSize, hidden)

			spec, err := circuit.NewBVSpec(n, hidden)
			if err != nil {
				s.skip("Invalid circuit", err, "qubits", n, "circuit_idx", i)
				continue
			}
			r, err := e.measure(ctx, opt, spec, 1)
			if err != nil {
				s.skip("Transpile failed", err, "qubits", n, "circuit_idx", i)
				continue
			}
			r.CircuitIdx = i
			s.add(r)

			fmt.Fprintf(e.Out, "    Swap count: %d, Time: %.4fs\n", r.SwapCount, r.TranspileTime.Seconds())
			fmt.Fprintf(e.Out, "    Original depth: %d, Transpiled depth: %d\n", r.OriginalDepth, r.TranspiledDepth)
			fmt.Fprintf(e.Out, "    Original size: %d, Transpiled size: %d\n", r.OriginalSize, r.TranspiledSize)
		}
	}

	rep, err := s.finish(ctx)
	PrintSummaries(e.Out, rep.Summaries)
	return rep, err
}

// RunBVLarge routes the small sizes for real and estimates the large ones.
func (e *Engine) RunBVLarge(ctx context.Context) (*Report, error) {
	cfg := e.Config.BVLarge
	_, opt, err := e.target(cfg.SmallCoupling)
	if err != nil {
		return nil, err
	}
	s, err := e.start(model.BenchBVLarge, cfg.OutputFile, cfg.Format)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(e.Out, "Testing small circuits with the optimizer:")
	for _, n := range cfg.SmallQubits {
		if ctx.Err() != nil {
			break
		}
		fmt.Fprintf(e.Out, "  Testing with %d qubits:\n", n)
		spec, err := circuit.NewBVSpec(n, circuit.RandomHiddenString(n, e.rng))
		if err != nil {
			s.skip("Invalid circuit", err, "qubits", n)
			continue
		}
		r, err := e.measure(ctx, opt, spec, 1)
		if err != nil {
			s.skip("Transpile failed", err, "qubits", n)
			continue
		}
		s.add(r)
		fmt.Fprintf(e.Out, "    Swap count: %d, Time: %.4fs\n", r.SwapCount, r.TranspileTime.Seconds())
		fmt.Fprintf(e.Out, "    Original depth: %d, Transpiled depth: %d\n", r.OriginalDepth, r.TranspiledDepth)
	}

	fmt.Fprintln(e.Out, "\nEstimating large circuits:")
	for _, n := range cfg.LargeQubits {
		if ctx.Err() != nil {
			break
		}
		fmt.Fprintf(e.Out, "  Estimating with %d qubits:\n", n)
		spec, err := circuit.LargeBVSpec(n, cfg.Density, e.rng)
		if err != nil {
			s.skip("Invalid circuit", err, "qubits", n)
			continue
		}
		est := e.Estimator.Estimate(spec)
		s.add(model.Record{
			Qubits:          n,
			HiddenString:    spec.HiddenString(),
			Estimated:       true,
			SwapCount:       est.Swaps,
			TranspileTime:   est.Elapsed,
			OriginalDepth:   est.BaseDepth,
			TranspiledDepth: est.Depth,
			OriginalSize:    spec.TotalGates(),
			TranspiledSize:  spec.TotalGates() + est.Swaps,
		})
		fmt.Fprintf(e.Out, "    Estimated swaps: %d, Time: %.4fs\n", est.Swaps, est.Elapsed.Seconds())
		fmt.Fprintf(e.Out, "    Original depth: %d, Estimated depth: %d\n", est.BaseDepth, est.Depth)
	}

	return s.finish(ctx)
}

// RunQFT routes the QFT for every width in [MinQubits, MaxQubits].
func (e *Engine) RunQFT(ctx context.Context) (*Report, error) {
	cfg := e.Config.QFT
	_, opt, err := e.target(cfg.Coupling)
	if err != nil {
		return nil, err
	}
	s, err := e.start(model.BenchQFT, cfg.OutputFile, cfg.Format)
	if err != nil {
		return nil, err
	}

	for n := cfg.MinQubits; n <= cfg.MaxQubits; n++ {
		if ctx.Err() != nil {
			break
		}
		spec, err := circuit.NewQFTSpec(n)
		if err != nil {
			s.skip("Invalid circuit", err, "qubits", n)
			continue
		}
		r, err := e.measure(ctx, opt, spec, 1)
		if err != nil {
			s.skip("Transpile failed", err, "qubits", n)
			continue
		}
		s.add(r)

		fmt.Fprintf(e.Out, "\n--- QFT Circuit with %d qubits ---\n", n)
		fmt.Fprintf(e.Out, "Transpilation Time: %.4f seconds\n", r.TranspileTime.Seconds())
		fmt.Fprintf(e.Out, "Original Circuit Depth: %d\n", r.OriginalDepth)
		fmt.Fprintf(e.Out, "Transpiled Circuit Depth: %d\n", r.TranspiledDepth)
		fmt.Fprintf(e.Out, "Number of Operations: %d\n", r.TranspiledSize)
	}

	return s.finish(ctx)
}

// RunQV routes seeded quantum volume circuits, best of Trials each.
func (e *Engine) RunQV(ctx context.Context) (*Report, error) {
	cfg := e.Config.QV
	_, opt, err := e.target(cfg.Coupling)
	if err != nil {
		return nil, err
	}
	s, err := e.start(model.BenchQV, cfg.OutputFile, cfg.Format)
	if err != nil {
		return nil, err
	}

	total := len(cfg.Qubits) * len(cfg.Depths) * cfg.CircuitsPerConfig
	fmt.Fprintf(e.Out, "Running %d QV circuits...\n", total)
	k := 0
loop:
	for _, n := range cfg.Qubits {
		for _, d := range cfg.Depths {
			for i := 0; i < cfg.CircuitsPerConfig; i++ {
				if ctx.Err() != nil {
					break loop
				}
				k++
				fmt.Fprintf(e.Out, "Processing circuit %d/%d: %d qubits, depth %d, idx %d\n", k, total, n, d, i)

				spec, err := circuit.NewQVSpec(n, d, circuit.QVSeed(n, d, i))
				if err != nil {
					s.skip("Invalid circuit", err, "qubits", n, "depth", d, "circuit_idx", i)
					continue
				}
				r, err := e.measure(ctx, opt, spec, cfg.Trials)
				if err != nil {
					s.skip("Transpile failed", err, "qubits", n, "depth", d, "circuit_idx", i)
					continue
				}
				r.CircuitIdx = i
				s.add(r)

				fmt.Fprintf(e.Out, "  Swap count: %d, Time: %.4fs, Original depth: %d, Transpiled depth: %d\n",
					r.SwapCount, r.TranspileTime.Seconds(), r.OriginalDepth, r.TranspiledDepth)
			}
		}
	}

	rep, err := s.finish(ctx)
	PrintSummaries(e.Out, rep.Summaries)
	return rep, err
}
