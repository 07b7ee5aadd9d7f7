package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/satkit/topor"
	"github.com/satkit/topor/internal/ingest"
)

var flagCPUProfile = flag.Bool(
	"cpuprof",
	false,
	"save pprof CPU profile in cpuprof",
)

var flagMemProfile = flag.Bool(
	"memprof",
	false,
	"save pprof memory profile in memprof",
)

var flagTimeout = flag.Float64(
	"timeout",
	0,
	"local solve timeout in seconds (0 disables)",
)

var flagConflictBudget = flag.Int64(
	"conflict-budget",
	0,
	"conflict budget for this solve (0 disables)",
)

var flagDRAT = flag.String(
	"drat",
	"",
	"write a DRAT proof to this file",
)

var flagDRATBinary = flag.Bool(
	"drat-binary",
	false,
	"emit binary rather than text DRAT",
)

const configFileEnvVar = "TOPOR_CONFIG_FILE"

type config struct {
	instanceFile   string
	memProfile     bool
	cpuProfile     bool
	timeoutSeconds float64
	conflictBudget int64
	dratFile       string
	dratBinary     bool
}

func parseConfig() (*config, error) {
	flag.Parse()

	if flag.NArg() == 0 || flag.Arg(0) == "" {
		return nil, fmt.Errorf("missing instance file")
	}
	return &config{
		instanceFile:   flag.Arg(0),
		memProfile:     *flagMemProfile,
		cpuProfile:     *flagCPUProfile,
		timeoutSeconds: *flagTimeout,
		conflictBudget: *flagConflictBudget,
		dratFile:       *flagDRAT,
		dratBinary:     *flagDRATBinary,
	}, nil
}

// loadParamFile applies one "name value" pair per line from the config
// file named by TOPOR_CONFIG_FILE, if set (spec §6 "Configurable input").
func loadParamFile(s *topor.Solver) error {
	path := os.Getenv(configFileEnvVar)
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", configFileEnvVar, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return fmt.Errorf("malformed config line %q", line)
		}
		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("malformed config value %q: %w", fields[1], err)
		}
		if err := s.SetParam(fields[0], value); err != nil {
			return fmt.Errorf("rejected config param %q: %w", fields[0], err)
		}
	}
	return scanner.Err()
}

func run(cfg *config) error {
	s := topor.New(0)

	if err := loadParamFile(s); err != nil {
		return err
	}

	if cfg.dratFile != "" {
		f, err := os.Create(cfg.dratFile)
		if err != nil {
			return fmt.Errorf("could not create DRAT file: %w", err)
		}
		defer f.Close()
		s.DumpDRAT(f, cfg.dratBinary, true)
		defer s.FlushDRAT()
	}

	nVars, nClauses, err := ingest.LoadFile(cfg.instanceFile, s)
	if err != nil {
		return fmt.Errorf("could not parse instance: %w", err)
	}

	fmt.Printf("c variables:  %d\n", nVars)
	fmt.Printf("c clauses:    %d\n", nClauses)

	if s.IsError() {
		fmt.Printf("c status:     %s\n", s.GetStatusExplanation())
		return nil
	}

	t := time.Now()
	status := s.Solve(nil, cfg.timeoutSeconds, cfg.conflictBudget)
	elapsed := time.Since(t)

	stats := s.Stats()
	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c conflicts:  %d (%.2f /sec)\n", stats.Conflicts, float64(stats.Conflicts)/elapsed.Seconds())
	fmt.Printf("c restarts:   %d\n", stats.Restarts)
	fmt.Printf("c status:     %s\n", status.String())

	return nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.cpuProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}

	if cfg.memProfile {
		f, err := os.Create("memprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}
