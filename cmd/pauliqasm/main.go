// Command pauliqasm translates a sum of Pauli operators into an OpenQASM
// program.
//
//	pauliqasm -in ops.txt [-out prog.qasm] [-qasm 2|3] [-param] [-mult 0.5]
//	          [-strategy sequential|pool|fanout] [-workers N]
//	          [-config pauliqasm.yaml] [-log-level info] [-log-file run.log]
//	          [-stats] [-view]
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tebeka/atexit"

	"pauliqasm/internal/circuit"
	"pauliqasm/internal/config"
	"pauliqasm/internal/pauli"
	"pauliqasm/internal/reduce"
	"pauliqasm/internal/translate"
	"pauliqasm/internal/viewer"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

type cliFlags struct {
	configPath string
	logFile    string
	stats      bool
	view       bool
	over       config.Options
	// param is set only when -param appears on the command line, so that
	// -param=false can switch off a config file's parameterize.
	param *bool
}

func parseFlags(args []string, stderr io.Writer) (cliFlags, error) {
	var cf cliFlags
	var mult float64
	var version int
	var param bool

	fs := flag.NewFlagSet("pauliqasm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cf.over.Input, "in", "", "input file of `<pauli> <coefficient> <tag>` lines (default stdin)")
	fs.StringVar(&cf.over.Output, "out", "", "write the program to this file instead of stdout")
	fs.IntVar(&version, "qasm", 0, "OpenQASM version, 2 or 3 (default 2)")
	fs.BoolVar(&param, "param", false, "emit symbolic angles with input declarations (needs -qasm 3)")
	fs.Float64Var(&mult, "mult", 0, "angle multiplier (default literal 2*)")
	fs.StringVar(&cf.over.Strategy, "strategy", "", "reduction strategy: "+strings.Join(reduce.Names(), ", ")+" (default pool)")
	fs.IntVar(&cf.over.Workers, "workers", 0, "worker count (default number of CPUs)")
	fs.StringVar(&cf.over.Logging.Level, "log-level", "", "trace, debug, info, warn or error")
	fs.StringVar(&cf.over.Logging.Format, "log-format", "", "text or json")
	fs.StringVar(&cf.logFile, "log-file", "", "append logs to this file instead of stderr")
	fs.StringVar(&cf.configPath, "config", "", "YAML options file")
	fs.BoolVar(&cf.stats, "stats", false, "print run statistics to stderr")
	fs.BoolVar(&cf.view, "view", false, "open the translated program in the circuit viewer")
	if err := fs.Parse(args); err != nil {
		return cf, err
	}
	if fs.NArg() > 0 {
		return cf, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mult":
			cf.over.Multiplier = &mult
		case "qasm":
			cf.over.Version = version
		case "param":
			cf.param = &param
		}
	})
	return cf, nil
}

// openLogSink opens path for appending behind a buffer. The returned close
// func flushes and closes it.
func openLogSink(path string) (io.Writer, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	bw := bufio.NewWriter(f)
	return bw, func() {
		_ = bw.Flush()
		_ = f.Close()
	}, nil
}

func gateCounts(prog string) string {
	c, err := circuit.Parse(prog)
	if err != nil {
		return err.Error()
	}
	counts := c.CountByType()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	slices.Sort(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s %d", strings.ToLower(name), counts[name])
	}
	return strings.Join(parts, ", ")
}

func printLineError(w io.Writer, err error) {
	var le *pauli.LineError
	if errors.As(err, &le) {
		fmt.Fprintf(w, "Error! At line %d\n%s\n", le.Line, le.Reason)
		return
	}
	if errors.Is(err, pauli.ErrNoOperators) {
		fmt.Fprintln(w, "Error! No operator provided!")
		return
	}
	fmt.Fprintf(w, "Error! %v\n", err)
}

func statsTable(res *translate.Result, opts config.Options) string {
	st := res.Stats
	t := table.NewWriter()
	t.SetTitle("Translation")
	t.AppendHeader(table.Row{"Stage", "Elapsed", "Detail"})
	t.AppendRow(table.Row{"parse", st.Parse, fmt.Sprintf("%d operators, %d qubits", st.Operators, st.Qubits)})
	t.AppendRow(table.Row{"reduce", st.Reduce, fmt.Sprintf("%s, %d workers, %d fragments", st.Strategy, st.Workers, st.Fragments)})
	t.AppendRow(table.Row{"assemble", st.Assemble, fmt.Sprintf("OpenQASM %d, %d params, %d bytes", opts.Version, st.Params, st.Bytes)})
	t.AppendRow(table.Row{"gates", "", gateCounts(res.Program.String())})
	t.AppendFooter(table.Row{"total", st.Total(), ""})
	return t.Render()
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cf, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	opts := config.Default()
	if cf.configPath != "" {
		fileOpts, err := config.Load(cf.configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error! %v\n", err)
			return exitUsage
		}
		opts = config.Merge(opts, fileOpts)
	}
	opts = config.Merge(opts, cf.over)
	if cf.param != nil {
		opts.Parameterize = *cf.param
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error! %v\n", err)
		return exitUsage
	}

	logOut := stderr
	if cf.logFile != "" {
		w, closeSink, err := openLogSink(cf.logFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error! %v\n", err)
			return exitUsage
		}
		// atexit.Exit skips deferred calls; flush there instead.
		atexit.Register(closeSink)
		logOut = w
	}
	log := opts.Logging.NewLogger(logOut)
	log.Debug("options", "version", opts.Version, "strategy", opts.Strategy, "workers", opts.Workers, "parameterize", opts.Parameterize)

	var res *translate.Result
	if opts.Input == "" || opts.Input == "-" {
		res, err = translate.Run(ctx, stdin, opts, log)
		if err == nil && opts.Output != "" {
			err = translate.Persist(ctx, opts.Output, res.Program)
		}
	} else {
		res, err = translate.File(ctx, opts, log)
	}
	if err != nil {
		log.Error("translation failed", "err", err)
		printLineError(stderr, err)
		return exitFailed
	}

	if cf.stats {
		fmt.Fprintln(stderr, statsTable(res, opts))
	}

	if cf.view {
		c, err := circuit.Parse(res.Program.String())
		if err != nil {
			fmt.Fprintf(stderr, "Error! %v\n", err)
			return exitFailed
		}
		title := "stdin"
		if opts.Input != "" && opts.Input != "-" {
			title = filepath.Base(opts.Input)
		}
		if err := viewer.Run(c, res.Program.String(), title); err != nil {
			fmt.Fprintf(stderr, "Error! %v\n", err)
			return exitFailed
		}
		return exitOK
	}

	if opts.Output == "" {
		if _, err := res.Program.WriteTo(stdout); err != nil {
			fmt.Fprintf(stderr, "Error! %v\n", err)
			return exitFailed
		}
	}
	return exitOK
}

func main() {
	atexit.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
