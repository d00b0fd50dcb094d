package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/retentioneering/retentioneering-go/pkg/edgelist"
	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
	csvio "github.com/retentioneering/retentioneering-go/pkg/io/csvio"
	jsonlio "github.com/retentioneering/retentioneering-go/pkg/io/jsonlio"
	parquetio "github.com/retentioneering/retentioneering-go/pkg/io/parquetio"
)

var version = "0.1.0-dev"

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	configPath := flag.String("config", "", "Path to pipeline config (JSON, YAML or TOML)")
	describe := flag.Bool("describe", false, "Print a summary of the resulting stream")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if *showVersion {
		fmt.Println("reten", version)
		return
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "no config provided; nothing to do. try --config <file> or --version")
		os.Exit(2)
	}

	log := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		log = l
	}
	defer func() { _ = log.Sync() }()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	raw, err := readInput(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	stream, err := es.New(raw, es.Options{
		RawSchema:      cfg.RawSchema(),
		EventsOrder:    cfg.EventsOrder,
		UserSampleSize: cfg.SampleSize,
		UserSampleSeed: cfg.SampleSeed,
		Logger:         log,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// build the pipeline as a chain of graph nodes
	graph := es.NewPGraph(stream)
	var tail es.Node = graph.Root()
	for _, step := range cfg.Steps {
		p, err := BuildProcessor(step)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		n := es.NewEventsNode(p)
		if err := graph.AddNode(n, tail); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		tail = n
	}

	result, err := graph.Combine(context.Background(), tail)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *describe {
		fmt.Print(es.Describe(result).ReportText())
	}

	if cfg.Output.Path != "" {
		frame := result.ToFrame(es.FrameOptions{RawCols: cfg.Output.RawCols, ShowDeleted: cfg.Output.ShowDeleted})
		if err := writeOutput(cfg, frame); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if cfg.Edgelist != nil {
		edges, err := edgelist.Compute(result, edgelist.Options{
			WeightCol: cfg.Edgelist.WeightCol,
			Norm:      cfg.Edgelist.Norm,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := writeEdgelist(cfg.Edgelist.Path, edges); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func readInput(cfg *Config) (*es.Frame, error) {
	switch cfg.Input.Type {
	case "", "csv":
		delim := rune(0)
		if cfg.Input.Delimiter != "" {
			delim = rune(cfg.Input.Delimiter[0])
		}
		return csvio.ReadFile(cfg.Input.Path, csvio.ReaderOptions{
			HasHeader: cfg.Input.HasHeader,
			Delimiter: delim,
		})
	case "jsonl":
		r, closer, err := jsonlio.Open(cfg.Input.Path, jsonlio.ReaderOptions{})
		if err != nil {
			return nil, err
		}
		defer func() { _ = closer.Close() }()
		schema, err := r.InferSchema()
		if err != nil {
			return nil, err
		}
		return r.ReadAll(schema)
	case "parquet":
		r, err := parquetio.OpenReader(cfg.Input.Path, 0)
		if err != nil {
			return nil, err
		}
		defer func() { _ = r.Close() }()
		return r.ReadAll()
	default:
		return nil, fmt.Errorf("unsupported input type %q", cfg.Input.Type)
	}
}

func writeOutput(cfg *Config, frame *es.Frame) error {
	switch cfg.Output.Type {
	case "", "csv":
		delim := rune(0)
		if cfg.Output.Delimiter != "" {
			delim = rune(cfg.Output.Delimiter[0])
		}
		return csvio.WriteAll(cfg.Output.Path, frame, csvio.WriterOptions{Delimiter: delim})
	case "jsonl":
		return jsonlio.WriteAll(cfg.Output.Path, frame)
	case "parquet":
		return parquetio.WriteAll(cfg.Output.Path, frame)
	default:
		return fmt.Errorf("unsupported output type %q", cfg.Output.Type)
	}
}

func writeEdgelist(path string, edges []edgelist.Edge) error {
	f := es.NewFrame(es.FrameSchema{Columns: []es.ColumnSchema{
		{Name: "source", Type: es.KindString},
		{Name: "target", Type: es.KindString},
		{Name: "weight", Type: es.KindFloat},
	}})
	for _, e := range edges {
		f.AppendNullRow()
		row := f.Rows() - 1
		_ = f.SetCell(row, "source", e.Source)
		_ = f.SetCell(row, "target", e.Target)
		_ = f.SetCell(row, "weight", e.Weight)
	}
	return csvio.WriteAll(path, f, csvio.WriterOptions{})
}
