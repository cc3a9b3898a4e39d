// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/secrag"
	"github.com/poiesic/secrag/ai"
	"github.com/poiesic/secrag/ai/openai"
	"github.com/poiesic/secrag/core"
	"github.com/poiesic/secrag/edgar"
	"github.com/poiesic/secrag/ingestion"
	"github.com/poiesic/secrag/rag"
	"github.com/poiesic/secrag/reembed"
	"github.com/poiesic/secrag/search"
	"github.com/poiesic/secrag/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "secrag",
		Usage: "Question answering over SEC filings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file (default ./secrag.yaml)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "download",
				Usage:  "Download filings from SEC EDGAR",
				Action: downloadCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "companies",
						Usage: "Path to companies JSON file",
					},
					&cli.StringFlag{
						Name:  "data-dir",
						Usage: "Directory to store downloaded filings",
					},
					&cli.StringFlag{
						Name:  "forms",
						Usage: "Comma-separated form types (10-K, 10-Q, 8-K)",
						Value: "10-K",
					},
					&cli.StringFlag{
						Name:  "years",
						Usage: "Comma-separated target years, e.g. 2020,2021,2022",
					},
					&cli.Float64Flag{
						Name:  "rate-limit",
						Usage: "Requests per second against EDGAR",
						Value: 8.0,
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Ingest downloaded filings into the database",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
					},
					&cli.StringFlag{
						Name:  "data-dir",
						Usage: "Directory containing downloaded filings",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for enrichment",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Tokens per chunk",
					},
					&cli.BoolFlag{
						Name:  "no-context",
						Usage: "Skip AI context summaries and embed raw chunk text",
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Search filing chunks semantically",
				Action: searchCommand,
				Flags:  append(filterFlags(), dbFlag(), maxHitsFlag(), minSimilarityFlag()),
			},
			{
				Name:   "ask",
				Usage:  "Ask a question over the filing corpus",
				Action: askCommand,
				Flags:  append(filterFlags(), dbFlag(), maxHitsFlag(), minSimilarityFlag()),
			},
			{
				Name:   "chat",
				Usage:  "Interactive question answering session",
				Action: chatCommand,
				Flags:  []cli.Flag{dbFlag(), maxHitsFlag(), minSimilarityFlag()},
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all chunks with new embeddings",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show corpus statistics",
				Action: statsCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to BadgerDB database directory",
	}
}

func maxHitsFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "max-hits",
		Usage: "Maximum number of results",
	}
}

func minSimilarityFlag() cli.Flag {
	return &cli.Float64Flag{
		Name:  "min-similarity",
		Usage: "Similarity floor for semantic matches",
	}
}

func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "ticker",
			Usage: "Restrict to a ticker symbol",
		},
		&cli.StringFlag{
			Name:  "cik",
			Usage: "Restrict to a CIK",
		},
		&cli.StringFlag{
			Name:  "form",
			Usage: "Restrict to a form type (10-K, 10-Q, 8-K)",
		},
		&cli.StringFlag{
			Name:  "from",
			Usage: "Earliest filing date (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "Latest filing date, exclusive (YYYY-MM-DD)",
		},
	}
}

func downloadCommand(c *cli.Context) error {
	cfg, err := loadFileConfig(c.String("config"))
	if err != nil {
		return err
	}

	companiesFile := c.String("companies")
	if companiesFile == "" {
		companiesFile = cfg.CompaniesFile
	}
	dataDir := c.String("data-dir")
	if dataDir == "" {
		dataDir = cfg.DataDir
	}

	companies, err := edgar.LoadCompanies(companiesFile)
	if err != nil {
		return err
	}

	forms, err := parseForms(c.String("forms"))
	if err != nil {
		return err
	}

	years, err := parseYears(c.String("years"))
	if err != nil {
		return err
	}

	client, err := edgar.NewClient(edgar.WithRateLimit(c.Float64("rate-limit")))
	if err != nil {
		return err
	}

	bar := progressbar.Default(-1, "downloading filings")
	summary, _, err := client.DownloadAll(c.Context, companies, dataDir, edgar.DownloadOptions{
		Forms: forms,
		Years: years,
		OnFiling: func(company core.Company, filing *core.Filing) {
			bar.Add(1)
		},
	})
	if err != nil {
		return err
	}
	bar.Finish()
	fmt.Println()

	fmt.Printf("Downloaded %d filings for %d companies into %s\n",
		summary.TotalFilings, summary.Companies, dataDir)
	for name, count := range summary.ByCompany {
		fmt.Printf("  %s: %d\n", name, count)
	}

	return nil
}

func ingestCommand(c *cli.Context) error {
	cfg, err := loadFileConfig(c.String("config"))
	if err != nil {
		return err
	}

	dbPath := c.String("db")
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	dataDir := c.String("data-dir")
	if dataDir == "" {
		dataDir = cfg.DataDir
	}

	corpus, err := secrag.Open(dbPath, secrag.WithAIConfig(cfg.aiConfig()))
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer corpus.Close()

	tickers := make(map[string]string)
	if companies, err := edgar.LoadCompanies(cfg.CompaniesFile); err == nil {
		for _, company := range companies {
			tickers[company.CIK] = company.Ticker
		}
	}

	opts := []ingestion.Option{
		ingestion.WithContextSummaries(!c.Bool("no-context")),
		ingestion.WithTickers(tickers),
	}
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, ingestion.WithPoolSize(size))
	}
	if size := c.Int("chunk-size"); size > 0 {
		opts = append(opts, ingestion.WithChunkSize(size))
	}

	pipeline, err := corpus.NewIngestionPipeline(opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	start := time.Now()
	filings, chunks, err := pipeline.IngestDirectory(c.Context, dataDir)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "Waiting for enrichment to finish...")
	pipeline.Wait()

	fmt.Printf("Ingested %d filings (%d chunks) in %v\n",
		filings, chunks, time.Since(start).Round(time.Second))

	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("usage: secrag search [flags] <query>")
	}
	query := strings.Join(c.Args().Slice(), " ")

	cfg, err := loadFileConfig(c.String("config"))
	if err != nil {
		return err
	}

	corpus, searcher, err := openSearcher(c, cfg)
	if err != nil {
		return err
	}
	defer corpus.Close()

	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	maxHits := c.Int("max-hits")
	if maxHits <= 0 {
		maxHits = cfg.Search.MaxHits
	}

	results, err := searcher.Search(c.Context, query, maxHits, filter)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No matching chunks found.")
		return nil
	}

	heading := color.New(color.FgCyan, color.Bold)
	score := color.New(color.FgYellow)
	for i, result := range results {
		heading.Printf("%d. %s\n", i+1, rag.PassageSource(result.Filing))
		score.Printf("   score %.3f, chunk %d\n", result.Score, result.Chunk.Seq)
		fmt.Printf("   %s\n\n", excerpt(result.Chunk.Text, 300))
	}

	return nil
}

func askCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("usage: secrag ask [flags] <question>")
	}
	question := strings.Join(c.Args().Slice(), " ")

	cfg, err := loadFileConfig(c.String("config"))
	if err != nil {
		return err
	}

	corpus, engine, err := openEngine(c, cfg)
	if err != nil {
		return err
	}
	defer corpus.Close()

	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	resp, err := engine.AskStream(c.Context, question, filter, func(chunk []byte) error {
		_, err := os.Stdout.Write(chunk)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Println()

	printSources(resp)
	return nil
}

func chatCommand(c *cli.Context) error {
	cfg, err := loadFileConfig(c.String("config"))
	if err != nil {
		return err
	}

	corpus, engine, err := openEngine(c, cfg)
	if err != nil {
		return err
	}
	defer corpus.Close()

	prompt := color.New(color.FgGreen, color.Bold)
	info := color.New(color.FgHiBlack)

	info.Println("Ask questions about the ingested filings. Type 'exit' to leave.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		prompt.Print("you> ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		resp, err := engine.AskStream(c.Context, question, nil, func(chunk []byte) error {
			_, err := os.Stdout.Write(chunk)
			return err
		})
		if err != nil {
			color.Red("error: %v", err)
			continue
		}
		fmt.Println()
		printSources(resp)
		fmt.Println()
	}

	return scanner.Err()
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	// Open database
	_, chunkRepo, backend, err := badger.NewRepositories(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()
	defer chunkRepo.Close()

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		// Generator values are not needed for reembedding
		ai.WithGeneratorHost(c.String("embedding-host")),
		ai.WithGeneratorModel("dummy"),
	)

	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder := reembed.NewReembedder(chunkRepo, embedder, reembedConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}

	return nil
}

func statsCommand(c *cli.Context) error {
	cfg, err := loadFileConfig(c.String("config"))
	if err != nil {
		return err
	}

	dbPath := c.String("db")
	if dbPath == "" {
		dbPath = cfg.DBPath
	}

	filingRepo, chunkRepo, backend, err := badger.NewRepositories(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	filings, err := filingRepo.CountFilings(c.Context)
	if err != nil {
		return err
	}
	chunks, err := chunkRepo.CountChunks(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("Filings: %d\n", filings)
	fmt.Printf("Chunks:  %d\n", chunks)

	for _, form := range []core.FormType{core.FormType10K, core.FormType10Q, core.FormType8K} {
		byForm, err := filingRepo.GetFilingsByForm(c.Context, form)
		if err != nil {
			return err
		}
		fmt.Printf("  %s: %d\n", form, len(byForm))
	}

	return nil
}

func openSearcher(c *cli.Context, cfg *fileConfig) (*secrag.Corpus, *search.Searcher, error) {
	dbPath := c.String("db")
	if dbPath == "" {
		dbPath = cfg.DBPath
	}

	corpus, err := secrag.Open(dbPath, secrag.WithAIConfig(cfg.aiConfig()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open corpus: %w", err)
	}

	minSim := float32(c.Float64("min-similarity"))
	if minSim == 0 {
		minSim = cfg.Search.MinSimilarity
	}

	searcher, err := corpus.NewSearcher(search.WithMinSimilarity(minSim))
	if err != nil {
		corpus.Close()
		return nil, nil, err
	}

	return corpus, searcher, nil
}

func openEngine(c *cli.Context, cfg *fileConfig) (*secrag.Corpus, *rag.Engine, error) {
	corpus, searcher, err := openSearcher(c, cfg)
	if err != nil {
		return nil, nil, err
	}

	maxHits := c.Int("max-hits")
	if maxHits <= 0 {
		maxHits = cfg.Search.MaxHits
	}

	engine, err := rag.NewEngine(searcher, corpus.Provider(), rag.WithMaxPassages(maxHits))
	if err != nil {
		corpus.Close()
		return nil, nil, err
	}

	return corpus, engine, nil
}

func parseFilter(c *cli.Context) (*search.Filter, error) {
	filter := &search.Filter{
		Ticker: c.String("ticker"),
		CIK:    c.String("cik"),
	}

	if form := c.String("form"); form != "" {
		parsed, err := core.ParseFormType(form)
		if err != nil {
			return nil, err
		}
		filter.Form = parsed
	}

	if from := c.String("from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return nil, fmt.Errorf("invalid from date %q: %w", from, err)
		}
		filter.From = parsed
	}

	if to := c.String("to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			return nil, fmt.Errorf("invalid to date %q: %w", to, err)
		}
		filter.To = parsed
	}

	if filter.Ticker == "" && filter.CIK == "" && filter.Form == 0 &&
		filter.From.IsZero() && filter.To.IsZero() {
		return nil, nil
	}

	return filter, nil
}

func parseForms(s string) ([]core.FormType, error) {
	if s == "" {
		return nil, nil
	}

	var forms []core.FormType
	for _, part := range strings.Split(s, ",") {
		form, err := core.ParseFormType(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, nil
}

func parseYears(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}

	var years []int
	for _, part := range strings.Split(s, ",") {
		year, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", part)
		}
		years = append(years, year)
	}
	return years, nil
}

func printSources(resp *rag.Response) {
	if len(resp.Results) == 0 {
		return
	}

	label := color.New(color.FgHiBlack)
	label.Println("\nSources:")
	seen := make(map[string]bool)
	for _, result := range resp.Results {
		source := rag.PassageSource(result.Filing)
		if seen[source] {
			continue
		}
		seen[source] = true
		label.Printf("  - %s\n", source)
	}
}

func excerpt(text string, limit int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
