package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/psundar/indium-chat/internal/models"
	"github.com/psundar/indium-chat/internal/types"
	cfgPkg "github.com/psundar/indium-chat/pkg/config"
	"github.com/psundar/indium-chat/pkg/corpus"
	"github.com/psundar/indium-chat/pkg/llm"
	"github.com/psundar/indium-chat/pkg/pipeline"
	"github.com/psundar/indium-chat/pkg/processor"
	"github.com/psundar/indium-chat/pkg/retriever"
	"github.com/psundar/indium-chat/pkg/scraper"
	"github.com/psundar/indium-chat/pkg/session"
	"github.com/psundar/indium-chat/pkg/store"
	"github.com/psundar/indium-chat/server"
)

func main() {
	var configPath string
	var mode string
	var docsURL string

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&mode, "mode", "serve", "Mode: serve or ingest")
	flag.StringVar(&docsURL, "docs-url", "", "Site URL to scrape in ingest mode")
	flag.Parse()

	config, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	switch mode {
	case "ingest":
		err = runIngest(config, docsURL)
	case "serve":
		if errs := config.Validate(); len(errs) > 0 {
			for _, e := range errs {
				color.Red("config: %v", e)
			}
			os.Exit(1)
		}
		err = runServe(config)
	default:
		err = fmt.Errorf("unknown mode: %s", mode)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func runServe(config *cfgPkg.Config) error {
	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:   config.Embedding.Model,
		BaseURL: config.Embedding.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %v", err)
	}

	var vectorStore types.VectorStore
	if config.Database.URL != "" {
		vectorStore, err = store.NewWithConfig(store.VectorStoreConfig{
			ConnString: config.Database.URL,
			TableName:  config.Database.TableName,
			VectorDim:  config.Database.VectorDim,
			BatchSize:  config.Database.BatchSize,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize vector store: %v", err)
		}
	} else {
		color.Yellow("DATABASE_URL not set, using in-memory index")
		vectorStore = store.NewMemoryStore()
	}
	defer vectorStore.Close()

	docs, err := corpus.Load(config.Corpus.Path)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %v", err)
	}
	color.Green("✓ Loaded %d corpus documents", len(docs))

	if err := indexCorpus(embedder, vectorStore, docs, config.Database.BatchSize); err != nil {
		return fmt.Errorf("failed to index corpus: %v", err)
	}

	chatEngine, err := llm.NewWithConfig(llm.ChatConfig{
		Model:       config.LLM.Model,
		MaxTokens:   config.LLM.MaxTokens,
		Temperature: config.LLM.Temperature,
		BaseURL:     config.LLM.BaseURL,
		APIKey:      config.LLM.APIKey,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chat engine: %v", err)
	}

	sessions := session.NewStore(session.Config{
		MaxSessions: config.Sessions.MaxSessions,
		MaxTurns:    config.Sessions.MaxTurns,
	})

	p := pipeline.New(
		retriever.New(embedder, vectorStore, config.Retrieval.TopK),
		chatEngine,
		pipeline.NewSourceAttributor(embedder, vectorStore, docs, config.Retrieval.ScoreThreshold, config.Retrieval.MaxSources),
		sessions,
		config.Sessions.HistoryLimit,
	)

	srv := server.New(server.Config{
		Address:   config.Server.Address,
		StaticDir: config.Server.StaticDir,
	}, p)

	return srv.Run()
}

func indexCorpus(embedder types.Embedder, vectorStore types.VectorStore, docs []models.Document, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 100
	}

	ctx := context.Background()
	bar := getProgressBar(len(docs), " Indexing corpus...")

	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[i:end]

		texts := make([]string, len(batch))
		for j, doc := range batch {
			texts[j] = doc.Content
		}

		embeddings, err := embedder.CreateEmbedding(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed batch: %v", err)
		}

		if err := vectorStore.Add(ctx, embeddings, batch); err != nil {
			return fmt.Errorf("failed to store batch: %v", err)
		}
		bar.Add(len(batch))
	}
	bar.Finish()
	color.Green("\n✓ Indexed %d documents", len(docs))

	return nil
}

func runIngest(config *cfgPkg.Config, docsURL string) error {
	if docsURL == "" {
		return fmt.Errorf("ingest mode requires -docs-url")
	}

	color.Blue("\nStarting ingestion for %s\n", docsURL)

	var scrapeCount int32
	s, err := scraper.NewWithConfig(scraper.ScraperConfig{
		BaseURL:           docsURL,
		MaxDepth:          config.Scraper.MaxDepth,
		RateLimit:         config.Scraper.RateLimit,
		IgnorePatterns:    config.Scraper.IgnorePatterns,
		AllowedExtensions: config.Scraper.AllowedExtensions,
		OnProgress: func(url string) {
			atomic.AddInt32(&scrapeCount, 1)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize scraper: %v", err)
	}

	scrapingBar := getProgressBar(-1, " Scraping site...")
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(100 * time.Millisecond):
				scrapingBar.Set(int(atomic.LoadInt32(&scrapeCount)))
			}
		}
	}()

	pages, err := s.Scrape(context.Background(), docsURL)
	close(done)
	scrapingBar.Finish()
	if err != nil {
		return fmt.Errorf("failed to scrape site: %v", err)
	}
	color.Green("✓ Scraped %d pages\n", len(pages))

	proc := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:    config.Processor.ChunkSize,
		ChunkOverlap: config.Processor.ChunkOverlap,
	})

	docs, err := proc.Process(pages)
	if err != nil {
		return fmt.Errorf("failed to process pages: %v", err)
	}
	color.Green("✓ Processed into %d documents\n", len(docs))

	if err := corpus.Save(config.Corpus.Path, docs); err != nil {
		return fmt.Errorf("failed to write corpus: %v", err)
	}
	color.Green("✓ Wrote corpus to %s\n", config.Corpus.Path)

	return nil
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("items"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
