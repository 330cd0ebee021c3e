package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"

	"vocab-go/internal/config"
	"vocab-go/internal/controller"
	"vocab-go/internal/handler"
	"vocab-go/internal/service/graph"
	"vocab-go/internal/service/persistence"
	"vocab-go/internal/service/pipeline"
	"vocab-go/internal/service/vectorstore"
	"vocab-go/internal/util"
	"vocab-go/pkg/mcp"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	var configPath = flag.String("config", "", "Path to YAML configuration file")
	var lang = flag.String("lang", "", "Model language")
	var outputDir = flag.String("output", "", "Model directory to write")
	var freqsPath = flag.String("freqs", "", "Frequency file (freq, doc_freq, word per line)")
	var clustersPath = flag.String("clusters", "", "Optional Brown clusters file")
	var vectorsPath = flag.String("vectors", "", "Optional word vectors file")
	var minDocFreq = flag.Int64("min-doc-freq", config.DefaultMinDocFreq, "Minimum document frequency")
	var minWordFreq = flag.Int64("min-word-freq", config.DefaultMinWordFreq, "Minimum word frequency")
	var strict = flag.Bool("strict-word-freq", false, "Apply -min-word-freq to raw frequencies")
	var serveDir = flag.String("serve", "", "Serve a built model directory over HTTP instead of building")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	cfg.Pipeline.Apply(flagOverrides(lang, outputDir, freqsPath, clustersPath, vectorsPath, minDocFreq, minWordFreq, strict))

	logger, err := newLogger(&cfg.App)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully", zap.Any("pipeline", cfg.Pipeline))

	if *serveDir != "" {
		serve(cfg, *serveDir, logger)
		return
	}
	build(cfg, logger)
}

func newLogger(app *config.AppConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(app.LogLevel)
	if err != nil {
		return nil, err
	}
	cfgZap := zap.NewProductionConfig()
	cfgZap.Level.SetLevel(level)
	cfgZap.OutputPaths = app.LogOutputs
	return cfgZap.Build()
}

// flagOverrides keeps only the flags given on the command line, so an explicit 0 threshold is honoured
func flagOverrides(lang, outputDir, freqs, clusters, vectors *string, minDocFreq, minWordFreq *int64, strict *bool) config.PipelineOverrides {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var o config.PipelineOverrides
	if set["lang"] {
		o.Lang = lang
	}
	if set["output"] {
		o.OutputDir = outputDir
	}
	if set["freqs"] {
		o.FreqsPath = freqs
	}
	if set["clusters"] {
		o.ClustersPath = clusters
	}
	if set["vectors"] {
		o.VectorsPath = vectors
	}
	if set["min-doc-freq"] {
		o.MinDocFreq = minDocFreq
	}
	if set["min-word-freq"] {
		o.MinWordFreq = minWordFreq
	}
	if set["strict-word-freq"] {
		o.StrictWordFreq = strict
	}
	return o
}

func build(cfg *config.Config, logger *zap.Logger) {
	ctx := context.Background()
	p := cfg.Pipeline
	if p.OutputDir == "" || p.FreqsPath == "" {
		logger.Fatal("Both an output directory and a frequency file are required")
	}

	opts := pipeline.Options{
		Lang:           p.Lang,
		ModelDir:       p.OutputDir,
		FreqsPath:      p.FreqsPath,
		ClustersPath:   p.ClustersPath,
		VectorsPath:    p.VectorsPath,
		MinDocFreq:     p.MinDocFreq,
		MinWordFreq:    p.MinWordFreq,
		MaxLength:      p.MaxLength,
		Smoother:       p.Smoother,
		StrictWordFreq: p.StrictWordFreq,
	}

	if db := openGraph(ctx, cfg, logger); db != nil {
		defer db.Close(ctx)
		opts.Graph = graph.NewClusterExporter(db, logger)
	}

	if cfg.Qdrant.Host != "" {
		store, err := vectorstore.NewQdrantStore(cfg.Qdrant.Host, cfg.Qdrant.Port, cfg.Qdrant.APIKey, cfg.Qdrant.BatchSize, logger)
		if err == nil {
			if err = store.Health(ctx); err != nil {
				store.Close()
			}
		}
		if err != nil {
			logger.Warn("Failed to initialize Qdrant, vector export will be disabled", zap.Error(err))
		} else {
			defer store.Close()
			opts.Vectors = store
			opts.VectorCollection = cfg.Qdrant.Collection
			if opts.VectorCollection == "" {
				opts.VectorCollection = "lexemes_" + p.Lang
			}
		}
	}

	res, err := pipeline.Run(ctx, opts, logger)
	if err != nil {
		var missing *util.MissingInputError
		if errors.As(err, &missing) {
			logger.Fatal(missing.Title, zap.String("path", missing.Path))
		}
		logger.Fatal("Vocabulary build failed", zap.Error(err))
	}

	logger.Info("Model written",
		zap.String("dir", p.OutputDir),
		zap.String("id", res.Meta.ID),
		zap.Int("lexemes", res.Meta.Lexemes),
		zap.Int("vectors", res.Meta.Vectors))
}

// openGraph returns the configured graph database, preferring an embedded Kuzu store.
// Nil when none is configured or reachable.
func openGraph(ctx context.Context, cfg *config.Config, logger *zap.Logger) graph.GraphDatabase {
	var db graph.GraphDatabase
	var err error
	switch {
	case cfg.Kuzu.Path != "":
		db, err = graph.NewKuzuDatabase(cfg.Kuzu.Path, logger)
	case cfg.Neo4j.URI != "":
		db, err = graph.NewNeo4jDatabase(cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database, logger)
	default:
		return nil
	}
	if err != nil {
		logger.Warn("Failed to open graph database, cluster export will be disabled", zap.Error(err))
		return nil
	}
	if err := db.VerifyConnectivity(ctx); err != nil {
		logger.Warn("Graph database unreachable, cluster export will be disabled", zap.Error(err))
		db.Close(ctx)
		return nil
	}
	return db
}

func serve(cfg *config.Config, modelDir string, logger *zap.Logger) {
	v, meta, err := persistence.LoadModel(modelDir, logger)
	if err != nil {
		logger.Fatal("Failed to load model", zap.String("dir", modelDir), zap.Error(err))
	}

	lexiconController := controller.NewLexiconController(v, meta, logger)
	var mcpServer *mcp.LexiconServer
	if cfg.Mcp.Enabled {
		mcpServer = mcp.NewLexiconServer(v, logger)
	}

	router := handler.SetupRouter(lexiconController, mcpServer, cfg.Mcp.Path, logger)

	logger.Info("Starting server", zap.Int("port", cfg.App.Port), zap.Int("lexemes", v.Len()))
	if err := http.ListenAndServe(cfg.App.GetAddress(), router); err != nil {
		logger.Fatal("Failed to start server", zap.String("address", cfg.App.GetAddress()), zap.Error(err))
	}
}
