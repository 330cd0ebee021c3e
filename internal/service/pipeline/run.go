package pipeline

import (
	"context"
	"fmt"
	"time"

	"vocab-go/internal/model"
	"vocab-go/internal/service/clusters"
	"vocab-go/internal/service/freqs"
	"vocab-go/internal/service/graph"
	"vocab-go/internal/service/persistence"
	"vocab-go/internal/service/vectors"
	"vocab-go/internal/service/vocab"
	"vocab-go/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GraphExporter writes the cluster hierarchy of a built vocabulary somewhere
type GraphExporter interface {
	Export(ctx context.Context, table *clusters.Table, v *vocab.Vocab) (*graph.ExportStats, error)
}

// VectorExporter writes the vectors of a built vocabulary somewhere
type VectorExporter interface {
	Export(ctx context.Context, collection string, dim int, lexemes []*model.Lexeme) (int, error)
}

// Options describes one vocabulary build
type Options struct {
	Lang         string
	ModelDir     string
	FreqsPath    string
	ClustersPath string // Optional
	VectorsPath  string // Optional
	MinDocFreq   int64
	MinWordFreq  int64
	MaxLength    int
	Smoother     string

	// StrictWordFreq applies MinWordFreq to raw frequencies. When false, MinDocFreq is used for
	// both thresholds, which is how models have historically been built.
	StrictWordFreq bool

	Graph            GraphExporter  // Optional
	Vectors          VectorExporter // Optional
	VectorCollection string
}

// DefaultOptions returns options with the stock thresholds
func DefaultOptions(lang, modelDir, freqsPath string) Options {
	est := freqs.DefaultEstimateOptions()
	return Options{
		Lang:        lang,
		ModelDir:    modelDir,
		FreqsPath:   freqsPath,
		MinDocFreq:  est.MinDocFreq,
		MinWordFreq: est.MinFreq,
		MaxLength:   est.MaxLength,
		Smoother:    est.Smoother,
	}
}

// Result summarizes a finished build
type Result struct {
	Vocab    *vocab.Vocab
	Meta     model.ModelMeta
	Estimate *freqs.Estimate
	Clusters *clusters.Table
	Vectors  *vectors.Stats // Nil when no vectors file was given
}

// estimateOptions maps build options onto the estimator's thresholds
func (o Options) estimateOptions() freqs.EstimateOptions {
	est := freqs.DefaultEstimateOptions()
	est.MinDocFreq = o.MinDocFreq
	est.MinFreq = o.MinDocFreq
	if o.StrictWordFreq {
		est.MinFreq = o.MinWordFreq
	}
	if o.MaxLength > 0 {
		est.MaxLength = o.MaxLength
	}
	if o.Smoother != "" {
		est.Smoother = o.Smoother
	}
	return est
}

// Run builds a vocabulary from the inputs and writes it to opts.ModelDir. Stages run in order and
// ctx is only checked between them. The model directory is not touched unless every stage succeeds.
func Run(ctx context.Context, opts Options, logger *zap.Logger) (*Result, error) {
	if err := util.CheckInputs(opts.FreqsPath, opts.ClustersPath, opts.VectorsPath); err != nil {
		return nil, err
	}

	est := opts.estimateOptions()
	logger.Info("Counting frequencies",
		zap.String("path", opts.FreqsPath),
		zap.Int64("min_doc_freq", est.MinDocFreq),
		zap.Int64("min_freq", est.MinFreq))

	estimate, err := freqs.NewEstimator(est, logger).Estimate(opts.FreqsPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table := clusters.NewTable()
	if opts.ClustersPath != "" {
		logger.Info("Reading clusters", zap.String("path", opts.ClustersPath))
		table, err = clusters.NewReader(clusters.NFCNormalizer{}, logger).Read(opts.ClustersPath)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	v := vocab.New(uint(estimate.Probs.Len()))
	n, err := Populate(v, estimate.Probs, table, estimate.OOVProb)
	if err != nil {
		return nil, err
	}
	logger.Info("Populated vocabulary", zap.Int("lexemes", n), zap.Float64("oov_prob", estimate.OOVProb))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var vecStats *vectors.Stats
	if opts.VectorsPath != "" {
		logger.Info("Reading vectors", zap.String("path", opts.VectorsPath))
		vecStats, err = vectors.NewAssociator(logger).Associate(opts.VectorsPath, v)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	meta := model.ModelMeta{
		ID:          uuid.New().String(),
		Lang:        opts.Lang,
		CreatedAt:   time.Now().UTC(),
		Smoother:    estimate.Smoother,
		MinDocFreq:  est.MinDocFreq,
		MinFreq:     est.MinFreq,
		MaxLength:   est.MaxLength,
		ClusterSize: table.Len(),
	}
	if err := persistence.WriteModel(opts.ModelDir, v, meta, logger); err != nil {
		return nil, err
	}
	meta.OOVProb = v.OOVProb()
	meta.Lexemes = v.Len()
	meta.VectorDim = v.VectorDim()
	meta.Vectors = v.VectorCount()

	if opts.Graph != nil && table.Len() > 0 {
		if _, err := opts.Graph.Export(ctx, table, v); err != nil {
			return nil, fmt.Errorf("cluster graph export failed: %w", err)
		}
	}
	if opts.Vectors != nil && v.VectorCount() > 0 {
		if _, err := opts.Vectors.Export(ctx, opts.VectorCollection, v.VectorDim(), v.Lexemes()); err != nil {
			return nil, fmt.Errorf("vector export failed: %w", err)
		}
	}

	return &Result{
		Vocab:    v,
		Meta:     meta,
		Estimate: estimate,
		Clusters: table,
		Vectors:  vecStats,
	}, nil
}
