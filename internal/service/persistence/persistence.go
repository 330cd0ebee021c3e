package persistence

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"vocab-go/internal/model"
	"vocab-go/internal/service/vocab"

	"go.uber.org/zap"
)

const (
	FormatVersion = "1.0"
	LexemesFile   = "lexemes.gob"
	MetaFile      = "meta.json"
)

// SerializableVocab is the gob representation of a vocabulary
type SerializableVocab struct {
	Version   string
	OOVProb   float64
	VectorDim int
	Lexemes   []model.Lexeme // Ordered by id
}

// WriteModel creates modelDir if it does not exist (its parent must) and serializes the vocabulary
// and its metadata into it.
func WriteModel(modelDir string, v *vocab.Vocab, meta model.ModelMeta, logger *zap.Logger) error {
	if err := ensureDir(modelDir); err != nil {
		return err
	}

	lexemes := v.Lexemes()
	sv := &SerializableVocab{
		Version:   FormatVersion,
		OOVProb:   v.OOVProb(),
		VectorDim: v.VectorDim(),
		Lexemes:   make([]model.Lexeme, len(lexemes)),
	}
	for i, lex := range lexemes {
		sv.Lexemes[i] = *lex
	}

	meta.OOVProb = sv.OOVProb
	meta.Lexemes = len(sv.Lexemes)
	meta.VectorDim = sv.VectorDim
	meta.Vectors = v.VectorCount()

	lexemesPath := filepath.Join(modelDir, LexemesFile)
	if err := saveToFile(sv, lexemesPath); err != nil {
		return fmt.Errorf("failed to save lexemes: %w", err)
	}
	if err := saveMeta(&meta, filepath.Join(modelDir, MetaFile)); err != nil {
		return fmt.Errorf("failed to save meta: %w", err)
	}

	logger.Info("Saved vocabulary model",
		zap.String("path", modelDir),
		zap.String("id", meta.ID),
		zap.Int("lexemes", meta.Lexemes),
		zap.Int("vectors", meta.Vectors))
	return nil
}

// LoadModel reads a model directory written by WriteModel
func LoadModel(modelDir string, logger *zap.Logger) (*vocab.Vocab, *model.ModelMeta, error) {
	lexemesPath := filepath.Join(modelDir, LexemesFile)
	if _, err := os.Stat(lexemesPath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("no saved model found in %s", modelDir)
	}

	sv, err := loadFromFile(lexemesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load lexemes: %w", err)
	}
	if sv.Version != FormatVersion {
		return nil, nil, fmt.Errorf("unsupported model version %q", sv.Version)
	}

	meta, err := loadMeta(filepath.Join(modelDir, MetaFile))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load meta: %w", err)
	}

	v, err := vocab.Restore(sv.Lexemes, sv.OOVProb, sv.VectorDim)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to restore vocabulary: %w", err)
	}

	logger.Info("Loaded vocabulary model",
		zap.String("path", modelDir),
		zap.String("id", meta.ID),
		zap.String("lang", meta.Lang),
		zap.Int("lexemes", v.Len()))
	return v, meta, nil
}

// ensureDir creates dir without creating missing parents
func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("model path %s is not a directory", dir)
		}
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.Mkdir(dir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	return nil
}

// saveToFile writes the vocabulary with gob encoding
func saveToFile(sv *SerializableVocab, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(sv); err != nil {
		return err
	}
	return file.Sync()
}

func loadFromFile(path string) (*SerializableVocab, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var sv SerializableVocab
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&sv); err != nil {
		return nil, err
	}
	return &sv, nil
}

func saveMeta(meta *model.ModelMeta, path string) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func loadMeta(path string) (*model.ModelMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta model.ModelMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
