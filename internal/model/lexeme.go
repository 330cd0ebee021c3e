package model

import "time"

// Lexeme is the per-word record held by the vocabulary store
type Lexeme struct {
	ID      uint32    // Sequential id, minted on first creation
	Orth    string    // Literal word form
	Prob    float64   // Smoothed log-probability
	IsOOV   bool      // True until the word is seen in the frequency list
	Cluster uint64    // Bit-reversed Brown cluster path
	Vector  []float32 // Optional dense vector
}

// HasVector reports whether a vector is attached
func (l *Lexeme) HasVector() bool {
	return len(l.Vector) > 0
}

// FrequencyRecord is one parsed line of the frequency file
type FrequencyRecord struct {
	Freq    int64  // Raw frequency
	DocFreq int64  // Document frequency
	Word    string // Encoded word literal, as stored in the file
}

// ModelMeta describes a serialized vocabulary model
type ModelMeta struct {
	ID          string    `json:"id"`
	Lang        string    `json:"lang"`
	CreatedAt   time.Time `json:"created_at"`
	Smoother    string    `json:"smoother"`
	OOVProb     float64   `json:"oov_prob"`
	Lexemes     int       `json:"lexemes"`
	VectorDim   int       `json:"vector_dim"`
	Vectors     int       `json:"vectors"`
	MinDocFreq  int64     `json:"min_doc_freq"`
	MinFreq     int64     `json:"min_freq"`
	MaxLength   int       `json:"max_length"`
	ClusterSize int       `json:"clusters"`
}
