package vocab

import (
	"errors"
	"testing"

	"vocab-go/internal/model"
)

func TestGetOrCreate_SequentialIDs(t *testing.T) {
	v := New(0)

	words := []string{"the", "of", "cat"}
	for i, w := range words {
		lex := v.GetOrCreate(w)
		if lex.ID != uint32(i+1) {
			t.Fatalf("Expected id %d for %q, got %d", i+1, w, lex.ID)
		}
		if !lex.IsOOV || lex.Prob != DefaultOOVProb {
			t.Errorf("Expected new lexeme to start OOV, got %+v", lex)
		}
	}

	again := v.GetOrCreate("of")
	if again.ID != 2 {
		t.Fatalf("Expected existing id 2, got %d", again.ID)
	}
	if v.Len() != 3 {
		t.Fatalf("Expected 3 lexemes, got %d", v.Len())
	}

	lexemes := v.Lexemes()
	for i, lex := range lexemes {
		if lex.Orth != words[i] {
			t.Errorf("Lexemes()[%d] = %q, want %q", i, lex.Orth, words[i])
		}
	}
}

func TestContainsAndLookup(t *testing.T) {
	v := New(10)
	v.SetOOVProb(-15.5)
	lex := v.GetOrCreate("dog")
	lex.Prob = -3
	lex.IsOOV = false

	if !v.Contains("dog") {
		t.Error("Expected vocabulary to contain 'dog'")
	}
	if v.Contains("cat") {
		t.Error("Expected vocabulary not to contain 'cat'")
	}

	if got := v.Lookup("dog"); got.Prob != -3 || got.IsOOV {
		t.Errorf("Lookup(dog) = %+v", got)
	}
	got := v.Lookup("cat")
	if !got.IsOOV || got.Prob != -15.5 || got.ID != 0 {
		t.Errorf("Lookup(cat) = %+v, want OOV placeholder", got)
	}
	if v.Contains("cat") {
		t.Error("Lookup must not create entries")
	}
}

func TestVectors_ResetAndAssign(t *testing.T) {
	v := New(0)
	v.GetOrCreate("dog")
	v.GetOrCreate("cat")

	if err := v.SetVector("dog", []float32{1, 2}); !errors.Is(err, ErrDimension) {
		t.Fatalf("Expected ErrDimension before reset, got %v", err)
	}

	if err := v.ResetVectors(2); err != nil {
		t.Fatalf("ResetVectors failed: %v", err)
	}
	if err := v.SetVector("dog", []float32{1, 2}); err != nil {
		t.Fatalf("SetVector failed: %v", err)
	}
	if err := v.SetVector("bird", []float32{1, 2}); !errors.Is(err, ErrUnknownWord) {
		t.Fatalf("Expected ErrUnknownWord, got %v", err)
	}
	if err := v.SetVector("cat", []float32{1, 2, 3}); !errors.Is(err, ErrDimension) {
		t.Fatalf("Expected ErrDimension, got %v", err)
	}
	if v.VectorCount() != 1 || v.Len() != 2 {
		t.Fatalf("Expected 1 vector over 2 lexemes, got %d over %d", v.VectorCount(), v.Len())
	}

	// A reset discards vectors attached earlier
	if err := v.ResetVectors(3); err != nil {
		t.Fatalf("ResetVectors failed: %v", err)
	}
	if dog, _ := v.Get("dog"); dog.HasVector() {
		t.Error("Expected reset to clear the vector of 'dog'")
	}
	if v.VectorCount() != 0 || v.VectorDim() != 3 {
		t.Errorf("Expected empty storage of dim 3, got %d vectors of dim %d", v.VectorCount(), v.VectorDim())
	}

	if err := v.ResetVectors(0); !errors.Is(err, ErrDimension) {
		t.Errorf("Expected ErrDimension for zero dim, got %v", err)
	}
}

func TestSetVector_Copies(t *testing.T) {
	v := New(0)
	v.GetOrCreate("dog")
	v.ResetVectors(2)

	vec := []float32{1, 2}
	v.SetVector("dog", vec)
	vec[0] = 99

	if dog, _ := v.Get("dog"); dog.Vector[0] != 1 {
		t.Errorf("Expected stored vector to be a copy, got %v", dog.Vector)
	}
}

func TestRestore(t *testing.T) {
	lexemes := []model.Lexeme{
		{ID: 1, Orth: "the", Prob: -2, Cluster: 5, Vector: []float32{1, 0}},
		{ID: 2, Orth: "cat", Prob: -6, IsOOV: false},
	}

	v, err := Restore(lexemes, -18, 2)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if v.Len() != 2 || v.VectorCount() != 1 || v.OOVProb() != -18 {
		t.Fatalf("Unexpected restored vocab: len=%d vectors=%d oov=%v", v.Len(), v.VectorCount(), v.OOVProb())
	}
	if next := v.GetOrCreate("dog"); next.ID != 3 {
		t.Errorf("Expected next id 3 after restore, got %d", next.ID)
	}

	if _, err := Restore([]model.Lexeme{{ID: 2, Orth: "x"}}, 0, 0); err == nil {
		t.Error("Expected error for id gap")
	}
}
