// Package emb wraps an ONNX sentence-embedding model behind a small encoder
// type. Onnxruntime sessions are not safe for concurrent calls, so Encode
// serializes on an internal mutex.
package emb

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// Config locates the runtime library, model and tokenizer artifacts.
type Config struct {
	// OrtDLL is the path to the onnxruntime shared library; empty uses the
	// platform default lookup.
	OrtDLL        string `json:"ortDLL,omitempty"`
	ModelPath     string `json:"modelPath,omitempty"`
	TokenizerPath string `json:"tokenizerPath,omitempty"`
	MaxSeqLen     int    `json:"maxSeqLen,omitempty"`
}

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

func ensureRuntime(dll string) error {
	ortInitOnce.Do(func() {
		if dll != "" {
			ort.SetSharedLibraryPath(dll)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// Encoder turns text into a mean-pooled, l2-normalized embedding vector.
type Encoder struct {
	mu        sync.Mutex
	tok       *tokenizer.Tokenizer
	session   *ort.DynamicAdvancedSession
	maxSeqLen int
}

// Init loads the tokenizer and opens the ONNX session.
func (e *Encoder) Init(cfg Config) error {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		return errors.New("model and tokenizer paths are required")
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 512
	}
	if err := ensureRuntime(cfg.OrtDLL); err != nil {
		return fmt.Errorf("init onnxruntime: %w", err)
	}
	tok, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return fmt.Errorf("load tokenizer: %w", err)
	}
	tok.WithTruncation(&tokenizer.TruncationParams{MaxLength: cfg.MaxSeqLen})

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil)
	if err != nil {
		return fmt.Errorf("open onnx session: %w", err)
	}
	e.tok = tok
	e.session = session
	e.maxSeqLen = cfg.MaxSeqLen
	return nil
}

// Close releases the ONNX session. The shared runtime environment stays up
// for the process lifetime.
func (e *Encoder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		_ = e.session.Destroy()
		e.session = nil
	}
}

// Encode embeds a single text.
func (e *Encoder) Encode(text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil || e.tok == nil {
		return nil, errors.New("encoder is not initialized")
	}
	enc, err := e.tok.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	n := len(enc.Ids)
	if n == 0 {
		return nil, errors.New("empty encoding")
	}
	if n > e.maxSeqLen {
		n = e.maxSeqLen
	}

	ids := make([]int64, n)
	mask := make([]int64, n)
	types := make([]int64, n)
	for i := 0; i < n; i++ {
		ids[i] = int64(enc.Ids[i])
		mask[i] = int64(enc.AttentionMask[i])
		types[i] = int64(enc.TypeIds[i])
	}

	shape := ort.NewShape(1, int64(n))
	idTensor, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, fmt.Errorf("input_ids tensor: %w", err)
	}
	defer idTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()
	typeTensor, err := ort.NewTensor(shape, types)
	if err != nil {
		return nil, fmt.Errorf("token_type_ids tensor: %w", err)
	}
	defer typeTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := e.session.Run([]ort.Value{idTensor, maskTensor, typeTensor}, outputs); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}
	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, errors.New("unexpected output tensor type")
	}
	defer out.Destroy()

	dims := out.GetShape()
	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected output rank %d", len(dims))
	}
	hidden := int(dims[2])
	return meanPool(out.GetData(), mask, hidden), nil
}

// meanPool averages token vectors weighted by the attention mask and
// l2-normalizes the result.
func meanPool(data []float32, mask []int64, hidden int) []float32 {
	vec := make([]float32, hidden)
	var count float32
	for i, m := range mask {
		if m == 0 {
			continue
		}
		base := i * hidden
		if base+hidden > len(data) {
			break
		}
		for j := 0; j < hidden; j++ {
			vec[j] += data[base+j]
		}
		count++
	}
	if count > 0 {
		for j := range vec {
			vec[j] /= count
		}
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for j := range vec {
			vec[j] *= inv
		}
	}
	return vec
}
