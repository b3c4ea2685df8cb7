package services

import (
  "encoding/json"
  "fmt"
  "math"
  "strings"
  "gorm.io/datatypes"
)

const (
  // Summary text is windowed into overlapping word spans before embedding.
  chunkWindowWords = 500
  chunkStepWords   = 450
)

// chunkSummaryText splits text into overlapping windows of
// chunkWindowWords words, advancing chunkStepWords per window. Text at or
// under one window yields a single chunk. Whitespace runs collapse to
// single spaces.
func chunkSummaryText(text string) []string {
  words := strings.Fields(text)
  if len(words) == 0 {
    return nil
  }
  if len(words) <= chunkWindowWords {
    return []string{strings.Join(words, " ")}
  }

  var chunks []string
  for start := 0; start < len(words); start += chunkStepWords {
    end := start + chunkWindowWords
    if end > len(words) {
      end = len(words)
    }
    chunks = append(chunks, strings.Join(words[start:end], " "))
    if end == len(words) {
      break
    }
  }
  return chunks
}

// embeddingText builds the text actually sent to the embedding model.
// Urgent logs and voice memos carry a category prefix so retrieval can
// surface them for category-style queries.
func shiftLogEmbeddingText(content, category string, urgent bool) string {
  content = strings.TrimSpace(content)
  if urgent {
    return fmt.Sprintf("[URGENT - %s] %s", category, content)
  }
  return content
}

func voiceMemoEmbeddingText(transcript, category string) string {
  return fmt.Sprintf("[VOICE MEMO - %s] %s", category, strings.TrimSpace(transcript))
}

// cosine returns the cosine similarity of two vectors, or 0 when either
// has zero norm or the lengths differ.
func cosine(a, b []float32) float64 {
  if len(a) != len(b) || len(a) == 0 {
    return 0
  }
  var dot, na, nb float64
  for i := range a {
    dot += float64(a[i]) * float64(b[i])
    na += float64(a[i]) * float64(a[i])
    nb += float64(b[i]) * float64(b[i])
  }
  if na == 0 || nb == 0 {
    return 0
  }
  return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// parseEmbedding decodes a JSONB float array back into a vector. Bad or
// empty payloads come back nil; scoring treats those as non-matches.
func parseEmbedding(raw datatypes.JSON) []float32 {
  if len(raw) == 0 {
    return nil
  }
  var vals []float64
  if err := json.Unmarshal(raw, &vals); err != nil {
    return nil
  }
  out := make([]float32, len(vals))
  for i, v := range vals {
    out[i] = float32(v)
  }
  return out
}

func embeddingJSON(vec []float32) datatypes.JSON {
  raw, err := json.Marshal(vec)
  if err != nil {
    return datatypes.JSON("[]")
  }
  return datatypes.JSON(raw)
}

func mustJSON(v any) datatypes.JSON {
  raw, err := json.Marshal(v)
  if err != nil {
    return datatypes.JSON("{}")
  }
  return datatypes.JSON(raw)
}
