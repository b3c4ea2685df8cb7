package db

import "testing"

func TestEmbedDimensions(t *testing.T) {
  cases := []struct {
    name string
    env  string
    want int
  }{
    {"default", "", 1536},
    {"custom", "3072", 3072},
    {"garbage", "not-a-number", 1536},
    {"negative", "-5", 1536},
  }
  for _, tc := range cases {
    t.Run(tc.name, func(t *testing.T) {
      if tc.env != "" {
        t.Setenv("OPENAI_EMBED_DIMENSIONS", tc.env)
      }
      if got := embedDimensions(nil); got != tc.want {
        t.Fatalf("embedDimensions = %d, want %d", got, tc.want)
      }
    })
  }
}
