// Package embedder converts text into fixed-dimension vectors for
// similarity search.
//
// Three providers implement the Embedder interface:
//
//   - ollama: a local Ollama server (default model nomic-embed-text,
//     768 dimensions). The default when no provider is configured.
//   - openai: the OpenAI embeddings API (text-embedding-3-small).
//   - local: a deterministic hash-based embedder that needs no network
//     or credentials; identical text always produces the same vector.
//
// Results are cached in an in-process LRU keyed by the SHA-256 of the
// input text, the same digest chunk content hashes use, and remote
// calls retry with exponential backoff.
//
//	emb, err := embedder.NewFromEnv()
//	if err != nil {
//	    return err
//	}
//	defer emb.Close()
//
//	e, err := emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: query})
package embedder
