package domain

// KeyPrefix namespaces every Redis key owned by the service.
const KeyPrefix = "myfridge:"

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model               string
	Dimensions          int
	DistanceMetric      string
	Algorithm           string
	DocumentInstruction string
	QueryInstruction    string
}

// DefaultVectorConfig returns the default configuration tuned for KURE-v1
// style multilingual sentence embeddings served over an OpenAI-compatible API.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:          "nlpai-lab/KURE-v1",
		Dimensions:     1024,
		DistanceMetric: "cosine",
		Algorithm:      "hnsw",
	}
}
