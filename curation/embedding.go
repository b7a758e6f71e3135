package curation

import (
	"strings"

	"curator/config"
)

// chunkWords splits content into chunks of at most n words. The split
// exists because embedding services cap per-call token counts; the
// per-chunk vectors are averaged back into one document vector, which
// trades fidelity for cost.
func chunkWords(content string, n int) []string {
	words := strings.Fields(content)
	if len(words) == 0 {
		return nil
	}
	if n <= 0 {
		n = config.EmbedChunkWords
	}

	chunks := make([]string, 0, (len(words)+n-1)/n)
	for start := 0; start < len(words); start += n {
		end := start + n
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

// averageVectors computes the element-wise mean of equally sized
// vectors. Returns nil for empty input or mismatched dimensions.
func averageVectors(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil
	}

	sum := make([]float64, dim)
	for _, vec := range vectors {
		if len(vec) != dim {
			return nil
		}
		for i, v := range vec {
			sum[i] += float64(v)
		}
	}

	avg := make([]float32, dim)
	for i := range sum {
		avg[i] = float32(sum[i] / float64(len(vectors)))
	}
	return avg
}
