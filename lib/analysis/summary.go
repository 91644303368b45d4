package analysis

// CompressionRatio recomputes summary_length / max(original_length, 1) from
// the upstream-reported lengths. The upstream rounds its own ratio to two
// decimals, which is too coarse for the product contract.
func CompressionRatio(originalLength, summaryLength int) float64 {
	if originalLength < 1 {
		originalLength = 1
	}
	return float64(summaryLength) / float64(originalLength)
}
