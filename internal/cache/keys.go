package cache

import "fmt"

// DistributionPrefix namespaces every cached distribution read.
const DistributionPrefix = "distributions:"

func BatchListKey() string {
	return DistributionPrefix + "batches"
}

func BatchKey(batchID string) string {
	return fmt.Sprintf("%sbatch:%s", DistributionPrefix, batchID)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
