package enums

import "fmt"

// LedgerBucket maps to the ledger_bucket_enum enum in Postgres.
type LedgerBucket string

const (
	LedgerBucketCash      LedgerBucket = "cash"
	LedgerBucketPrincipal LedgerBucket = "principal"
	LedgerBucketInterest  LedgerBucket = "interest"
	LedgerBucketFees      LedgerBucket = "fees"
	LedgerBucketPenalties LedgerBucket = "penalties"
)

var validLedgerBuckets = []LedgerBucket{
	LedgerBucketCash,
	LedgerBucketPrincipal,
	LedgerBucketInterest,
	LedgerBucketFees,
	LedgerBucketPenalties,
}

// IsValid reports whether the value is a known ledger bucket.
func (l LedgerBucket) IsValid() bool {
	for _, candidate := range validLedgerBuckets {
		if candidate == l {
			return true
		}
	}
	return false
}

func ParseLedgerBucket(value string) (LedgerBucket, error) {
	for _, candidate := range validLedgerBuckets {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger bucket %q", value)
}
