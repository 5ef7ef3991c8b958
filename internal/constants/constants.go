package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

const (
	CacheKeyPrefixLookup = "lookup:"
)

const (
	DefaultCacheTTLSeconds = 300
)

const (
	DefaultMongoDBName = "compass"
)

// Sentinel compliance_name values written by the add-country operation.
// Rows carrying these names hold country-level designation metadata, not
// real obligations, and must stay out of company-type listings.
const (
	SentinelCASetup = "Country Setup - CA Type"
	SentinelCSSetup = "Country Setup - CS Type"
)

const (
	SampleFileName = "compliance_rules_sample.csv"
)

const (
	MaxImportFileBytes = 10 << 20
)
