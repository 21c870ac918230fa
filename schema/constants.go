package schema

import "time"

// Custom string types for type safety.
type (
	// Source identifies the catalog an entity came from.
	Source string

	// HealthLabel is the discrete maintenance classification of an entity.
	HealthLabel string

	// MomentumLabel is the v2 growth classification (breakout, rising, flat).
	MomentumLabel string

	// LegacyMomentumLabel is the 3-bucket growth classification on the 1..100 scale.
	LegacyMomentumLabel string

	// OutputMode represents the format of terminal output.
	OutputMode string

	// DatabaseBackend represents the storage backend for caches and run history.
	DatabaseBackend string

	// ShardType represents the partitioning dimension of a shard file.
	ShardType string

	// SignalName names one best-effort health sub-signal.
	SignalName string
)

// All catalog sources supported.
const (
	GitHubSource      Source = "github"
	HuggingFaceSource Source = "huggingface"
)

// All health labels.
const (
	AliveHealth    HealthLabel = "alive"
	SteadyHealth   HealthLabel = "steady"
	DecayingHealth HealthLabel = "decaying"
)

// All v2 momentum labels.
const (
	BreakoutMomentum MomentumLabel = "breakout"
	RisingMomentum   MomentumLabel = "rising"
	FlatMomentum     MomentumLabel = "flat"
)

// All legacy momentum labels.
const (
	TrendingLegacy LegacyMomentumLabel = "trending"
	GrowingLegacy  LegacyMomentumLabel = "growing"
	FlatLegacy     LegacyMomentumLabel = "flat"
)

// License bucket labels. Exactly one is present on every tag set.
const (
	PermissiveLicense = "permissive"
	RestrictedLicense = "restricted"
	UnclearLicense    = "unclear-license"
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	JSONBackend       DatabaseBackend = "json"
	NoneBackend       DatabaseBackend = "none"
)

// All shard types.
const (
	SourceShard ShardType = "source"
	TagShard    ShardType = "tag"
	LensShard   ShardType = "lens"
)

// Health sub-signals fetched from an activity source.
const (
	CommitsSignal      SignalName = "commits"
	ReleaseSignal      SignalName = "release"
	ContributorsSignal SignalName = "contributors"
	PullsSignal        SignalName = "pull_requests"
	IssuesSignal       SignalName = "issues"
)

// HealthTTL is how long a cached health bundle stays fresh.
const HealthTTL = 12 * time.Hour

// MinTagShardSize is the default population a tag needs to get its own shard.
const MinTagShardSize = 25

// ManifestVersion is bumped whenever the index layout changes.
const ManifestVersion = 2

// ValidSources lists all valid catalog sources.
var ValidSources = map[Source]struct{}{
	GitHubSource:      {},
	HuggingFaceSource: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	JSONBackend:       {},
	NoneBackend:       {},
}
