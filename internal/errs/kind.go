// Package errs implements the flat error-kind taxonomy shared by every
// component of the pool and monitoring core.
package errs

// Kind identifies the class of failure behind an Info. Numeric values
// are not contractual; callers should switch on the named constants.
type Kind int

const (
	Success Kind = iota
	CollectorNotFound
	CollectionFailed
	CollectorInitFailed
	CollectorAlreadyExists
	InvalidCollectorConfig
	MonitoringDisabled
	StorageFull
	StorageCorrupted
	CompressionFailed
	StorageNotInitialized
	InvalidConfiguration
	InvalidInterval
	InvalidCapacity
	ConfigNotFound
	ConfigParseError
	SystemResourceUnavailable
	PermissionDenied
	OutOfMemory
	OperationTimeout
	OperationCancelled
	OperationFailed
	IncompatibleVersion
	AdapterInitFailed
	MetricNotFound
	InvalidMetricType
	MetricOverflow
	AggregationFailed
	ProcessingFailed
	HealthCheckFailed
	HealthCheckTimeout
	HealthCheckNotRegistered
	CircuitBreakerOpen
	CircuitBreakerHalfOpen
	RetryAttemptsExhausted
	NetworkError
	ServiceUnavailable
	ServiceDegraded
	ErrorBoundaryTriggered
	FallbackFailed
	RecoveryFailed
	InvalidArgument
	InvalidState
	NotFound
	AlreadyExists
	ResourceExhausted
	AlreadyStarted
	DependencyMissing
	QuotaExceeded
	RateLimitExceeded
	ValidationFailed
	DataCorrupted
	StateInconsistent
	DeadlockDetected
	RollbackFailed
	QueueClosed
	Empty
	Timeout
	NoWorkers
	JobExecutionFailed
	Unknown
)

var kindNames = map[Kind]string{
	Success:                   "Success",
	CollectorNotFound:         "CollectorNotFound",
	CollectionFailed:          "CollectionFailed",
	CollectorInitFailed:       "CollectorInitFailed",
	CollectorAlreadyExists:    "CollectorAlreadyExists",
	InvalidCollectorConfig:    "InvalidCollectorConfig",
	MonitoringDisabled:        "MonitoringDisabled",
	StorageFull:               "StorageFull",
	StorageCorrupted:          "StorageCorrupted",
	CompressionFailed:         "CompressionFailed",
	StorageNotInitialized:     "StorageNotInitialized",
	InvalidConfiguration:      "InvalidConfiguration",
	InvalidInterval:           "InvalidInterval",
	InvalidCapacity:           "InvalidCapacity",
	ConfigNotFound:            "ConfigNotFound",
	ConfigParseError:          "ConfigParseError",
	SystemResourceUnavailable: "SystemResourceUnavailable",
	PermissionDenied:          "PermissionDenied",
	OutOfMemory:               "OutOfMemory",
	OperationTimeout:          "OperationTimeout",
	OperationCancelled:        "OperationCancelled",
	OperationFailed:           "OperationFailed",
	IncompatibleVersion:       "IncompatibleVersion",
	AdapterInitFailed:         "AdapterInitFailed",
	MetricNotFound:            "MetricNotFound",
	InvalidMetricType:         "InvalidMetricType",
	MetricOverflow:            "MetricOverflow",
	AggregationFailed:         "AggregationFailed",
	ProcessingFailed:          "ProcessingFailed",
	HealthCheckFailed:         "HealthCheckFailed",
	HealthCheckTimeout:        "HealthCheckTimeout",
	HealthCheckNotRegistered:  "HealthCheckNotRegistered",
	CircuitBreakerOpen:        "CircuitBreakerOpen",
	CircuitBreakerHalfOpen:    "CircuitBreakerHalfOpen",
	RetryAttemptsExhausted:    "RetryAttemptsExhausted",
	NetworkError:              "NetworkError",
	ServiceUnavailable:        "ServiceUnavailable",
	ServiceDegraded:           "ServiceDegraded",
	ErrorBoundaryTriggered:    "ErrorBoundaryTriggered",
	FallbackFailed:            "FallbackFailed",
	RecoveryFailed:            "RecoveryFailed",
	InvalidArgument:           "InvalidArgument",
	InvalidState:              "InvalidState",
	NotFound:                  "NotFound",
	AlreadyExists:             "AlreadyExists",
	ResourceExhausted:         "ResourceExhausted",
	AlreadyStarted:            "AlreadyStarted",
	DependencyMissing:         "DependencyMissing",
	QuotaExceeded:             "QuotaExceeded",
	RateLimitExceeded:         "RateLimitExceeded",
	ValidationFailed:          "ValidationFailed",
	DataCorrupted:             "DataCorrupted",
	StateInconsistent:         "StateInconsistent",
	DeadlockDetected:          "DeadlockDetected",
	RollbackFailed:            "RollbackFailed",
	QueueClosed:               "QueueClosed",
	Empty:                     "Empty",
	Timeout:                   "Timeout",
	NoWorkers:                 "NoWorkers",
	JobExecutionFailed:        "JobExecutionFailed",
	Unknown:                   "Unknown",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// transientKinds are retried by reliability.Retry.
var transientKinds = map[Kind]bool{
	NetworkError:           true,
	OperationTimeout:       true,
	ServiceUnavailable:     true,
	CircuitBreakerHalfOpen: true,
}

// nonTransientKinds never retry.
var nonTransientKinds = map[Kind]bool{
	InvalidArgument:      true,
	InvalidConfiguration: true,
	NotFound:             true,
	AlreadyExists:        true,
	ValidationFailed:     true,
	InvalidState:         true,
}

// fatalKinds bubble out unmodified; nothing wraps or swallows them.
var fatalKinds = map[Kind]bool{
	DataCorrupted:     true,
	OutOfMemory:       true,
	StateInconsistent: true,
}

// IsTransient reports whether k should be retried by a retry policy.
func IsTransient(k Kind) bool { return transientKinds[k] }

// IsNonTransient reports whether k must never be retried.
func IsNonTransient(k Kind) bool { return nonTransientKinds[k] }

// IsFatal reports whether k must propagate unmodified past any boundary.
func IsFatal(k Kind) bool { return fatalKinds[k] }
