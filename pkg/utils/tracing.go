package utils

const defaultOTelServiceName = "trustlink-waitlist"

// IsTracingEnabled reports OTEL_TRACES_ENABLED; tracing is off unless set to a true value.
func IsTracingEnabled() bool {
	return GetEnvBool("OTEL_TRACES_ENABLED", false)
}

func OTelServiceName() string {
	return GetEnvTrimmedOrDefault("OTEL_SERVICE_NAME", defaultOTelServiceName)
}

// OTelSampleRatio reads OTEL_TRACES_SAMPLER_RATIO, clamped to [0, 1]. Unset or
// malformed values sample everything.
func OTelSampleRatio() float64 {
	return min(max(GetEnvFloat("OTEL_TRACES_SAMPLER_RATIO", 1), 0), 1)
}
