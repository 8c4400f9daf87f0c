package domain

// ServiceHealth reports the status of one dependency.
type ServiceHealth struct {
	Name          string  `json:"name"`
	Status        string  `json:"status"` // healthy, degraded, unhealthy
	LatencyMs     int64   `json:"latency_ms"`
	UptimePercent float64 `json:"uptime_percent"`
	LastChecked   string  `json:"last_checked"`
}

// HealthStatus is the body returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}

// OCRMetrics is a JSON snapshot of OCR-related counters, returned by
// GET /v1/metrics/ocr.
type OCRMetrics struct {
	TotalRequests int64   `json:"totalRequests"`
	ErrorCount    int64   `json:"errorCount"`
	ErrorRate     float64 `json:"errorRate"`
	EmptyDrafts   int64   `json:"emptyDrafts"`
	CacheHitRate  float64 `json:"cacheHitRate"`
	Period        string  `json:"period"`
}
