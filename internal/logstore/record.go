package logstore

import (
	"encoding/json"
	"time"
)

// Record is one telemetry document emitted by the sandbox runner, resolved
// to a fixed shape. The producer has historically moved summary fields
// between the top level and a nested "summary" object, so both shapes are
// accepted; a missing field defaults to its zero value.
type Record struct {
	Path    string
	ModTime time.Time

	Profile string
	Program string

	RuntimeMs       float64
	PeakCpu         float64
	PeakMemoryKb    float64
	PageFaultsMinor float64
	PageFaultsMajor float64
	ExitReason      string
	BlockedSyscall  string

	MemorySamples []float64
	CpuSamples    []float64
}

func parseRecord(data []byte, path string, modTime time.Time) (Record, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Record{}, err
	}
	return resolveRecord(doc, path, modTime), nil
}

func resolveRecord(doc map[string]any, path string, modTime time.Time) Record {
	summary, _ := doc["summary"].(map[string]any)

	num := func(keys ...string) float64 {
		for _, k := range keys {
			if v, ok := toFloat(summary[k]); ok {
				return v
			}
		}
		for _, k := range keys {
			if v, ok := toFloat(doc[k]); ok {
				return v
			}
		}
		return 0
	}
	str := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := summary[k].(string); ok {
				return v
			}
		}
		for _, k := range keys {
			if v, ok := doc[k].(string); ok {
				return v
			}
		}
		return ""
	}

	rec := Record{
		Path:    path,
		ModTime: modTime,

		Profile: str("profile"),
		Program: str("program"),

		RuntimeMs: num("runtime_ms"),
		// older runner builds wrote these under different names
		PeakCpu:         num("peak_cpu", "cpu_usage_percent"),
		PeakMemoryKb:    num("peak_memory_kb", "memory_peak_kb"),
		PageFaultsMinor: num("page_faults_minor"),
		PageFaultsMajor: num("page_faults_major"),
		ExitReason:      str("exit_reason"),
		BlockedSyscall:  str("blocked_syscall"),
	}

	if timeline, ok := doc["timeline"].(map[string]any); ok {
		rec.MemorySamples = toFloatSlice(timeline["memory_kb"])
		rec.CpuSamples = toFloatSlice(timeline["cpu_percent"])
	}

	return rec
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func toFloatSlice(v any) []float64 {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	samples := make([]float64, 0, len(items))
	for _, item := range items {
		if f, ok := toFloat(item); ok {
			samples = append(samples, f)
		}
	}
	return samples
}
