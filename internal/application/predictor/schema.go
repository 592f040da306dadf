package predictor

import (
	"fmt"
)

// DefaultFeatureNames is the input order used by the autoscaling simulation
// the model was trained for. It applies when the input scaler does not name
// its columns and expects six of them.
var DefaultFeatureNames = []string{
	"num_tasks",
	"avg_task_size_MB",
	"vm_type",
	"num_users",
	"time_of_day",
	"priority_level",
}

// MetricNames is the fixed output order of the model
var MetricNames = []string{
	"CPU_utilization",
	"Memory_usage",
	"Disk_IO_MBps",
	"Network_bw_MBps",
}

// Prediction holds the four predicted resource metrics in real units
type Prediction struct {
	CPUUtilization float64 `json:"CPU_utilization"`
	MemoryUsage    float64 `json:"Memory_usage"`
	DiskIOMBps     float64 `json:"Disk_IO_MBps"`
	NetworkBwMBps  float64 `json:"Network_bw_MBps"`
}

func predictionFromRow(row []float64) (Prediction, error) {
	if len(row) != len(MetricNames) {
		return Prediction{}, fmt.Errorf("model produced %d values, expected %d", len(row), len(MetricNames))
	}
	return Prediction{
		CPUUtilization: row[0],
		MemoryUsage:    row[1],
		DiskIOMBps:     row[2],
		NetworkBwMBps:  row[3],
	}, nil
}

// Values returns the metrics in MetricNames order
func (p Prediction) Values() []float64 {
	return []float64{p.CPUUtilization, p.MemoryUsage, p.DiskIOMBps, p.NetworkBwMBps}
}

// resolveFeatureNames picks the schema for an input of the given width
func resolveFeatureNames(declared []string, width int) []string {
	if len(declared) == width {
		return append([]string(nil), declared...)
	}
	if width == len(DefaultFeatureNames) {
		return append([]string(nil), DefaultFeatureNames...)
	}
	names := make([]string, width)
	for i := range names {
		names[i] = fmt.Sprintf("feature_%d", i)
	}
	return names
}
