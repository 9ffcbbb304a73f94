// Package pipeline turns decoded FIT Record samples into export artifacts:
// a JSONL sample dump, a fixed-column canonical table (CSV or Parquet), a
// message index, and an aggregate summary.
package pipeline

// Options configures one export run.
type Options struct {
	FitPath   string `toml:"fit_path"`
	OutDir    string `toml:"out_dir"`
	Format    string `toml:"format"` // parquet|csv
	Overwrite bool   `toml:"overwrite"`
}

// Config drives a batch export, usually loaded from a TOML file.
type Config struct {
	OutDir      string   `toml:"out_dir"`
	Format      string   `toml:"format"`
	Overwrite   bool     `toml:"overwrite"`
	Concurrency int      `toml:"concurrency"`
	Inputs      []string `toml:"inputs"`
}

// Result returns generated output paths.
type Result struct {
	FitPath              string `json:"fit_path"`
	OutputDir            string `json:"output_dir"`
	SamplesPath          string `json:"samples_path"`
	CanonicalSamplesPath string `json:"canonical_samples_path"`
	MessagesIndexPath    string `json:"messages_index_path"`
	SummaryPath          string `json:"summary_path"`
	SampleCount          int    `json:"sample_count"`
}

// Row is one canonical sample row. Pointer fields are nil when the device
// did not report a valid value at that instant.
type Row struct {
	TSUTCISO     string   `json:"ts_utc_iso"`
	ElapsedS     float64  `json:"elapsed_s"`
	PowerW       *float64 `json:"power_w,omitempty"`
	HRBPM        *float64 `json:"hr_bpm,omitempty"`
	CadenceRPM   *float64 `json:"cadence_rpm,omitempty"`
	SpeedMPS     *float64 `json:"speed_mps,omitempty"`
	DistanceM    *float64 `json:"distance_m,omitempty"`
	AltitudeM    *float64 `json:"altitude_m,omitempty"`
	TemperatureC *float64 `json:"temperature_c,omitempty"`
	GradePct     *float64 `json:"grade_pct,omitempty"`
	ValidPower   bool     `json:"valid_power"`
	ValidHR      bool     `json:"valid_hr"`
	ValidCadence bool     `json:"valid_cadence"`
	SampleIndex  int      `json:"sample_index"`
}

// MessageIndexFile contains local/global message mapping metadata.
type MessageIndexFile struct {
	LocalMessageTypes []LocalMessageIndex `json:"local_message_types"`
	ReverseIndex      map[string][]int    `json:"reverse_index"`
}

// LocalMessageIndex maps one local message type to its global message and fields.
type LocalMessageIndex struct {
	LocalMessageType  int                         `json:"local_message_type"`
	GlobalMessageNum  int                         `json:"global_message_num"`
	GlobalMessageName string                      `json:"global_message_name"`
	BigEndian         bool                        `json:"big_endian"`
	Fields            map[string]MessageFieldMeta `json:"fields"`
}

// MessageFieldMeta describes one field in the message index.
type MessageFieldMeta struct {
	FieldName   string `json:"field_name,omitempty"`
	BaseType    string `json:"base_type"`
	SizeBytes   int    `json:"size_bytes"`
	InvalidRule string `json:"invalid_rule,omitempty"`
}

// SummaryFile contains one-file aggregate metrics over the Record samples.
type SummaryFile struct {
	SampleCount    int      `json:"sample_count"`
	DurationS      float64  `json:"duration_s"`
	AvgPowerW      float64  `json:"avg_power_w"`
	MaxPowerW      float64  `json:"max_power_w"`
	AvgHRBPM       float64  `json:"avg_hr_bpm"`
	MaxHRBPM       float64  `json:"max_hr_bpm"`
	AvgCadenceRPM  float64  `json:"avg_cadence_rpm"`
	MaxCadenceRPM  float64  `json:"max_cadence_rpm"`
	AvgSpeedMPS    float64  `json:"avg_speed_mps"`
	TotalDistanceM float64  `json:"total_distance_m"`
	TrailingBytes  int      `json:"trailing_bytes"`
	FieldsSeen     []string `json:"fields_seen"`
}
