package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tormoder/fit"

	"github.com/lucasjlepore/fitrecord"
	"github.com/lucasjlepore/fitrecord/fitwire"
)

// collector accumulates Record samples and the definition records seen while
// decoding, so one pass feeds both the sample table and the message index.
type collector struct {
	fitrecord.Extractor
	defs []fitwire.Definition
}

func (c *collector) OnDefinition(def fitwire.Definition) {
	c.defs = append(c.defs, def)
}

// Run decodes one FIT file and writes all export artifacts into opts.OutDir.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.FitPath) == "" {
		return nil, fmt.Errorf("fit path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}

	data, err := os.ReadFile(opts.FitPath)
	if err != nil {
		return nil, fmt.Errorf("read fit file: %w", err)
	}
	if err := fitwire.CheckIntegrity(data); err != nil {
		return nil, err
	}
	var col collector
	if err := fitwire.Decode(data, &col); err != nil {
		return nil, err
	}
	samples := col.Samples()
	if len(samples) == 0 {
		return nil, fmt.Errorf("no record samples in %s", opts.FitPath)
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	samplesPath := filepath.Join(opts.OutDir, "samples.jsonl")
	if !opts.Overwrite {
		if _, err := os.Stat(samplesPath); err == nil {
			return nil, fmt.Errorf("output %s already exists (use overwrite)", samplesPath)
		}
	}

	if err := writeSamplesJSONL(samplesPath, samples); err != nil {
		return nil, fmt.Errorf("write samples.jsonl: %w", err)
	}

	rows := buildRows(samples)
	canonicalPath := filepath.Join(opts.OutDir, "canonical_samples."+format)
	switch format {
	case "csv":
		if err := writeCanonicalCSV(canonicalPath, rows); err != nil {
			return nil, fmt.Errorf("write canonical csv: %w", err)
		}
	case "parquet":
		if err := writeCanonicalParquet(canonicalPath, rows); err != nil {
			return nil, fmt.Errorf("write canonical parquet: %w", err)
		}
	}

	msgIndexPath := filepath.Join(opts.OutDir, "messages_index.json")
	if err := writeJSON(msgIndexPath, buildMessagesIndex(col.defs)); err != nil {
		return nil, fmt.Errorf("write messages_index.json: %w", err)
	}

	summary := buildSummary(samples)
	summary.TrailingBytes = fitwire.TrailingBytes(data)
	summaryPath := filepath.Join(opts.OutDir, "summary.json")
	if err := writeJSON(summaryPath, summary); err != nil {
		return nil, fmt.Errorf("write summary.json: %w", err)
	}

	return &Result{
		FitPath:              opts.FitPath,
		OutputDir:            opts.OutDir,
		SamplesPath:          samplesPath,
		CanonicalSamplesPath: canonicalPath,
		MessagesIndexPath:    msgIndexPath,
		SummaryPath:          summaryPath,
		SampleCount:          len(samples),
	}, nil
}

func writeSamplesJSONL(path string, samples []fitrecord.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, s := range samples {
		if err := enc.Encode(s); err != nil {
			return err
		}
	}
	return nil
}

func buildRows(samples []fitrecord.Sample) []Row {
	rows := make([]Row, 0, len(samples))
	first := samples[0].Timestamp()
	for i, s := range samples {
		ts := s.Timestamp()
		row := Row{
			TSUTCISO:    time.Unix(ts, 0).UTC().Format(time.RFC3339),
			ElapsedS:    float64(ts - first),
			SampleIndex: i,
		}
		row.PowerW = fieldPtr(s, "power")
		row.HRBPM = fieldPtr(s, "heart_rate")
		row.CadenceRPM = fieldPtr(s, "cadence")
		row.SpeedMPS = fieldPtr(s, "speed")
		if row.SpeedMPS == nil {
			row.SpeedMPS = fieldPtr(s, "enhanced_speed")
		}
		row.DistanceM = fieldPtr(s, "distance")
		row.AltitudeM = fieldPtr(s, "altitude")
		if row.AltitudeM == nil {
			row.AltitudeM = fieldPtr(s, "enhanced_altitude")
		}
		row.TemperatureC = fieldPtr(s, "temperature")
		row.GradePct = fieldPtr(s, "grade")
		row.ValidPower = row.PowerW != nil
		row.ValidHR = row.HRBPM != nil
		row.ValidCadence = row.CadenceRPM != nil
		rows = append(rows, row)
	}
	return rows
}

func fieldPtr(s fitrecord.Sample, name string) *float64 {
	if v, ok := s.Float(name); ok {
		return &v
	}
	return nil
}

func buildMessagesIndex(defs []fitwire.Definition) MessageIndexFile {
	localLatest := make(map[int]LocalMessageIndex)
	reverseSets := make(map[string]map[int]struct{})

	for _, def := range defs {
		local := int(def.LocalMesgNum)
		global := int(def.MesgNum)
		fields := make(map[string]MessageFieldMeta, len(def.Fields))
		for _, fd := range def.Fields {
			meta := MessageFieldMeta{
				BaseType:    fd.Base.String(),
				SizeBytes:   int(fd.Size),
				InvalidRule: fd.Base.InvalidRule(),
			}
			if global == fitrecord.RecordMesgNum {
				if name, ok := fitrecord.FieldName(fd.Num); ok {
					meta.FieldName = name
				}
			}
			fields[strconv.Itoa(int(fd.Num))] = meta
		}
		localLatest[local] = LocalMessageIndex{
			LocalMessageType:  local,
			GlobalMessageNum:  global,
			GlobalMessageName: fmt.Sprint(fit.MesgNum(global)),
			BigEndian:         def.BigEndian,
			Fields:            fields,
		}

		gKey := strconv.Itoa(global)
		if _, ok := reverseSets[gKey]; !ok {
			reverseSets[gKey] = make(map[int]struct{})
		}
		reverseSets[gKey][local] = struct{}{}
	}

	locals := make([]int, 0, len(localLatest))
	for k := range localLatest {
		locals = append(locals, k)
	}
	sort.Ints(locals)
	localList := make([]LocalMessageIndex, 0, len(locals))
	for _, k := range locals {
		localList = append(localList, localLatest[k])
	}

	reverse := make(map[string][]int, len(reverseSets))
	for gKey, set := range reverseSets {
		list := make([]int, 0, len(set))
		for l := range set {
			list = append(list, l)
		}
		sort.Ints(list)
		reverse[gKey] = list
	}
	return MessageIndexFile{
		LocalMessageTypes: localList,
		ReverseIndex:      reverse,
	}
}

func buildSummary(samples []fitrecord.Sample) SummaryFile {
	power := make([]float64, 0, len(samples))
	hr := make([]float64, 0, len(samples))
	cad := make([]float64, 0, len(samples))
	speed := make([]float64, 0, len(samples))
	fieldsSeen := make(map[string]struct{})
	maxDistance := 0.0

	for _, s := range samples {
		for name := range s {
			fieldsSeen[name] = struct{}{}
		}
		if v, ok := s.Float("power"); ok {
			power = append(power, v)
		}
		if v, ok := s.Float("heart_rate"); ok {
			hr = append(hr, v)
		}
		if v, ok := s.Float("cadence"); ok {
			cad = append(cad, v)
		}
		if v, ok := s.Float("speed"); ok {
			speed = append(speed, v)
		}
		if v, ok := s.Float("distance"); ok && v > maxDistance {
			maxDistance = v
		}
	}

	names := make([]string, 0, len(fieldsSeen))
	for name := range fieldsSeen {
		names = append(names, name)
	}
	sort.Strings(names)

	duration := 0.0
	if len(samples) > 1 {
		duration = float64(samples[len(samples)-1].Timestamp() - samples[0].Timestamp())
	}

	return SummaryFile{
		SampleCount:    len(samples),
		DurationS:      duration,
		AvgPowerW:      avgFloat(power),
		MaxPowerW:      maxFloat(power),
		AvgHRBPM:       avgFloat(hr),
		MaxHRBPM:       maxFloat(hr),
		AvgCadenceRPM:  avgFloat(cad),
		MaxCadenceRPM:  maxFloat(cad),
		AvgSpeedMPS:    avgFloat(speed),
		TotalDistanceM: maxDistance,
		FieldsSeen:     names,
	}
}

func avgFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func maxFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for i := 1; i < len(values); i++ {
		if values[i] > m {
			m = values[i]
		}
	}
	return m
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCanonicalCSV(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"ts_utc_iso", "elapsed_s", "power_w", "hr_bpm", "cadence_rpm", "speed_mps", "distance_m", "altitude_m", "temperature_c", "grade_pct",
		"valid_power", "valid_hr", "valid_cadence", "sample_index",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{
			r.TSUTCISO,
			formatFloat(r.ElapsedS),
			formatFloatPtr(r.PowerW),
			formatFloatPtr(r.HRBPM),
			formatFloatPtr(r.CadenceRPM),
			formatFloatPtr(r.SpeedMPS),
			formatFloatPtr(r.DistanceM),
			formatFloatPtr(r.AltitudeM),
			formatFloatPtr(r.TemperatureC),
			formatFloatPtr(r.GradePct),
			strconv.FormatBool(r.ValidPower),
			strconv.FormatBool(r.ValidHR),
			strconv.FormatBool(r.ValidCadence),
			strconv.Itoa(r.SampleIndex),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
