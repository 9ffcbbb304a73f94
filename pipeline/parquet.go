package pipeline

import (
	"math"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type canonicalParquetRow struct {
	TSUTCISO     string  `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ElapsedS     float64 `parquet:"name=elapsed_s, type=DOUBLE"`
	PowerW       float64 `parquet:"name=power_w, type=DOUBLE"`
	HRBPM        float64 `parquet:"name=hr_bpm, type=DOUBLE"`
	CadenceRPM   float64 `parquet:"name=cadence_rpm, type=DOUBLE"`
	SpeedMPS     float64 `parquet:"name=speed_mps, type=DOUBLE"`
	DistanceM    float64 `parquet:"name=distance_m, type=DOUBLE"`
	AltitudeM    float64 `parquet:"name=altitude_m, type=DOUBLE"`
	TemperatureC float64 `parquet:"name=temperature_c, type=DOUBLE"`
	GradePct     float64 `parquet:"name=grade_pct, type=DOUBLE"`
	ValidPower   bool    `parquet:"name=valid_power, type=BOOLEAN"`
	ValidHR      bool    `parquet:"name=valid_hr, type=BOOLEAN"`
	ValidCadence bool    `parquet:"name=valid_cadence, type=BOOLEAN"`
	SampleIndex  int64   `parquet:"name=sample_index, type=INT64"`
}

func writeCanonicalParquet(path string, rows []Row) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(canonicalParquetRow), 4)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range rows {
		row := canonicalParquetRow{
			TSUTCISO:     r.TSUTCISO,
			ElapsedS:     r.ElapsedS,
			PowerW:       valueOrNaN(r.PowerW),
			HRBPM:        valueOrNaN(r.HRBPM),
			CadenceRPM:   valueOrNaN(r.CadenceRPM),
			SpeedMPS:     valueOrNaN(r.SpeedMPS),
			DistanceM:    valueOrNaN(r.DistanceM),
			AltitudeM:    valueOrNaN(r.AltitudeM),
			TemperatureC: valueOrNaN(r.TemperatureC),
			GradePct:     valueOrNaN(r.GradePct),
			ValidPower:   r.ValidPower,
			ValidHR:      r.ValidHR,
			ValidCadence: r.ValidCadence,
			SampleIndex:  int64(r.SampleIndex),
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
