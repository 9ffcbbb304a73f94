package fitrecord

type fieldKind uint8

const (
	kindUint      fieldKind = iota // unscaled integer, zero-extended
	kindSint                       // unscaled integer, sign-extended
	kindScaled                     // integer with scale/offset, emitted as float64
	kindFloat                      // native 32-bit float
	kindTimestamp                  // uint32 seconds since the FIT epoch
)

type fieldDesc struct {
	name   string
	num    uint8
	kind   fieldKind
	scale  float64
	offset float64
}

// recordFields lists every Record field the extractor projects, keyed by the
// FIT profile field number. Scale and offset follow the profile: the
// engineering value of a scaled field is raw/scale - offset.
var recordFields = []fieldDesc{
	{name: "timestamp", num: 253, kind: kindTimestamp},

	// Position & navigation. Lat/long stay in signed 32-bit semicircles.
	{name: "position_lat", num: 0, kind: kindSint},
	{name: "position_long", num: 1, kind: kindSint},
	{name: "altitude", num: 2, kind: kindScaled, scale: 5, offset: 500},
	{name: "enhanced_altitude", num: 78, kind: kindScaled, scale: 5, offset: 500},
	{name: "speed", num: 6, kind: kindScaled, scale: 1000},
	{name: "enhanced_speed", num: 73, kind: kindScaled, scale: 1000},
	{name: "grade", num: 9, kind: kindScaled, scale: 100},
	{name: "vertical_speed", num: 32, kind: kindScaled, scale: 1000},
	{name: "gps_accuracy", num: 31, kind: kindUint},
	{name: "distance", num: 5, kind: kindScaled, scale: 100},

	// Basic motion & physiology.
	{name: "heart_rate", num: 3, kind: kindUint},
	{name: "calories", num: 33, kind: kindUint},
	{name: "temperature", num: 13, kind: kindSint},
	{name: "core_temperature", num: 139, kind: kindScaled, scale: 100},
	{name: "respiration_rate", num: 99, kind: kindUint},
	{name: "enhanced_respiration_rate", num: 108, kind: kindScaled, scale: 100},
	{name: "current_stress", num: 116, kind: kindScaled, scale: 100},

	// Power.
	{name: "power", num: 7, kind: kindUint},
	{name: "accumulated_power", num: 29, kind: kindUint},
	{name: "motor_power", num: 82, kind: kindUint},
	{name: "left_torque_effectiveness", num: 43, kind: kindScaled, scale: 2},
	{name: "right_torque_effectiveness", num: 44, kind: kindScaled, scale: 2},
	{name: "left_pedal_smoothness", num: 45, kind: kindScaled, scale: 2},
	{name: "right_pedal_smoothness", num: 46, kind: kindScaled, scale: 2},
	{name: "combined_pedal_smoothness", num: 47, kind: kindScaled, scale: 2},

	// Cadence & cycling.
	{name: "cadence", num: 4, kind: kindUint},
	{name: "cadence256", num: 52, kind: kindScaled, scale: 256},
	{name: "fractional_cadence", num: 53, kind: kindScaled, scale: 128},
	{name: "left_right_balance", num: 30, kind: kindUint},
	{name: "cycle_length", num: 12, kind: kindScaled, scale: 100},
	{name: "cycle_length16", num: 87, kind: kindScaled, scale: 100},
	{name: "cycles", num: 18, kind: kindUint},
	{name: "total_cycles", num: 19, kind: kindUint},

	// Running dynamics.
	{name: "vertical_oscillation", num: 39, kind: kindScaled, scale: 10},
	{name: "stance_time_percent", num: 40, kind: kindScaled, scale: 100},
	{name: "stance_time", num: 41, kind: kindScaled, scale: 10},
	{name: "stance_time_balance", num: 84, kind: kindScaled, scale: 100},
	{name: "step_length", num: 85, kind: kindScaled, scale: 10},
	{name: "vertical_ratio", num: 83, kind: kindScaled, scale: 100},

	// Blood oxygen.
	{name: "total_hemoglobin_conc", num: 54, kind: kindScaled, scale: 100},
	{name: "total_hemoglobin_conc_min", num: 55, kind: kindScaled, scale: 100},
	{name: "total_hemoglobin_conc_max", num: 56, kind: kindScaled, scale: 100},
	{name: "saturated_hemoglobin_percent", num: 57, kind: kindScaled, scale: 10},
	{name: "saturated_hemoglobin_percent_min", num: 58, kind: kindScaled, scale: 10},
	{name: "saturated_hemoglobin_percent_max", num: 59, kind: kindScaled, scale: 10},

	// E-bike.
	{name: "battery_soc", num: 81, kind: kindScaled, scale: 2},
	{name: "ebike_travel_range", num: 117, kind: kindUint},
	{name: "ebike_battery_level", num: 118, kind: kindUint},
	{name: "ebike_assist_mode", num: 119, kind: kindUint},
	{name: "ebike_assist_level_percent", num: 120, kind: kindUint},

	// Water sports.
	{name: "stroke_type", num: 49, kind: kindUint},
	{name: "resistance", num: 10, kind: kindUint},
	{name: "ball_speed", num: 51, kind: kindScaled, scale: 100},

	// Diving.
	{name: "depth", num: 92, kind: kindScaled, scale: 1000},
	{name: "absolute_pressure", num: 91, kind: kindUint},
	{name: "next_stop_depth", num: 93, kind: kindScaled, scale: 1000},
	{name: "next_stop_time", num: 94, kind: kindUint},
	{name: "time_to_surface", num: 95, kind: kindUint},
	{name: "ndl_time", num: 96, kind: kindUint},
	{name: "cns_load", num: 97, kind: kindUint},
	{name: "n2_load", num: 98, kind: kindUint},
	{name: "air_time_remaining", num: 123, kind: kindUint},
	{name: "ascent_rate", num: 127, kind: kindScaled, scale: 1000},
	{name: "po2", num: 129, kind: kindScaled, scale: 100},
	{name: "pressure_sac", num: 124, kind: kindScaled, scale: 100},
	{name: "volume_sac", num: 125, kind: kindScaled, scale: 100},
	{name: "rmv", num: 126, kind: kindScaled, scale: 100},

	// Miscellaneous.
	{name: "activity_type", num: 42, kind: kindUint},
	{name: "device_index", num: 62, kind: kindUint},
	{name: "zone", num: 50, kind: kindUint},
	{name: "time128", num: 48, kind: kindScaled, scale: 128},
	{name: "time_from_course", num: 11, kind: kindScaled, scale: 1000},
	{name: "grit", num: 114, kind: kindFloat},
	{name: "flow", num: 115, kind: kindFloat},
	{name: "left_pco", num: 67, kind: kindSint},
	{name: "right_pco", num: 68, kind: kindSint},
}

var recordFieldNames = func() map[uint8]string {
	m := make(map[uint8]string, len(recordFields))
	for _, fd := range recordFields {
		m[fd.num] = fd.name
	}
	return m
}()

// FieldName returns the Record field name for a FIT field number.
func FieldName(num uint8) (string, bool) {
	name, ok := recordFieldNames[num]
	return name, ok
}
