package merge

// Output column names computed by the merge rather than copied from the log
const (
	ColumnTime      = "time"
	ColumnLatitude  = "Latitude"
	ColumnLongitude = "Longitude"
	ColumnDistance  = "Current Distance"
	ColumnElevation = "Elevation"
	ColumnBitrate   = "bitrate"
	ColumnDelay     = "delay"
)

// Passthrough maps an output column onto the telemetry column it is copied from
type Passthrough struct {
	Name   string `yaml:"name"`   // Output column name
	Source string `yaml:"source"` // Telemetry column name
}

// DefaultPassthrough is the channel layout expected by Dashware's OpenTX
// import profile. Output order follows this list.
var DefaultPassthrough = []Passthrough{
	{Name: "RQly(%)", Source: "RQly(%)"},
	{Name: "RSNR(dB)", Source: "RSNR(dB)"},
	{Name: "TPWR(mW)", Source: "TPWR(mW)"},
	{Name: "TQly(%)", Source: "TQly(%)"},
	{Name: "TSNR(dB)", Source: "TSNR(dB)"},
	{Name: "GSpd(kmh)", Source: "GSpd(kmh)"},
	{Name: "Hdg(@)", Source: "Hdg(@)"},
	{Name: "Sats", Source: "Sats"},
	{Name: "RxBt(V)", Source: "RxBt(V)"},
	{Name: "Curr(A)", Source: "Curr(A)"},
	{Name: "Capa(mAh)", Source: "Capa(mAh)"},
	{Name: "Bat(%)", Source: "Bat_(%)"},
	{Name: "Ptch(rad)", Source: "Ptch(rad)"},
	{Name: "Roll(rad)", Source: "Roll(rad)"},
	{Name: "Yaw(rad)", Source: "Yaw(rad)"},
	{Name: "Thr", Source: "Thr"},
}

// Schema is the ordered column layout of merged records
type Schema struct {
	Passthrough []Passthrough
}

// DefaultSchema returns the schema used when no override is configured.
func DefaultSchema() Schema {
	return Schema{Passthrough: append([]Passthrough(nil), DefaultPassthrough...)}
}

// Header returns all output column names in order.
func (s Schema) Header() []string {
	header := make([]string, 0, len(s.Passthrough)+7)
	header = append(header, ColumnTime, ColumnLatitude, ColumnLongitude, ColumnDistance, ColumnElevation)
	for _, p := range s.Passthrough {
		header = append(header, p.Name)
	}
	return append(header, ColumnBitrate, ColumnDelay)
}
