// Package state renders device status messages for people and keeps a
// merged, thread-safe view of the latest device state.
package state

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/alittlebrighter/blowcontrol/models"
	"github.com/alittlebrighter/blowcontrol/util"
)

const (
	rule     = "=================================================="
	subRule  = "-------------------------"
	labelFmt = "  %-20s: %s\n"
)

// Descriptions maps device state keys to readable labels.
var Descriptions = map[string]string{
	"fpwr": "Fan Power",
	"fnst": "Fan Status",
	"fnsp": "Fan Speed",
	"auto": "Auto Mode",

	"nmod": "Night Mode",
	"sltm": "Sleep Timer",
	"rhtm": "Real-time Monitoring",

	"oscs": "Oscillation Status",
	"oson": "Oscillation On",
	"osal": "Oscillation Angle Lower",
	"osau": "Oscillation Angle Upper",
	"ancp": "Angle Control Point",
	"apos": "Actual Position",

	"bril": "Brightness",
	"wacd": "WiFi Access Code Display",

	"nmdv":    "Network Mode Device",
	"rssi":    "WiFi Signal Strength",
	"channel": "WiFi Channel",

	"cflr": "Carbon Filter Remaining",
	"hflr": "HEPA Filter Remaining",
	"cflt": "Carbon Filter Type",
	"hflt": "HEPA Filter Type",
	"fqhp": "Filter Quality HP",
	"fghp": "Filter Grade HP",

	"pm25": "PM2.5 Particles",
	"pm10": "PM10 Particles",
	"p25r": "PM2.5 Running Average",
	"p10r": "PM10 Running Average",
	"tact": "Temperature",
	"hact": "Humidity",
}

type section struct {
	title string
	keys  []string
}

var currentStateSections = []section{
	{"POWER & OPERATION", []string{"fpwr", "fnst", "fnsp", "auto"}},
	{"AIR QUALITY & MODES", []string{"nmod", "sltm", "rhtm"}},
	{"OSCILLATION & DIRECTION", []string{"oscs", "oson", "osal", "osau", "ancp", "apos"}},
	{"FILTER STATUS", []string{"hflr", "hflt", "cflr", "cflt"}},
}

var environmentalKeys = []string{"pm25", "pm10", "p25r", "p10r", "tact", "hact", "sltm"}

// Describe returns the label for key, or key itself when it has none.
func Describe(key string) string {
	if d, ok := Descriptions[key]; ok {
		return d
	}
	return key
}

// Printer writes status messages in a sectioned, human readable layout.
type Printer struct {
	w     io.Writer
	Units util.TemperatureUnits
}

func NewPrinter(w io.Writer, units util.TemperatureUnits) *Printer {
	if units == "" {
		units = util.Celsius
	}
	return &Printer{w: w, Units: units}
}

// FormatValue adds units to a raw state value. Values that do not parse are
// returned untouched.
func (p *Printer) FormatValue(key, value string) string {
	n, err := strconv.Atoi(value)

	switch key {
	case "pm25", "pm10", "p25r", "p10r":
		if err == nil {
			return fmt.Sprintf("%d μg/m³", n)
		}
	case "osal", "osau", "apos":
		if err == nil {
			return fmt.Sprintf("%d°", n)
		}
	case "fnsp":
		if value == "AUTO" {
			return value
		}
		if err == nil {
			return fmt.Sprintf("%d/10", n)
		}
	case "sltm":
		if value == "OFF" {
			return value
		}
		if err == nil {
			return util.FormatSleepTimer(n)
		}
	case "hflr", "cflr", "hact":
		if err == nil {
			return fmt.Sprintf("%d%%", n)
		}
	case "rssi":
		if err == nil {
			return fmt.Sprintf("%d dBm (%s)", n, signalStrength(n))
		}
	case "tact":
		if err == nil {
			symbol := "C"
			if p.Units == util.Fahrenheit {
				symbol = "F"
			}
			return fmt.Sprintf("%.2f°%s", util.Temperature(float64(n), p.Units), symbol)
		}
	}
	return value
}

func signalStrength(dbm int) string {
	switch {
	case dbm >= -30:
		return "Excellent"
	case dbm >= -40:
		return "Good"
	case dbm >= -50:
		return "Fair"
	default:
		return "Poor"
	}
}

// Print picks a layout by message kind. Unknown kinds are dumped as
// indented JSON.
func (p *Printer) Print(msg models.StatusMessage) {
	switch msg.Msg {
	case models.MsgCurrentState:
		p.PrintCurrentState(msg)
	case models.MsgStateChange:
		p.PrintStateChange(msg)
	case models.MsgEnvironmental:
		p.PrintEnvironmental(msg)
	case models.MsgLocation:
		p.PrintLocation(msg)
	default:
		p.printUnknown(msg)
	}
}

func (p *Printer) PrintCurrentState(msg models.StatusMessage) {
	p.header("DEVICE STATE")

	for _, s := range currentStateSections {
		fmt.Fprintf(p.w, "\n%s\n%s\n", s.title, subRule)
		for _, key := range s.keys {
			if v, ok := msg.ProductState[key]; ok {
				p.field(key, v.Current)
			}
		}
	}

	fmt.Fprintf(p.w, "\nNETWORK INFORMATION\n%s\n", subRule)
	if msg.RSSI != nil {
		p.field("rssi", msg.RSSI.Current)
	}
	if msg.Channel != nil {
		p.field("channel", msg.Channel.Current)
	}

	fmt.Fprintf(p.w, "\nDEVICE INFORMATION\n%s\n", subRule)
	p.line("Last Update", msg.Time)
	p.line("Mode Reason", msg.ModeReason)
	p.line("State Reason", msg.StateReason)
	p.footer()
}

// PrintStateChange shows each changed key as "before → after".
func (p *Printer) PrintStateChange(msg models.StatusMessage) {
	p.header("STATE CHANGE")

	for _, key := range sortedKeys(msg.ProductState) {
		v := msg.ProductState[key]
		before, after := "?", p.FormatValue(key, v.Current)
		if v.Changed {
			before = p.FormatValue(key, v.Previous)
		}
		if before != after {
			fmt.Fprintf(p.w, labelFmt, Describe(key), before+" → "+after)
		} else {
			fmt.Fprintf(p.w, labelFmt, Describe(key), after)
		}
	}

	if msg.Time != "" {
		fmt.Fprintln(p.w)
		p.line("Time", msg.Time)
	}
	p.footer()
}

func (p *Printer) PrintEnvironmental(msg models.StatusMessage) {
	p.header("ENVIRONMENTAL SENSOR DATA")
	fmt.Fprintf(p.w, "\nAIR QUALITY MEASUREMENTS\n%s\n", subRule)
	for _, key := range environmentalKeys {
		if v, ok := msg.Data[key]; ok {
			p.field(key, v.Current)
		}
	}
	if msg.Time != "" {
		fmt.Fprintln(p.w)
		p.line("Time", msg.Time)
	}
	p.footer()
}

func (p *Printer) PrintLocation(msg models.StatusMessage) {
	p.header("DEVICE LOCATION")
	if msg.Position != nil {
		p.field("apos", msg.Position.Current)
	}
	p.line("Time", msg.Time)
	p.footer()
}

func (p *Printer) printUnknown(msg models.StatusMessage) {
	kind := msg.Msg
	if kind == "" {
		kind = "UNKNOWN"
	}
	fmt.Fprintf(p.w, "\n=== %s ===\n", kind)

	var body interface{} = msg
	if len(msg.Raw) > 0 {
		body = msg.Raw
	}
	out, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		out = msg.Raw
	}
	fmt.Fprintf(p.w, "%s\n%s\n\n", out, strings.Repeat("=", len(kind)+8))
}

// PrintSnapshot renders a merged snapshot the same way as a CURRENT-STATE
// message.
func (p *Printer) PrintSnapshot(snap models.Snapshot) {
	msg := models.StatusMessage{
		Msg:          models.MsgCurrentState,
		Time:         snap.Time,
		ProductState: make(map[string]models.Value, len(snap.State)),
	}
	for k, v := range snap.State {
		msg.ProductState[k] = models.Value{Current: v}
	}
	p.PrintCurrentState(msg)

	if len(snap.Environmental) > 0 {
		env := models.StatusMessage{Msg: models.MsgEnvironmental, Data: make(map[string]models.Value, len(snap.Environmental))}
		for k, v := range snap.Environmental {
			env.Data[k] = models.Value{Current: v}
		}
		p.PrintEnvironmental(env)
	}
}

func (p *Printer) header(title string) {
	pad := (len(rule) - len(title)) / 2
	fmt.Fprintf(p.w, "\n%s\n%s%s\n%s\n", rule, strings.Repeat(" ", pad), title, rule)
}

func (p *Printer) footer() {
	fmt.Fprintf(p.w, "%s\n\n", rule)
}

func (p *Printer) field(key, value string) {
	fmt.Fprintf(p.w, labelFmt, Describe(key), p.FormatValue(key, value))
}

func (p *Printer) line(label, value string) {
	if value != "" {
		fmt.Fprintf(p.w, labelFmt, label, value)
	}
}

func sortedKeys(m map[string]models.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
