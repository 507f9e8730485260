package postprocess

import "strings"

// Label is the closed set of object classes the signal pipeline acts on.
// Model class names are decoded into a Label once at the inference boundary
// so downstream code never compares raw strings.
type Label int

const (
	LabelUnknown Label = iota
	LabelVehicle
	LabelPerson
	LabelBus
	LabelTrafficLightRed
	LabelTrafficLightGreen
	LabelStopSign
	LabelTrafficLightNA
)

// labelNames are the canonical names of each Label
var labelNames = map[Label]string{
	LabelUnknown:           "unknown",
	LabelVehicle:           "vehicle",
	LabelPerson:            "person",
	LabelBus:               "bus",
	LabelTrafficLightRed:   "traffic_light_red",
	LabelTrafficLightGreen: "traffic_light_green",
	LabelStopSign:          "stop_sign",
	LabelTrafficLightNA:    "traffic_light_na",
}

// labelAliases maps model class names onto a Label.  COCO trained models
// call vehicles "car" and use a space in "stop sign"
var labelAliases = map[string]Label{
	"car":                 LabelVehicle,
	"vehicle":             LabelVehicle,
	"person":              LabelPerson,
	"bus":                 LabelBus,
	"traffic_light_red":   LabelTrafficLightRed,
	"traffic_light_green": LabelTrafficLightGreen,
	"stop sign":           LabelStopSign,
	"stop_sign":           LabelStopSign,
	"traffic_light_na":    LabelTrafficLightNA,
}

// ParseLabel decodes a model class name into a Label.  Names not used by the
// pipeline decode to LabelUnknown.
func ParseLabel(name string) Label {

	if l, ok := labelAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return l
	}

	return LabelUnknown
}

// String returns the canonical name of the label
func (l Label) String() string {
	if name, ok := labelNames[l]; ok {
		return name
	}
	return labelNames[LabelUnknown]
}

// IsObstacle reports if the label is a road user that marks the position of
// the vehicle ahead
func (l Label) IsObstacle() bool {
	return l == LabelVehicle || l == LabelPerson || l == LabelBus
}

// IsSignal reports if the label is a lit traffic light state
func (l Label) IsSignal() bool {
	return l == LabelTrafficLightRed || l == LabelTrafficLightGreen
}
