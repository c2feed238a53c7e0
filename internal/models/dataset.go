package models

// DatasetKind names one of the upstream resource collections.
type DatasetKind string

const (
	KindTraining DatasetKind = "training"
	KindColoris  DatasetKind = "coloris"
	KindSellout  DatasetKind = "sellout"
)

// DatasetKinds lists every kind in display order.
var DatasetKinds = []DatasetKind{KindTraining, KindColoris, KindSellout}

func ParseDatasetKind(s string) (DatasetKind, bool) {
	switch DatasetKind(s) {
	case KindTraining, KindColoris, KindSellout:
		return DatasetKind(s), true
	default:
		return "", false
	}
}

// Label is the human title used in tables and messages.
func (k DatasetKind) Label() string {
	switch k {
	case KindTraining:
		return "Training"
	case KindColoris:
		return "Coloris"
	case KindSellout:
		return "Sellout"
	default:
		return string(k)
	}
}

func (k DatasetKind) String() string { return string(k) }
