package models

// Sellout is one row of point-of-sale performance for a colorist at an
// outlet in a given year-month.
type Sellout struct {
	ID             int64    `json:"id"`
	Year           int      `json:"tahun"`
	Month          int      `json:"bulan"`
	Region         string   `json:"reg"`
	Branch         string   `json:"cabang"`
	Outlet         string   `json:"outlet"`
	AreaCover      string   `json:"area_cover"`
	MosSS          string   `json:"mos_ss"`
	ColoristName   string   `json:"nama_colorist"`
	RegistrationNo string   `json:"no_reg"`
	JoinDate       string   `json:"tanggal_bergabung"`
	Tenure         *float64 `json:"masa_kerja"`
	SelloutTT      *float64 `json:"sellout_tt"`
	SelloutRM      *float64 `json:"sellout_rm"`
	Primafix       *float64 `json:"primafix"`
	TargetSellout  *float64 `json:"target_sellout"`
	Channel        string   `json:"chl"`
	Territory      string   `json:"wilayah"`
	TotalSellout   *float64 `json:"total_sellout"`
	Timestamp      string   `json:"timestamp,omitempty"`
}

// Total returns total_sellout, or 0 when the upstream omitted it.
func (s Sellout) Total() float64 { return Value(s.TotalSellout) }

// TT returns sellout_tt, or 0 when absent.
func (s Sellout) TT() float64 { return Value(s.SelloutTT) }

// RM returns sellout_rm, or 0 when absent.
func (s Sellout) RM() float64 { return Value(s.SelloutRM) }

// Value dereferences an optional measure, treating nil as zero.
func Value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Float is a convenience for building optional measures.
func Float(v float64) *float64 {
	return &v
}
