package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// number decodes a measure sent as a JSON number or a numeric string.
// Anything else, including null and unparseable text, decodes as absent.
type number struct {
	v *float64
}

func (n *number) UnmarshalJSON(b []byte) error {
	n.v = nil
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}

	var f float64
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		f = parsed
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if err := json.Unmarshal(b, &f); err != nil {
			return nil
		}
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n.v = &f
	return nil
}

func (n number) asFloat() *float64 { return n.v }

func (n number) asInt() int { return int(n.asInt64()) }

func (n number) asInt64() int64 {
	if n.v == nil {
		return 0
	}
	return int64(math.Trunc(*n.v))
}

// text decodes a label sent as a string, number or boolean. Numbers keep
// their literal form so registration numbers are not reformatted.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	*t = ""
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}

	switch {
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		*t = text(s)
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		*t = text(b)
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		*t = text(b)
	}
	return nil
}

func (s *Sellout) UnmarshalJSON(data []byte) error {
	var w struct {
		ID             number `json:"id"`
		Year           number `json:"tahun"`
		Month          number `json:"bulan"`
		Region         text   `json:"reg"`
		Branch         text   `json:"cabang"`
		Outlet         text   `json:"outlet"`
		AreaCover      text   `json:"area_cover"`
		MosSS          text   `json:"mos_ss"`
		ColoristName   text   `json:"nama_colorist"`
		RegistrationNo text   `json:"no_reg"`
		JoinDate       text   `json:"tanggal_bergabung"`
		Tenure         number `json:"masa_kerja"`
		SelloutTT      number `json:"sellout_tt"`
		SelloutRM      number `json:"sellout_rm"`
		Primafix       number `json:"primafix"`
		TargetSellout  number `json:"target_sellout"`
		Channel        text   `json:"chl"`
		Territory      text   `json:"wilayah"`
		TotalSellout   number `json:"total_sellout"`
		Timestamp      text   `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*s = Sellout{
		ID:             w.ID.asInt64(),
		Year:           w.Year.asInt(),
		Month:          w.Month.asInt(),
		Region:         string(w.Region),
		Branch:         string(w.Branch),
		Outlet:         string(w.Outlet),
		AreaCover:      string(w.AreaCover),
		MosSS:          string(w.MosSS),
		ColoristName:   string(w.ColoristName),
		RegistrationNo: string(w.RegistrationNo),
		JoinDate:       string(w.JoinDate),
		Tenure:         w.Tenure.asFloat(),
		SelloutTT:      w.SelloutTT.asFloat(),
		SelloutRM:      w.SelloutRM.asFloat(),
		Primafix:       w.Primafix.asFloat(),
		TargetSellout:  w.TargetSellout.asFloat(),
		Channel:        string(w.Channel),
		Territory:      string(w.Territory),
		TotalSellout:   w.TotalSellout.asFloat(),
		Timestamp:      string(w.Timestamp),
	}
	return nil
}

func (t *Training) UnmarshalJSON(data []byte) error {
	var w struct {
		ID             number `json:"id"`
		Timestamp      text   `json:"timestamp"`
		Month          text   `json:"bulan"`
		Region         text   `json:"region"`
		BranchArea     text   `json:"cabang_area"`
		SupervisorName text   `json:"nama_atasan_langsung"`
		Subject        text   `json:"materi_pelatihan"`
		FullName       text   `json:"nama_lengkap_sesuai_ktp"`
		Position       text   `json:"jabatan"`
		TotalScore     number `json:"total_nilai"`
		EssayScore     number `json:"nilai_essay"`
		Total          number `json:"total"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*t = Training{
		ID:             w.ID.asInt64(),
		Timestamp:      string(w.Timestamp),
		Month:          string(w.Month),
		Region:         string(w.Region),
		BranchArea:     string(w.BranchArea),
		SupervisorName: string(w.SupervisorName),
		Subject:        string(w.Subject),
		FullName:       string(w.FullName),
		Position:       string(w.Position),
		TotalScore:     w.TotalScore.asFloat(),
		EssayScore:     w.EssayScore.asFloat(),
		Total:          w.Total.asFloat(),
	}
	return nil
}

func (c *Coloris) UnmarshalJSON(data []byte) error {
	var w struct {
		ID             number `json:"id"`
		Timestamp      text   `json:"timestamp"`
		Month          text   `json:"bulan"`
		Region         text   `json:"region"`
		Branch         text   `json:"cabang"`
		Subject        text   `json:"materi"`
		SupervisorName text   `json:"nama_atasan_langsung"`
		StoreName      text   `json:"nama_toko"`
		FullName       text   `json:"nama_lengkap_sesuai_ktp"`
		ChoiceScore    number `json:"nilai_pg"`
		FinalScore     number `json:"nilai_akhir"`
		Total          number `json:"total"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*c = Coloris{
		ID:             w.ID.asInt64(),
		Timestamp:      string(w.Timestamp),
		Month:          string(w.Month),
		Region:         string(w.Region),
		Branch:         string(w.Branch),
		Subject:        string(w.Subject),
		SupervisorName: string(w.SupervisorName),
		StoreName:      string(w.StoreName),
		FullName:       string(w.FullName),
		ChoiceScore:    w.ChoiceScore.asFloat(),
		FinalScore:     w.FinalScore.asFloat(),
		Total:          w.Total.asFloat(),
	}
	return nil
}
