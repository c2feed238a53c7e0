package services

import (
	"errors"
	"strconv"

	"sellout-dashboard/internal/models"
	"sellout-dashboard/internal/upstream"
)

// DefaultLimit is how many rows a collapsed table shows.
const DefaultLimit = 10

const (
	labelShowTop = "Tampilkan Top 10"
	labelShowAll = "Tampilkan Semua"

	messageMalformed = "Format response tidak sesuai"
)

var (
	trainingColumns = []string{"Tanggal", "Cabang/Area", "Nama", "Materi", "Total Nilai"}
	colorisColumns  = []string{"Tanggal", "Nama", "Region", "Materi", "Nilai Akhir"}
	selloutColumns  = []string{
		"Tahun", "Bulan", "Reg", "Cabang", "Outlet", "Area Cover", "MOS/SS", "Nama Colorist",
		"No Reg", "Tgl Bergabung", "Masa Kerja", "Sellout TT", "Sellout RM", "Primafix",
		"Target Sellout", "CHL", "Wilayah", "Total Sellout",
	}
)

// TableView is a render-ready table. When Message is set the body is a
// single row spanning every column.
type TableView struct {
	Kind          models.DatasetKind
	Columns       []string
	Rows          [][]string
	Message       string
	Total         int
	ShowAll       bool
	ToggleVisible bool
	ToggleLabel   string
}

func (s Snapshot) Table(kind models.DatasetKind) TableView {
	switch kind {
	case models.KindTraining:
		return buildTable(kind, trainingColumns, s.Training, trainingRow)
	case models.KindColoris:
		return buildTable(kind, colorisColumns, s.Coloris, colorisRow)
	default:
		return buildTable(models.KindSellout, selloutColumns, s.Sellout, selloutRow)
	}
}

// Tables returns every table in display order.
func (s Snapshot) Tables() []TableView {
	views := make([]TableView, 0, len(models.DatasetKinds))
	for _, kind := range models.DatasetKinds {
		views = append(views, s.Table(kind))
	}
	return views
}

func buildTable[T any](kind models.DatasetKind, columns []string, sec Section[T], row func(T) []string) TableView {
	view := TableView{
		Kind:    kind,
		Columns: columns,
		Total:   len(sec.Rows),
		ShowAll: sec.ShowAll,
	}
	switch {
	case errors.Is(sec.Err, upstream.ErrMalformedEnvelope):
		view.Message = messageMalformed
		return view
	case sec.Err != nil:
		view.Message = "Error: " + sec.Err.Error()
		return view
	case !sec.Loaded:
		view.Message = "Memuat data..."
		return view
	case len(sec.Rows) == 0:
		view.Message = "Tidak ada data " + kind.Label()
		return view
	}

	visible := sec.Rows
	if !sec.ShowAll && len(visible) > DefaultLimit {
		visible = visible[:DefaultLimit]
	}
	view.Rows = make([][]string, 0, len(visible))
	for _, rec := range visible {
		view.Rows = append(view.Rows, row(rec))
	}

	view.ToggleVisible = len(sec.Rows) > DefaultLimit
	if view.ToggleVisible {
		view.ToggleLabel = labelShowAll
		if sec.ShowAll {
			view.ToggleLabel = labelShowTop
		}
	}
	return view
}

func trainingRow(r models.Training) []string {
	return []string{
		formatDate(r.Timestamp),
		r.BranchArea,
		r.FullName,
		r.Subject,
		formatPlain(r.TotalScore),
	}
}

func colorisRow(r models.Coloris) []string {
	return []string{
		formatDate(r.Timestamp),
		r.FullName,
		r.Region,
		r.Subject,
		formatPlain(r.FinalScore),
	}
}

func selloutRow(r models.Sellout) []string {
	return []string{
		strconv.Itoa(r.Year),
		strconv.Itoa(r.Month),
		r.Region,
		r.Branch,
		r.Outlet,
		r.AreaCover,
		r.MosSS,
		r.ColoristName,
		r.RegistrationNo,
		formatDate(r.JoinDate),
		formatFixed2(r.Tenure),
		formatNumber(r.SelloutTT),
		formatNumber(r.SelloutRM),
		formatNumber(r.Primafix),
		formatNumber(r.TargetSellout),
		r.Channel,
		r.Territory,
		formatNumber(r.TotalSellout),
	}
}
