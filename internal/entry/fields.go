package entry

import "sellout-dashboard/internal/models"

// InputType is the HTML input type of a form field.
type InputType string

const (
	InputText     InputType = "text"
	InputNumber   InputType = "number"
	InputDateTime InputType = "datetime-local"
)

// Field describes one input of a manual-entry form.
type Field struct {
	Name        string
	Label       string
	Type        InputType
	Placeholder string
	Step        string
	Min         string
	Max         string
}

var trainingFields = []Field{
	{Name: "timestamp", Label: "Timestamp", Type: InputDateTime},
	{Name: "bulan", Label: "Bulan", Type: InputText, Placeholder: "Januari"},
	{Name: "region", Label: "Region", Type: InputText},
	{Name: "cabang_area", Label: "Cabang/Area", Type: InputText},
	{Name: "nama_atasan_langsung", Label: "Nama Atasan Langsung", Type: InputText},
	{Name: "materi_pelatihan", Label: "Materi Pelatihan", Type: InputText},
	{Name: "nama_lengkap_sesuai_ktp", Label: "Nama Lengkap Sesuai KTP", Type: InputText},
	{Name: "jabatan", Label: "Jabatan", Type: InputText},
	{Name: "total_nilai", Label: "Total Nilai (90/100 atau 90)", Type: InputText, Placeholder: "90/100"},
	{Name: "nilai_essay", Label: "Nilai Essay", Type: InputNumber, Step: "0.01"},
	{Name: "total", Label: "Total", Type: InputNumber, Step: "0.01"},
}

var colorisFields = []Field{
	{Name: "timestamp", Label: "Timestamp", Type: InputDateTime},
	{Name: "bulan", Label: "Bulan", Type: InputText},
	{Name: "region", Label: "Region", Type: InputText},
	{Name: "cabang", Label: "Cabang", Type: InputText},
	{Name: "materi", Label: "Materi", Type: InputText},
	{Name: "nama_atasan_langsung", Label: "Nama Atasan Langsung", Type: InputText},
	{Name: "nama_toko", Label: "Nama Toko", Type: InputText},
	{Name: "nama_lengkap_sesuai_ktp", Label: "Nama Lengkap Sesuai KTP", Type: InputText},
	{Name: "nilai_pg", Label: "Nilai PG (format: 80/100 atau 80)", Type: InputText, Placeholder: "80/100"},
	{Name: "nilai_akhir", Label: "Nilai Akhir", Type: InputNumber, Step: "0.01"},
	{Name: "total", Label: "Total", Type: InputNumber, Step: "0.01"},
}

var selloutFields = []Field{
	{Name: "tahun", Label: "Tahun (2024)", Type: InputNumber, Placeholder: "2024"},
	{Name: "bulan", Label: "Bulan (1-12)", Type: InputNumber, Placeholder: "1", Min: "1", Max: "12"},
	{Name: "reg", Label: "Reg", Type: InputText},
	{Name: "cabang", Label: "Cabang", Type: InputText},
	{Name: "outlet", Label: "Outlet", Type: InputText},
	{Name: "nama_colorist", Label: "Nama Colorist", Type: InputText},
	{Name: "no_reg", Label: "No Reg", Type: InputText},
	{Name: "chl", Label: "CHL", Type: InputText},
	{Name: "sellout_tt", Label: "Sellout TT", Type: InputNumber, Step: "0.01", Placeholder: "4411000"},
	{Name: "sellout_rm", Label: "Sellout RM", Type: InputNumber, Step: "0.01", Placeholder: "2200000"},
	{Name: "total_sellout", Label: "Total Sellout", Type: InputNumber, Step: "0.01", Placeholder: "6611000"},
}

// Fields returns the manual-entry form for kind. Every field is required.
func Fields(kind models.DatasetKind) []Field {
	switch kind {
	case models.KindTraining:
		return trainingFields
	case models.KindColoris:
		return colorisFields
	case models.KindSellout:
		return selloutFields
	default:
		return nil
	}
}
