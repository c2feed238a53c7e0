package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSellout_UnmarshalOffTypeFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, s Sellout)
	}{
		{
			name:  "numeric registration",
			input: `{"no_reg":12345,"tahun":2024}`,
			check: func(t *testing.T, s Sellout) {
				assert.Equal(t, "12345", s.RegistrationNo)
				assert.Equal(t, 2024, s.Year)
			},
		},
		{
			name:  "string year and month",
			input: `{"tahun":"2024","bulan":" 02 "}`,
			check: func(t *testing.T, s Sellout) {
				assert.Equal(t, 2024, s.Year)
				assert.Equal(t, 2, s.Month)
			},
		},
		{
			name:  "string measures",
			input: `{"total_sellout":"1500","sellout_tt":"12.5","sellout_rm":""}`,
			check: func(t *testing.T, s Sellout) {
				assert.Equal(t, float64(1500), s.Total())
				assert.Equal(t, 12.5, s.TT())
				assert.Nil(t, s.SelloutRM)
			},
		},
		{
			name:  "unparseable values default",
			input: `{"tahun":"dua ribu","total_sellout":"n/a","primafix":true,"reg":{"x":1},"chl":false}`,
			check: func(t *testing.T, s Sellout) {
				assert.Zero(t, s.Year)
				assert.Nil(t, s.TotalSellout)
				assert.Nil(t, s.Primafix)
				assert.Empty(t, s.Region)
				assert.Equal(t, "false", s.Channel)
			},
		},
		{
			name:  "nulls",
			input: `{"id":null,"nama_colorist":null,"target_sellout":null}`,
			check: func(t *testing.T, s Sellout) {
				assert.Zero(t, s.ID)
				assert.Empty(t, s.ColoristName)
				assert.Nil(t, s.TargetSellout)
			},
		},
		{
			name:  "well typed",
			input: `{"id":9,"tahun":2024,"bulan":3,"nama_colorist":"Sari","total_sellout":6611000,"sellout_tt":0}`,
			check: func(t *testing.T, s Sellout) {
				assert.Equal(t, int64(9), s.ID)
				assert.Equal(t, "Sari", s.ColoristName)
				assert.Equal(t, float64(6611000), s.Total())
				require.NotNil(t, s.SelloutTT)
				assert.Zero(t, *s.SelloutTT)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Sellout
			require.NoError(t, json.Unmarshal([]byte(tt.input), &s))
			tt.check(t, s)
		})
	}
}

func TestSellout_UnmarshalNonObject(t *testing.T) {
	var s Sellout
	assert.Error(t, json.Unmarshal([]byte(`"row"`), &s))
}

func TestAssessments_UnmarshalOffTypeFields(t *testing.T) {
	var tr Training
	require.NoError(t, json.Unmarshal([]byte(`{"id":"3","bulan":1,"total_nilai":"88","cabang_area":12}`), &tr))
	assert.Equal(t, int64(3), tr.ID)
	assert.Equal(t, "1", tr.Month)
	assert.Equal(t, 88.0, Value(tr.TotalScore))
	assert.Equal(t, "12", tr.BranchArea)

	var co Coloris
	require.NoError(t, json.Unmarshal([]byte(`{"nilai_akhir":"75.5","nama_toko":404,"total":null}`), &co))
	assert.Equal(t, 75.5, Value(co.FinalScore))
	assert.Equal(t, "404", co.StoreName)
	assert.Nil(t, co.Total)
}
