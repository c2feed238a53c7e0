package upstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellout-dashboard/internal/models"
)

func TestDecodeList_SkipsBadRecords(t *testing.T) {
	body := []byte(`{"data":[{"id":1,"nama_colorist":"Ani"},42,[1,2],null,{"id":2,"no_reg":7}]}`)

	rows, skipped, err := decodeList[models.Sellout](body)
	require.NoError(t, err)
	assert.Equal(t, 3, skipped)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ani", rows[0].ColoristName)
	assert.Equal(t, "7", rows[1].RegistrationNo)
}

func TestDecodeList_Envelope(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		wantLen int
	}{
		{name: "empty list", body: `{"data":[]}`},
		{name: "object data", body: `{"data":{}}`, wantErr: ErrMalformedEnvelope},
		{name: "missing data", body: `{"total":3}`, wantErr: ErrMalformedEnvelope},
		{name: "training", body: `{"data":[{"id":"5","bulan":1,"total_nilai":"90"}]}`, wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, skipped, err := decodeList[models.Training]([]byte(tt.body))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Zero(t, skipped)
			assert.Len(t, rows, tt.wantLen)
		})
	}
}
