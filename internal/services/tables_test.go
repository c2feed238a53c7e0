package services

import (
	"errors"
	"fmt"
	"testing"

	"sellout-dashboard/internal/models"
	"sellout-dashboard/internal/upstream"
)

func TestSnapshotTable(t *testing.T) {
	tests := []struct {
		name        string
		section     Section[models.Sellout]
		wantRows    int
		wantMessage string
		wantToggle  bool
		wantLabel   string
	}{
		{
			name:        "not loaded",
			section:     Section[models.Sellout]{},
			wantMessage: "Memuat data...",
		},
		{
			name:        "empty",
			section:     Section[models.Sellout]{Loaded: true},
			wantMessage: "Tidak ada data Sellout",
		},
		{
			name:        "error",
			section:     Section[models.Sellout]{Loaded: true, Err: errors.New("HTTP 500 Internal Server Error")},
			wantMessage: "Error: HTTP 500 Internal Server Error",
		},
		{
			name:        "malformed envelope",
			section:     Section[models.Sellout]{Loaded: true, Err: fmt.Errorf("list sellout: %w", upstream.ErrMalformedEnvelope)},
			wantMessage: "Format response tidak sesuai",
		},
		{
			name:     "ten rows hide the toggle",
			section:  Section[models.Sellout]{Loaded: true, Rows: sellouts(10)},
			wantRows: 10,
		},
		{
			name:       "collapsed",
			section:    Section[models.Sellout]{Loaded: true, Rows: sellouts(25)},
			wantRows:   10,
			wantToggle: true,
			wantLabel:  "Tampilkan Semua",
		},
		{
			name:       "expanded",
			section:    Section[models.Sellout]{Loaded: true, Rows: sellouts(25), ShowAll: true},
			wantRows:   25,
			wantToggle: true,
			wantLabel:  "Tampilkan Top 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Snapshot{Sellout: tt.section}.Table(models.KindSellout)

			if len(view.Rows) != tt.wantRows {
				t.Errorf("rows = %d, want %d", len(view.Rows), tt.wantRows)
			}
			if view.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", view.Message, tt.wantMessage)
			}
			if view.ToggleVisible != tt.wantToggle {
				t.Errorf("ToggleVisible = %v, want %v", view.ToggleVisible, tt.wantToggle)
			}
			if view.ToggleLabel != tt.wantLabel {
				t.Errorf("ToggleLabel = %q, want %q", view.ToggleLabel, tt.wantLabel)
			}
			if len(view.Columns) != 18 {
				t.Errorf("columns = %d, want 18", len(view.Columns))
			}
		})
	}
}

func TestSnapshotTable_EmptyMessages(t *testing.T) {
	snap := Snapshot{
		Training: Section[models.Training]{Loaded: true},
		Coloris:  Section[models.Coloris]{Loaded: true},
	}
	if got := snap.Table(models.KindTraining).Message; got != "Tidak ada data Training" {
		t.Errorf("training message = %q", got)
	}
	if got := snap.Table(models.KindColoris).Message; got != "Tidak ada data Coloris" {
		t.Errorf("coloris message = %q", got)
	}
}

func TestSnapshotTables_Order(t *testing.T) {
	views := Snapshot{}.Tables()
	if len(views) != 3 {
		t.Fatalf("len = %d, want 3", len(views))
	}
	for i, kind := range models.DatasetKinds {
		if views[i].Kind != kind {
			t.Errorf("views[%d].Kind = %s, want %s", i, views[i].Kind, kind)
		}
	}
}

func TestSelloutRowFormatting(t *testing.T) {
	row := selloutRow(models.Sellout{
		Year:         2024,
		Month:        1,
		ColoristName: "Ani",
		JoinDate:     "2023-03-05",
		Tenure:       models.Float(1.5),
		SelloutTT:    models.Float(4411000),
		TotalSellout: models.Float(6611000),
	})

	checks := map[int]string{
		0:  "2024",
		1:  "1",
		7:  "Ani",
		9:  "5/3/2023",
		10: "1,50",
		11: "4.411.000",
		12: "",
		17: "6.611.000",
	}
	for i, want := range checks {
		if row[i] != want {
			t.Errorf("column %d (%s) = %q, want %q", i, selloutColumns[i], row[i], want)
		}
	}
}

func TestTrainingRowFormatting(t *testing.T) {
	row := trainingRow(models.Training{
		Timestamp:  "2024-01-15T10:30:00Z",
		BranchArea: "Jakarta",
		FullName:   "Budi",
		Subject:    "Pewarnaan",
		TotalScore: models.Float(90),
	})
	want := []string{"15/1/2024", "Jakarta", "Budi", "Pewarnaan", "90"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %d = %q, want %q", i, row[i], want[i])
		}
	}
}

func TestFormatDate_Unparseable(t *testing.T) {
	if got := formatDate("kemarin"); got != "kemarin" {
		t.Errorf("formatDate = %q, want input unchanged", got)
	}
	if got := formatDate(""); got != "" {
		t.Errorf("formatDate(\"\") = %q", got)
	}
}
