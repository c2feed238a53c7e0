package templates

import (
	"fmt"

	"github.com/a-h/templ"

	"sellout-dashboard/internal/charts"
	"sellout-dashboard/internal/entry"
	"sellout-dashboard/internal/models"
	"sellout-dashboard/internal/services"
)

type LoginPage struct {
	Username string
	Error    string
}

type DashboardPage struct {
	User    string
	Kinds   []KindOption
	Notice  NoticeView
	Tables  []services.TableView
	Charts  ChartsPanel
	Loading bool
}

type KindOption struct {
	Value string
	Label string
}

// NoticeView is the banner above the dashboard. Level is "success" or
// "error".
type NoticeView struct {
	Message string
	Level   string
}

type ChartsPanel struct {
	Empty  bool
	Frames []ChartFrame
}

type ChartFrame struct {
	Title string
	URL   string
}

// ModalView is the import/export/manual dialog for one dataset kind.
type ModalView struct {
	Action      string
	Title       string
	ActionLabel string
	Kind        models.DatasetKind
	Fields      []entry.Field
	Error       string
}

// NoticeFrom adapts a pending session notice.
func NoticeFrom(n services.Notice) NoticeView {
	if n.Message == "" {
		return NoticeView{}
	}
	level := "success"
	if n.Error {
		level = "error"
	}
	return NoticeView{Message: n.Message, Level: level}
}

func Kinds() []KindOption {
	opts := make([]KindOption, 0, len(models.DatasetKinds))
	for _, k := range models.DatasetKinds {
		opts = append(opts, KindOption{Value: k.String(), Label: k.Label()})
	}
	return opts
}

// NewChartsPanel points the chart frames at the given data revision so a
// reload busts the browser cache.
func NewChartsPanel(b charts.Bundle, revision uint64) ChartsPanel {
	if b.Empty() {
		return ChartsPanel{Empty: true}
	}
	panel := ChartsPanel{Frames: make([]ChartFrame, 0, len(charts.Names))}
	for _, name := range charts.Names {
		panel.Frames = append(panel.Frames, ChartFrame{
			Title: name.Title(),
			URL:   fmt.Sprintf("/charts/%s?rev=%d", name, revision),
		})
	}
	return panel
}

// NewModal builds the dialog for action. It reports false for an unknown
// action.
func NewModal(action string, kind models.DatasetKind) (ModalView, bool) {
	m := ModalView{Action: action, Kind: kind}
	switch action {
	case "import":
		m.Title = "Import Excel"
		m.ActionLabel = "Import"
	case "export":
		m.Title = "Export Excel"
		m.ActionLabel = "Download"
	case "manual":
		m.Title = "Input Manual"
		m.ActionLabel = "Simpan"
		m.Fields = entry.Fields(kind)
	default:
		return ModalView{}, false
	}
	return m, true
}

// Table renders the #table-<kind> region.
func Table(v services.TableView) templ.Component {
	return component(fragments, "table", v)
}

// Charts renders the #charts region.
func Charts(p ChartsPanel) templ.Component {
	return component(fragments, "charts", p)
}

// Modal renders the #modal region.
func Modal(m ModalView) templ.Component {
	return component(fragments, "modal", m)
}

// ModalClosed renders an empty #modal region.
func ModalClosed() templ.Component {
	return component(fragments, "modal", nil)
}

// Notice renders the #notice region.
func Notice(n NoticeView) templ.Component {
	return component(fragments, "notice", n)
}
