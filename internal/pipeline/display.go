package pipeline

import (
	"fmt"
	"time"

	"github.com/medipredict/forecast-dashboard/internal/chart"
	"github.com/medipredict/forecast-dashboard/internal/result"
	"github.com/medipredict/forecast-dashboard/pkg/datetime"
	"github.com/medipredict/forecast-dashboard/pkg/format"
)

// State is the display state of the result area.
type State string

// Result area states. Idle → Loading → (Rendered | Error); a new submit from
// Rendered or Error re-enters Loading.
const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateRendered State = "rendered"
	StateError    State = "error"
)

// SectionKind identifies a result section.
type SectionKind string

// Sections in render order.
const (
	SectionAdmissions  SectionKind = "admissions"
	SectionLOS         SectionKind = "los"
	SectionResources   SectionKind = "resources"
	SectionICU         SectionKind = "icu"
	SectionEmergency   SectionKind = "emergency"
	SectionDepartments SectionKind = "departments"
)

// Metric is a single displayed value.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ChartSlot is a chart placeholder inside a section, bound to its canvas id.
// Handle is nil until the chart is created, and stays nil if creation failed.
type ChartSlot struct {
	CanvasID string       `json:"canvasId"`
	Heading  string       `json:"heading,omitempty"`
	Handle   chart.Handle `json:"-"`
	Err      string       `json:"error,omitempty"`

	spec chart.Spec
}

// Section is one block of the rendered result area.
type Section struct {
	Kind        SectionKind `json:"kind"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Period      string      `json:"period,omitempty"`
	Metric      *Metric     `json:"metric,omitempty"`
	Charts      []ChartSlot `json:"charts,omitempty"`
	Note        string      `json:"note,omitempty"`
}

// Display is a snapshot of the result area.
type Display struct {
	State      State     `json:"state"`
	Message    string    `json:"message,omitempty"`
	Sections   []Section `json:"sections,omitempty"`
	Generation int       `json:"generation"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ChartCount returns the number of created charts in the display.
func (d Display) ChartCount() int {
	n := 0
	for _, s := range d.Sections {
		for _, c := range s.Charts {
			if c.Handle != nil {
				n++
			}
		}
	}
	return n
}

// Section returns the section of the given kind.
func (d Display) Section(kind SectionKind) (Section, bool) {
	for _, s := range d.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}

func unavailableNote(reason string) string {
	return "Forecast unavailable: " + reason
}

func period(dates []string) string {
	first, last, ok := datetime.Span(dates)
	if !ok {
		return ""
	}
	return first.Format(datetime.DateLabelLayout) + " to " + last.Format(datetime.DateLabelLayout)
}

func horizon(description string, dates []string) string {
	return fmt.Sprintf(description, len(dates))
}

// canvasIDs hands out unique canvas ids within one render pass.
type canvasIDs map[string]int

func (c canvasIDs) next(base string) string {
	c[base]++
	if n := c[base]; n > 1 {
		return fmt.Sprintf("%s-%d", base, n)
	}
	return base
}

// buildSections lays out the result area for res in the fixed order
// Admissions, LOS, Resources, ICU, then Emergency and Departments when
// present. Chart slots carry their specs; no chart is created here.
func buildSections(res *result.ForecastResult) []Section {
	ids := canvasIDs{}
	sections := make([]Section, 0, 6)

	admissions := Section{
		Kind:  SectionAdmissions,
		Title: "1. Patient Admissions Forecast",
	}
	if res.Admissions.Available() {
		admissions.Description = horizon("Predicted daily patient admissions for the next %d days", res.Admissions.Dates)
		admissions.Period = period(res.Admissions.Dates)
		admissions.Charts = []ChartSlot{{
			CanvasID: ids.next("admissions-chart"),
			spec: chart.Spec{
				Title:  "Patient Admissions",
				Labels: res.Admissions.Dates,
				Series: []chart.Series{{Name: "Predicted Admissions", Values: res.Admissions.Values, Color: chart.ColorAdmissions}},
			},
		}}
	} else {
		admissions.Note = unavailableNote(res.Admissions.Err)
	}
	sections = append(sections, admissions)

	los := Section{
		Kind:  SectionLOS,
		Title: "2. Length-of-Stay (LOS) Prediction",
	}
	if res.LOS.Available() {
		los.Metric = &Metric{Label: "Predicted Avg LOS (days)", Value: format.Decimal(res.LOS.Avg)}
	} else {
		los.Note = unavailableNote(res.LOS.Err)
	}
	sections = append(sections, los)

	resources := Section{
		Kind:  SectionResources,
		Title: "3. Bed & Staff Needs (Next 30 days)",
	}
	if res.Resources.Available() {
		resources.Description = "Forecasted resource requirements based on admissions and LOS"
		resources.Period = period(res.Resources.Dates)
		resources.Charts = []ChartSlot{{
			CanvasID: ids.next("resources-chart"),
			spec: chart.Spec{
				Title:  "Bed & Staff Needs",
				Labels: res.Resources.Dates,
				Series: []chart.Series{
					{Name: "Beds Needed", Values: res.Resources.Beds, Color: chart.ColorBeds},
					{Name: "Staff Needed", Values: res.Resources.Staff, Color: chart.ColorStaff},
				},
			},
		}}
	} else {
		resources.Note = unavailableNote(res.Resources.Err)
	}
	sections = append(sections, resources)

	icu := Section{
		Kind:  SectionICU,
		Title: "4. ICU Equipment Usage Forecast",
	}
	if !res.ICU.Available() {
		icu.Note = unavailableNote(res.ICU.Err)
	}
	for _, entry := range res.ICU.AvailableEntries() {
		icu.Charts = append(icu.Charts, ChartSlot{
			CanvasID: ids.next("icu-chart-" + format.Slug(entry.Name)),
			Heading:  format.EquipmentHeading(entry.Name),
			spec: chart.Spec{
				Title:  format.EquipmentHeading(entry.Name),
				Labels: entry.Dates,
				Series: []chart.Series{{Name: "Predicted " + format.Spaced(entry.Name), Values: entry.Values, Color: chart.ColorICU}},
			},
		})
	}
	sections = append(sections, icu)

	if res.HasEmergency() {
		sections = append(sections, Section{
			Kind:        SectionEmergency,
			Title:       "5. Emergency Case Forecasting",
			Description: horizon("Predicted emergency cases for the next %d days", res.Emergency.Dates),
			Period:      period(res.Emergency.Dates),
			Charts: []ChartSlot{{
				CanvasID: ids.next("emergency-chart"),
				spec: chart.Spec{
					Title:  "Emergency Cases",
					Labels: res.Emergency.Dates,
					Series: []chart.Series{{Name: "Predicted Emergency Cases", Values: res.Emergency.Values, Color: chart.ColorEmergency}},
				},
			}},
		})
	}

	if res.HasDepartments() {
		departments := Section{
			Kind:  SectionDepartments,
			Title: "6. Department-wise Patient Forecast",
		}
		for _, entry := range res.Departments.AvailableEntries() {
			departments.Charts = append(departments.Charts, ChartSlot{
				CanvasID: ids.next("dept-chart-" + format.Slug(entry.Name)),
				Heading:  format.DepartmentHeading(entry.Name),
				spec: chart.Spec{
					Title:  format.DepartmentHeading(entry.Name),
					Labels: entry.Dates,
					Series: []chart.Series{{Name: "Predicted Patients", Values: entry.Values, Color: chart.ColorDepartments}},
				},
			})
		}
		sections = append(sections, departments)
	}

	return sections
}
