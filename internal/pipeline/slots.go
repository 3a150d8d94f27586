package pipeline

import (
	"errors"
	"fmt"
)

// Slot names a file input of the dashboard.
type Slot string

// File slots, in picker order.
const (
	SlotAdmissions   Slot = "admissions"
	SlotDemographics Slot = "demographics"
	SlotDischarge    Slot = "discharge"
	SlotICU          Slot = "icu"
	SlotStaff        Slot = "staff"
	SlotEmergency    Slot = "emergency"
	SlotDepartment   Slot = "department"
)

// AllSlots lists every slot in picker order.
var AllSlots = []Slot{
	SlotAdmissions,
	SlotDemographics,
	SlotDischarge,
	SlotICU,
	SlotStaff,
	SlotEmergency,
	SlotDepartment,
}

// RequiredSlots must all hold a file before a submit is accepted.
var RequiredSlots = []Slot{
	SlotAdmissions,
	SlotDemographics,
	SlotDischarge,
	SlotICU,
	SlotStaff,
}

// ErrUnknownSlot is returned for a slot name outside AllSlots.
var ErrUnknownSlot = errors.New("unknown file slot")

// ParseSlot validates a slot name.
func ParseSlot(name string) (Slot, error) {
	for _, s := range AllSlots {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSlot, name)
}

// Required reports whether s is part of the required set.
func (s Slot) Required() bool {
	for _, r := range RequiredSlots {
		if r == s {
			return true
		}
	}
	return false
}

// Label is the human-readable name of the slot's file picker.
func (s Slot) Label() string {
	switch s {
	case SlotAdmissions:
		return "Patient Admissions"
	case SlotDemographics:
		return "Patient Demographics"
	case SlotDischarge:
		return "Discharge Records"
	case SlotICU:
		return "ICU Equipment Usage"
	case SlotStaff:
		return "Staff Schedules"
	case SlotEmergency:
		return "Emergency Cases"
	case SlotDepartment:
		return "Department Patient Counts"
	}
	return string(s)
}

// File is a user-selected input file.
type File struct {
	Name string
	Data []byte
}

// NamedFile pairs a file with the slot it was selected for.
type NamedFile struct {
	Slot Slot
	File *File
}

// SlotStatus describes one slot for display.
type SlotStatus struct {
	Slot     Slot   `json:"slot"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	FileName string `json:"fileName,omitempty"`
	Size     int    `json:"size,omitempty"`
}

// Filled reports whether the slot holds a file.
func (s SlotStatus) Filled() bool {
	return s.FileName != ""
}

// fileSlots holds at most one file per slot.
type fileSlots map[Slot]*File

func (f fileSlots) set(slot Slot, file *File) {
	if file == nil {
		delete(f, slot)
		return
	}
	f[slot] = file
}

// missing returns the required slots without a file, in picker order.
func (f fileSlots) missing() []Slot {
	var missing []Slot
	for _, s := range RequiredSlots {
		if f[s] == nil {
			missing = append(missing, s)
		}
	}
	return missing
}

// snapshot returns the non-empty slots in picker order.
func (f fileSlots) snapshot() []NamedFile {
	files := make([]NamedFile, 0, len(f))
	for _, s := range AllSlots {
		if file := f[s]; file != nil {
			files = append(files, NamedFile{Slot: s, File: file})
		}
	}
	return files
}

func (f fileSlots) status() []SlotStatus {
	statuses := make([]SlotStatus, 0, len(AllSlots))
	for _, s := range AllSlots {
		status := SlotStatus{Slot: s, Label: s.Label(), Required: s.Required()}
		if file := f[s]; file != nil {
			status.FileName = file.Name
			status.Size = len(file.Data)
		}
		statuses = append(statuses, status)
	}
	return statuses
}
