package resource

import "slices"

type WorkingHours struct {
	Days          []string `json:"days,omitempty" yaml:"days,omitempty"`
	StartTime     *string  `json:"startTime,omitempty" yaml:"start_time,omitempty"`
	EndTime       *string  `json:"endTime,omitempty" yaml:"end_time,omitempty"`
	StartTimeCron *string  `json:"startTimeCron,omitempty" yaml:"start_time_cron,omitempty"`
	EndTimeCron   *string  `json:"endTimeCron,omitempty" yaml:"end_time_cron,omitempty"`
	TimeZone      *string  `json:"timeZone,omitempty" yaml:"time_zone,omitempty"`
}

// MapWorkingHours copies the sub-object as-is. Cron and local-time
// consistency is left to the remote service.
func MapWorkingHours(value *WorkingHours) *WorkingHours {
	if value == nil {
		return nil
	}
	cloned := *value
	cloned.Days = slices.Clone(value.Days)
	cloned.StartTime = cloneString(value.StartTime)
	cloned.EndTime = cloneString(value.EndTime)
	cloned.StartTimeCron = cloneString(value.StartTimeCron)
	cloned.EndTimeCron = cloneString(value.EndTimeCron)
	cloned.TimeZone = cloneString(value.TimeZone)
	return &cloned
}

// CanonicalWorkingHoursValue is the comparable form of WorkingHours.
type CanonicalWorkingHoursValue struct {
	Days          []string
	StartTime     string
	EndTime       string
	StartTimeCron string
	EndTimeCron   string
	TimeZone      string
}

func CanonicalWorkingHours(value WorkingHours) CanonicalWorkingHoursValue {
	return CanonicalWorkingHoursValue{
		Days:          CanonicalEnumSet(value.Days),
		StartTime:     derefString(value.StartTime),
		EndTime:       derefString(value.EndTime),
		StartTimeCron: derefString(value.StartTimeCron),
		EndTimeCron:   derefString(value.EndTimeCron),
		TimeZone:      derefString(value.TimeZone),
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
