package kinds

import (
	"fmt"
	"slices"
	"strings"

	"github.com/crmarques/zpasync/reconciler"
	"github.com/crmarques/zpasync/resource"
)

const KindPRAApproval resource.Kind = "PRAApproval"

var workingDays = []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

type PRAApproval struct {
	ID             string                 `json:"id,omitempty" yaml:"id,omitempty"`
	EmailIDs       []string               `json:"emailIds,omitempty" yaml:"email_ids,omitempty"`
	StartTime      *string                `json:"startTime,omitempty" yaml:"start_time,omitempty"`
	EndTime        *string                `json:"endTime,omitempty" yaml:"end_time,omitempty"`
	ApplicationIDs resource.IDRefs        `json:"applications,omitempty" yaml:"application_ids,omitempty"`
	WorkingHours   *resource.WorkingHours `json:"workingHours,omitempty" yaml:"working_hours,omitempty"`

	Status       *string `json:"status,omitempty" yaml:"status,omitempty"`
	CreationTime *string `json:"creationTime,omitempty" yaml:"creation_time,omitempty"`
	ModifiedBy   *string `json:"modifiedBy,omitempty" yaml:"modified_by,omitempty"`
	ModifiedTime *string `json:"modifiedTime,omitempty" yaml:"modified_time,omitempty"`
}

var praApprovalFields = []string{"email_ids", "start_time", "end_time", "application_ids", "working_hours"}

// The remote echoes approval windows in its own time format, so they are
// sent but never compared.
var praApprovalExcluded = []string{"start_time", "end_time"}

type praApprovalAdapter struct{}

var _ reconciler.Adapter[PRAApproval] = praApprovalAdapter{}

func PRAApprovalAdapter() reconciler.Adapter[PRAApproval] {
	return praApprovalAdapter{}
}

func (praApprovalAdapter) Kind() resource.Kind { return KindPRAApproval }

func (praApprovalAdapter) Fields() []string { return praApprovalFields }

func (praApprovalAdapter) ID(value PRAApproval) string { return value.ID }

// NaturalKey is the sorted, comma-joined set of approver emails. An empty
// set is no key.
func (praApprovalAdapter) NaturalKey(value PRAApproval) (string, bool) {
	emails := resource.CanonicalIDSet(value.EmailIDs)
	if len(emails) == 0 {
		return "", false
	}
	return strings.Join(emails, ","), true
}

func (praApprovalAdapter) Matches(desired PRAApproval, candidate PRAApproval) bool {
	emails := resource.CanonicalIDSet(desired.EmailIDs)
	if len(emails) == 0 {
		return false
	}
	return slices.Equal(emails, resource.CanonicalIDSet(candidate.EmailIDs))
}

func (praApprovalAdapter) Validate(spec resource.Spec[PRAApproval]) error {
	if err := validatePresence(spec); err != nil {
		return err
	}

	var errs fieldErrors
	if hours := spec.Desired.WorkingHours; hours != nil {
		for idx, day := range hours.Days {
			errs.oneOf(fmt.Sprintf("working_hours.days[%d]", idx), &day, workingDays...)
		}
	}
	return errs.err()
}

func (praApprovalAdapter) Normalize(value PRAApproval) *resource.Canonical {
	return resource.NewCanonical().
		IDSet("email_ids", value.EmailIDs).
		String("start_time", value.StartTime).
		String("end_time", value.EndTime).
		IDSet("application_ids", value.ApplicationIDs).
		WorkingHours("working_hours", value.WorkingHours)
}

func (praApprovalAdapter) Excluded() []string { return praApprovalExcluded }

func (praApprovalAdapter) Merge(current PRAApproval, desired PRAApproval) PRAApproval {
	merged := current
	merged.EmailIDs = pickSlice(current.EmailIDs, desired.EmailIDs)
	merged.StartTime = pick(current.StartTime, desired.StartTime)
	merged.EndTime = pick(current.EndTime, desired.EndTime)
	merged.ApplicationIDs = pickSlice(current.ApplicationIDs, desired.ApplicationIDs)
	merged.WorkingHours = pick(current.WorkingHours, desired.WorkingHours)
	return merged
}

func (praApprovalAdapter) CreatePayload(desired PRAApproval) PRAApproval {
	payload := PRAApproval{
		EmailIDs:       desired.EmailIDs,
		StartTime:      desired.StartTime,
		EndTime:        desired.EndTime,
		ApplicationIDs: desired.ApplicationIDs,
		WorkingHours:   resource.MapWorkingHours(desired.WorkingHours),
	}
	if payload.WorkingHours != nil {
		for idx, day := range payload.WorkingHours.Days {
			payload.WorkingHours.Days[idx] = resource.CanonicalEnum(day)
		}
	}
	return payload
}

func (a praApprovalAdapter) UpdatePayload(merged PRAApproval) PRAApproval {
	payload := a.CreatePayload(merged)
	payload.ID = merged.ID
	return payload
}
