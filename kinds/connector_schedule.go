package kinds

import (
	"github.com/crmarques/zpasync/faults"
	"github.com/crmarques/zpasync/reconciler"
	"github.com/crmarques/zpasync/resource"
	"k8s.io/utils/ptr"
)

const KindConnectorSchedule resource.Kind = "ConnectorSchedule"

const (
	DefaultScheduleFrequency         = "days"
	DefaultScheduleFrequencyInterval = "5"
)

var scheduleFrequencyIntervals = []string{"5", "7", "14", "30", "60", "90"}

// ConnectorSchedule is the tenant-wide auto-delete schedule for disconnected
// app connectors. There is at most one per tenant.
type ConnectorSchedule struct {
	ID                string  `json:"id,omitempty" yaml:"id,omitempty"`
	CustomerID        *string `json:"customerId,omitempty" yaml:"customer_id,omitempty"`
	Enabled           *bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	DeleteDisabled    *bool   `json:"deleteDisabled,omitempty" yaml:"delete_disabled,omitempty"`
	Frequency         *string `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	FrequencyInterval *string `json:"frequencyInterval,omitempty" yaml:"frequency_interval,omitempty"`
}

var connectorScheduleFields = []string{"enabled", "delete_disabled", "frequency", "frequency_interval"}

type connectorScheduleAdapter struct {
	customerID string
}

var (
	_ reconciler.Adapter[ConnectorSchedule]    = connectorScheduleAdapter{}
	_ reconciler.CreateGate[ConnectorSchedule] = connectorScheduleAdapter{}
	_ defaulter[ConnectorSchedule]             = connectorScheduleAdapter{}
)

// ConnectorScheduleAdapter stamps customerID on every payload.
func ConnectorScheduleAdapter(customerID string) reconciler.Adapter[ConnectorSchedule] {
	return connectorScheduleAdapter{customerID: customerID}
}

func (connectorScheduleAdapter) Kind() resource.Kind { return KindConnectorSchedule }

func (connectorScheduleAdapter) Fields() []string { return connectorScheduleFields }

func (connectorScheduleAdapter) ID(value ConnectorSchedule) string { return value.ID }

func (connectorScheduleAdapter) NaturalKey(ConnectorSchedule) (string, bool) {
	return "", true
}

func (connectorScheduleAdapter) Matches(ConnectorSchedule, ConnectorSchedule) bool {
	return true
}

func (connectorScheduleAdapter) Validate(spec resource.Spec[ConnectorSchedule]) error {
	if err := validatePresence(spec); err != nil {
		return err
	}
	if spec.Presence == resource.PresenceAbsent {
		return faults.NewTypedError(
			faults.ValidationError,
			"connector schedule cannot be removed; set enabled to false instead",
			nil,
		).WithFields("state")
	}

	var errs fieldErrors
	errs.oneOf("frequency_interval", spec.Desired.FrequencyInterval, scheduleFrequencyIntervals...)
	return errs.err()
}

func (connectorScheduleAdapter) ApplyDefaults(value ConnectorSchedule) ConnectorSchedule {
	if value.Frequency == nil {
		value.Frequency = ptr.To(DefaultScheduleFrequency)
	}
	if value.FrequencyInterval == nil {
		value.FrequencyInterval = ptr.To(DefaultScheduleFrequencyInterval)
	}
	return value
}

// ShouldCreate only creates a missing schedule when it is to be enabled.
func (connectorScheduleAdapter) ShouldCreate(desired ConnectorSchedule) bool {
	return ptr.Deref(desired.Enabled, false)
}

func (connectorScheduleAdapter) Normalize(value ConnectorSchedule) *resource.Canonical {
	return resource.NewCanonical().
		Bool("enabled", value.Enabled).
		Bool("delete_disabled", value.DeleteDisabled).
		Enum("frequency", value.Frequency).
		String("frequency_interval", value.FrequencyInterval)
}

func (connectorScheduleAdapter) Excluded() []string { return nil }

func (connectorScheduleAdapter) Merge(current ConnectorSchedule, desired ConnectorSchedule) ConnectorSchedule {
	merged := current
	merged.Enabled = pick(current.Enabled, desired.Enabled)
	merged.DeleteDisabled = pick(current.DeleteDisabled, desired.DeleteDisabled)
	merged.Frequency = pick(current.Frequency, desired.Frequency)
	merged.FrequencyInterval = pick(current.FrequencyInterval, desired.FrequencyInterval)
	return merged
}

func (a connectorScheduleAdapter) CreatePayload(desired ConnectorSchedule) ConnectorSchedule {
	payload := ConnectorSchedule{
		CustomerID:        desired.CustomerID,
		Enabled:           desired.Enabled,
		DeleteDisabled:    desired.DeleteDisabled,
		Frequency:         desired.Frequency,
		FrequencyInterval: desired.FrequencyInterval,
	}
	if payload.CustomerID == nil && a.customerID != "" {
		payload.CustomerID = ptr.To(a.customerID)
	}
	return payload
}

func (a connectorScheduleAdapter) UpdatePayload(merged ConnectorSchedule) ConnectorSchedule {
	payload := a.CreatePayload(merged)
	payload.ID = merged.ID
	return payload
}
