package kinds

import (
	"github.com/crmarques/zpasync/reconciler"
	"github.com/crmarques/zpasync/resource"
)

const KindApplicationServer resource.Kind = "ApplicationServer"

type ApplicationServer struct {
	ID                string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name              *string  `json:"name,omitempty" yaml:"name,omitempty"`
	Description       *string  `json:"description,omitempty" yaml:"description,omitempty"`
	Address           *string  `json:"address,omitempty" yaml:"address,omitempty"`
	Enabled           *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	AppServerGroupIDs []string `json:"appServerGroupIds,omitempty" yaml:"app_server_group_ids,omitempty"`

	ConfigSpace  *string `json:"configSpace,omitempty" yaml:"config_space,omitempty"`
	CreationTime *string `json:"creationTime,omitempty" yaml:"creation_time,omitempty"`
	ModifiedBy   *string `json:"modifiedBy,omitempty" yaml:"modified_by,omitempty"`
	ModifiedTime *string `json:"modifiedTime,omitempty" yaml:"modified_time,omitempty"`
}

var applicationServerFields = []string{"name", "description", "address", "enabled", "app_server_group_ids"}

type applicationServerAdapter struct{}

var _ reconciler.Adapter[ApplicationServer] = applicationServerAdapter{}

func ApplicationServerAdapter() reconciler.Adapter[ApplicationServer] {
	return applicationServerAdapter{}
}

func (applicationServerAdapter) Kind() resource.Kind { return KindApplicationServer }

func (applicationServerAdapter) Fields() []string { return applicationServerFields }

func (applicationServerAdapter) ID(value ApplicationServer) string { return value.ID }

func (applicationServerAdapter) NaturalKey(value ApplicationServer) (string, bool) {
	return stringValue(value.Name), value.Name != nil
}

func (applicationServerAdapter) Matches(desired ApplicationServer, candidate ApplicationServer) bool {
	return desired.Name != nil && candidate.Name != nil && *desired.Name == *candidate.Name
}

func (applicationServerAdapter) Validate(spec resource.Spec[ApplicationServer]) error {
	return validatePresence(spec)
}

func (applicationServerAdapter) Normalize(value ApplicationServer) *resource.Canonical {
	return resource.NewCanonical().
		String("name", value.Name).
		String("description", value.Description).
		String("address", value.Address).
		Bool("enabled", value.Enabled).
		IDSet("app_server_group_ids", value.AppServerGroupIDs)
}

func (applicationServerAdapter) Excluded() []string { return nil }

func (applicationServerAdapter) Merge(current ApplicationServer, desired ApplicationServer) ApplicationServer {
	merged := current
	merged.Name = pick(current.Name, desired.Name)
	merged.Description = pick(current.Description, desired.Description)
	merged.Address = pick(current.Address, desired.Address)
	merged.Enabled = pick(current.Enabled, desired.Enabled)
	merged.AppServerGroupIDs = pickSlice(current.AppServerGroupIDs, desired.AppServerGroupIDs)
	return merged
}

func (applicationServerAdapter) CreatePayload(desired ApplicationServer) ApplicationServer {
	return ApplicationServer{
		Name:              desired.Name,
		Description:       desired.Description,
		Address:           desired.Address,
		Enabled:           desired.Enabled,
		AppServerGroupIDs: desired.AppServerGroupIDs,
	}
}

func (a applicationServerAdapter) UpdatePayload(merged ApplicationServer) ApplicationServer {
	payload := a.CreatePayload(merged)
	payload.ID = merged.ID
	return payload
}
