package kinds

import (
	"github.com/crmarques/zpasync/faults"
	"github.com/crmarques/zpasync/reconciler"
	"github.com/crmarques/zpasync/resource"
)

const KindPRACredential resource.Kind = "PRACredential"

// PRACredential is read-only; secrets are never returned by the remote.
type PRACredential struct {
	ID                      string  `json:"id,omitempty" yaml:"id,omitempty"`
	Name                    *string `json:"name,omitempty" yaml:"name,omitempty"`
	Description             *string `json:"description,omitempty" yaml:"description,omitempty"`
	CredentialType          *string `json:"credentialType,omitempty" yaml:"credential_type,omitempty"`
	UserDomain              *string `json:"userDomain,omitempty" yaml:"user_domain,omitempty"`
	Username                *string `json:"userName,omitempty" yaml:"username,omitempty"`
	LastCredentialResetTime *string `json:"lastCredentialResetTime,omitempty" yaml:"last_credential_reset_time,omitempty"`
	CreationTime            *string `json:"creationTime,omitempty" yaml:"creation_time,omitempty"`
	ModifiedBy              *string `json:"modifiedBy,omitempty" yaml:"modified_by,omitempty"`
	ModifiedTime            *string `json:"modifiedTime,omitempty" yaml:"modified_time,omitempty"`
}

var praCredentialFields = []string{"name", "description", "credential_type", "user_domain", "username"}

type praCredentialAdapter struct{}

var _ reconciler.Adapter[PRACredential] = praCredentialAdapter{}

func PRACredentialAdapter() reconciler.Adapter[PRACredential] {
	return praCredentialAdapter{}
}

func (praCredentialAdapter) Kind() resource.Kind { return KindPRACredential }

func (praCredentialAdapter) Fields() []string { return praCredentialFields }

func (praCredentialAdapter) ID(value PRACredential) string { return value.ID }

func (praCredentialAdapter) NaturalKey(value PRACredential) (string, bool) {
	return stringValue(value.Name), value.Name != nil
}

func (praCredentialAdapter) Matches(desired PRACredential, candidate PRACredential) bool {
	return desired.Name != nil && candidate.Name != nil && *desired.Name == *candidate.Name
}

func (praCredentialAdapter) Validate(resource.Spec[PRACredential]) error {
	return faults.NewTypedError(
		faults.ValidationError,
		"PRA credentials are read-only; use get to look them up",
		nil,
	).WithFields("kind")
}

func (praCredentialAdapter) Normalize(value PRACredential) *resource.Canonical {
	return resource.NewCanonical().
		String("name", value.Name).
		String("description", value.Description).
		String("credential_type", value.CredentialType).
		String("user_domain", value.UserDomain).
		String("username", value.Username)
}

func (praCredentialAdapter) Excluded() []string { return nil }

func (praCredentialAdapter) Merge(current PRACredential, _ PRACredential) PRACredential {
	return current
}

func (praCredentialAdapter) CreatePayload(desired PRACredential) PRACredential {
	return desired
}

func (praCredentialAdapter) UpdatePayload(merged PRACredential) PRACredential {
	return merged
}
