package kinds

import (
	"github.com/crmarques/zpasync/reconciler"
	"github.com/crmarques/zpasync/resource"
)

const KindServiceEdgeGroup resource.Kind = "ServiceEdgeGroup"

var (
	upgradeDays      = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}
	dnsQueryTypes    = []string{"IPV4_IPV6", "IPV4", "IPV6"}
	versionProfileID = []string{"0", "1", "2"}
)

type ServiceEdgeGroup struct {
	ID                     string               `json:"id,omitempty" yaml:"id,omitempty"`
	Name                   *string              `json:"name,omitempty" yaml:"name,omitempty"`
	Description            *string              `json:"description,omitempty" yaml:"description,omitempty"`
	Enabled                *bool                `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	CityCountry            *string              `json:"cityCountry,omitempty" yaml:"city_country,omitempty"`
	CountryCode            *string              `json:"countryCode,omitempty" yaml:"country_code,omitempty"`
	Latitude               *string              `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude              *string              `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Location               *string              `json:"location,omitempty" yaml:"location,omitempty"`
	IsPublic               *resource.BoolString `json:"isPublic,omitempty" yaml:"is_public,omitempty"`
	UpgradeDay             *string              `json:"upgradeDay,omitempty" yaml:"upgrade_day,omitempty"`
	UpgradeTimeInSecs      *string              `json:"upgradeTimeInSecs,omitempty" yaml:"upgrade_time_in_secs,omitempty"`
	DNSQueryType           *string              `json:"dnsQueryType,omitempty" yaml:"dns_query_type,omitempty"`
	OverrideVersionProfile *bool                `json:"overrideVersionProfile,omitempty" yaml:"override_version_profile,omitempty"`
	VersionProfileID       *string              `json:"versionProfileId,omitempty" yaml:"version_profile_id,omitempty"`
	UseInDrMode            *bool                `json:"useInDrMode,omitempty" yaml:"use_in_dr_mode,omitempty"`
	TrustedNetworkIDs      resource.IDRefs      `json:"trustedNetworks,omitempty" yaml:"trusted_networks_ids,omitempty"`

	VersionProfileName *string         `json:"versionProfileName,omitempty" yaml:"version_profile_name,omitempty"`
	ServiceEdgeIDs     resource.IDRefs `json:"serviceEdges,omitempty" yaml:"service_edges,omitempty"`
	CreationTime       *string         `json:"creationTime,omitempty" yaml:"creation_time,omitempty"`
	ModifiedBy         *string         `json:"modifiedBy,omitempty" yaml:"modified_by,omitempty"`
	ModifiedTime       *string         `json:"modifiedTime,omitempty" yaml:"modified_time,omitempty"`
}

var serviceEdgeGroupFields = []string{
	"name",
	"description",
	"enabled",
	"city_country",
	"country_code",
	"latitude",
	"longitude",
	"location",
	"is_public",
	"upgrade_day",
	"upgrade_time_in_secs",
	"dns_query_type",
	"override_version_profile",
	"version_profile_id",
	"use_in_dr_mode",
	"trusted_networks_ids",
}

type serviceEdgeGroupAdapter struct{}

var _ reconciler.Adapter[ServiceEdgeGroup] = serviceEdgeGroupAdapter{}

func ServiceEdgeGroupAdapter() reconciler.Adapter[ServiceEdgeGroup] {
	return serviceEdgeGroupAdapter{}
}

func (serviceEdgeGroupAdapter) Kind() resource.Kind { return KindServiceEdgeGroup }

func (serviceEdgeGroupAdapter) Fields() []string { return serviceEdgeGroupFields }

func (serviceEdgeGroupAdapter) ID(value ServiceEdgeGroup) string { return value.ID }

func (serviceEdgeGroupAdapter) NaturalKey(value ServiceEdgeGroup) (string, bool) {
	return stringValue(value.Name), value.Name != nil
}

func (serviceEdgeGroupAdapter) Matches(desired ServiceEdgeGroup, candidate ServiceEdgeGroup) bool {
	return desired.Name != nil && candidate.Name != nil && *desired.Name == *candidate.Name
}

// Validate checks coordinates and enums before any remote call.
func (serviceEdgeGroupAdapter) Validate(spec resource.Spec[ServiceEdgeGroup]) error {
	if err := validatePresence(spec); err != nil {
		return err
	}

	desired := spec.Desired
	var errs fieldErrors
	errs.required("name", desired.Name)
	if desired.Latitude != nil {
		errs.addErr("latitude", resource.ValidateLatitude(*desired.Latitude))
	}
	if desired.Longitude != nil {
		errs.addErr("longitude", resource.ValidateLongitude(*desired.Longitude))
	}
	errs.oneOf("upgrade_day", desired.UpgradeDay, upgradeDays...)
	errs.oneOf("dns_query_type", desired.DNSQueryType, dnsQueryTypes...)
	errs.oneOf("version_profile_id", desired.VersionProfileID, versionProfileID...)
	return errs.err()
}

func (serviceEdgeGroupAdapter) Normalize(value ServiceEdgeGroup) *resource.Canonical {
	return resource.NewCanonical().
		String("name", value.Name).
		String("description", value.Description).
		Bool("enabled", value.Enabled).
		String("city_country", value.CityCountry).
		String("country_code", value.CountryCode).
		Coordinate("latitude", value.Latitude).
		Coordinate("longitude", value.Longitude).
		String("location", value.Location).
		BoolString("is_public", value.IsPublic).
		Enum("upgrade_day", value.UpgradeDay).
		String("upgrade_time_in_secs", value.UpgradeTimeInSecs).
		Enum("dns_query_type", value.DNSQueryType).
		Bool("override_version_profile", value.OverrideVersionProfile).
		String("version_profile_id", value.VersionProfileID).
		Bool("use_in_dr_mode", value.UseInDrMode).
		IDSet("trusted_networks_ids", value.TrustedNetworkIDs)
}

func (serviceEdgeGroupAdapter) Excluded() []string { return nil }

func (serviceEdgeGroupAdapter) Merge(current ServiceEdgeGroup, desired ServiceEdgeGroup) ServiceEdgeGroup {
	merged := current
	merged.Name = pick(current.Name, desired.Name)
	merged.Description = pick(current.Description, desired.Description)
	merged.Enabled = pick(current.Enabled, desired.Enabled)
	merged.CityCountry = pick(current.CityCountry, desired.CityCountry)
	merged.CountryCode = pick(current.CountryCode, desired.CountryCode)
	merged.Latitude = pick(current.Latitude, desired.Latitude)
	merged.Longitude = pick(current.Longitude, desired.Longitude)
	merged.Location = pick(current.Location, desired.Location)
	merged.IsPublic = pick(current.IsPublic, desired.IsPublic)
	merged.UpgradeDay = pick(current.UpgradeDay, desired.UpgradeDay)
	merged.UpgradeTimeInSecs = pick(current.UpgradeTimeInSecs, desired.UpgradeTimeInSecs)
	merged.DNSQueryType = pick(current.DNSQueryType, desired.DNSQueryType)
	merged.OverrideVersionProfile = pick(current.OverrideVersionProfile, desired.OverrideVersionProfile)
	merged.VersionProfileID = pick(current.VersionProfileID, desired.VersionProfileID)
	merged.UseInDrMode = pick(current.UseInDrMode, desired.UseInDrMode)
	merged.TrustedNetworkIDs = pickSlice(current.TrustedNetworkIDs, desired.TrustedNetworkIDs)
	return merged
}

func (serviceEdgeGroupAdapter) CreatePayload(desired ServiceEdgeGroup) ServiceEdgeGroup {
	return ServiceEdgeGroup{
		Name:                   desired.Name,
		Description:            desired.Description,
		Enabled:                desired.Enabled,
		CityCountry:            desired.CityCountry,
		CountryCode:            desired.CountryCode,
		Latitude:               desired.Latitude,
		Longitude:              desired.Longitude,
		Location:               desired.Location,
		IsPublic:               desired.IsPublic,
		UpgradeDay:             upperEnum(desired.UpgradeDay),
		UpgradeTimeInSecs:      desired.UpgradeTimeInSecs,
		DNSQueryType:           upperEnum(desired.DNSQueryType),
		OverrideVersionProfile: desired.OverrideVersionProfile,
		VersionProfileID:       desired.VersionProfileID,
		UseInDrMode:            desired.UseInDrMode,
		TrustedNetworkIDs:      desired.TrustedNetworkIDs,
	}
}

func (a serviceEdgeGroupAdapter) UpdatePayload(merged ServiceEdgeGroup) ServiceEdgeGroup {
	payload := a.CreatePayload(merged)
	payload.ID = merged.ID
	return payload
}
