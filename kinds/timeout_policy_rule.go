package kinds

import (
	"fmt"

	"github.com/crmarques/zpasync/reconciler"
	"github.com/crmarques/zpasync/resource"
)

const KindTimeoutPolicyRule resource.Kind = "TimeoutPolicyRule"

var (
	timeoutRuleActions = []string{"RE_AUTH"}
	ruleOperators      = []string{"AND", "OR"}
	operandObjectTypes = []string{
		"APP",
		"APP_GROUP",
		"CLIENT_TYPE",
		"SAML",
		"IDP",
		"SCIM",
		"SCIM_GROUP",
		"TRUSTED_NETWORK",
		"EDGE_CONNECTOR_GROUP",
		"POSTURE",
	}
)

type TimeoutPolicyRule struct {
	ID                string                    `json:"id,omitempty" yaml:"id,omitempty"`
	Name              *string                   `json:"name,omitempty" yaml:"name,omitempty"`
	Description       *string                   `json:"description,omitempty" yaml:"description,omitempty"`
	Action            *string                   `json:"action,omitempty" yaml:"action,omitempty"`
	CustomMsg         *string                   `json:"customMsg,omitempty" yaml:"custom_msg,omitempty"`
	Operator          *string                   `json:"operator,omitempty" yaml:"operator,omitempty"`
	RuleOrder         *string                   `json:"ruleOrder,omitempty" yaml:"rule_order,omitempty"`
	ReauthIdleTimeout *string                   `json:"reauthIdleTimeout,omitempty" yaml:"reauth_idle_timeout,omitempty"`
	ReauthTimeout     *string                   `json:"reauthTimeout,omitempty" yaml:"reauth_timeout,omitempty"`
	Conditions        []resource.ConditionGroup `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	PolicyType      *string `json:"policyType,omitempty" yaml:"policy_type,omitempty"`
	PolicySetID     *string `json:"policySetId,omitempty" yaml:"policy_set_id,omitempty"`
	DefaultRule     *bool   `json:"defaultRule,omitempty" yaml:"default_rule,omitempty"`
	DefaultRuleName *string `json:"defaultRuleName,omitempty" yaml:"default_rule_name,omitempty"`
	Priority        *string `json:"priority,omitempty" yaml:"priority,omitempty"`
	CreationTime    *string `json:"creationTime,omitempty" yaml:"creation_time,omitempty"`
	ModifiedBy      *string `json:"modifiedBy,omitempty" yaml:"modified_by,omitempty"`
	ModifiedTime    *string `json:"modifiedTime,omitempty" yaml:"modified_time,omitempty"`
}

var timeoutPolicyRuleFields = []string{
	"name",
	"description",
	"action",
	"custom_msg",
	"operator",
	"rule_order",
	"reauth_idle_timeout",
	"reauth_timeout",
	"conditions",
}

type timeoutPolicyRuleAdapter struct{}

var _ reconciler.Adapter[TimeoutPolicyRule] = timeoutPolicyRuleAdapter{}

func TimeoutPolicyRuleAdapter() reconciler.Adapter[TimeoutPolicyRule] {
	return timeoutPolicyRuleAdapter{}
}

func (timeoutPolicyRuleAdapter) Kind() resource.Kind { return KindTimeoutPolicyRule }

func (timeoutPolicyRuleAdapter) Fields() []string { return timeoutPolicyRuleFields }

func (timeoutPolicyRuleAdapter) ID(value TimeoutPolicyRule) string { return value.ID }

func (timeoutPolicyRuleAdapter) NaturalKey(value TimeoutPolicyRule) (string, bool) {
	return stringValue(value.Name), value.Name != nil
}

func (timeoutPolicyRuleAdapter) Matches(desired TimeoutPolicyRule, candidate TimeoutPolicyRule) bool {
	return desired.Name != nil && candidate.Name != nil && *desired.Name == *candidate.Name
}

func (timeoutPolicyRuleAdapter) Validate(spec resource.Spec[TimeoutPolicyRule]) error {
	if err := validatePresence(spec); err != nil {
		return err
	}

	desired := spec.Desired
	var errs fieldErrors
	errs.required("name", desired.Name)
	if spec.Presence != resource.PresenceAbsent {
		errs.required("reauth_idle_timeout", desired.ReauthIdleTimeout)
		errs.required("reauth_timeout", desired.ReauthTimeout)
	}
	errs.oneOf("action", desired.Action, timeoutRuleActions...)
	errs.oneOf("operator", desired.Operator, ruleOperators...)

	for groupIdx, group := range desired.Conditions {
		field := fmt.Sprintf("conditions[%d]", groupIdx)
		errs.oneOf(field+".operator", group.Operator, ruleOperators...)
		for operandIdx, operand := range group.Operands {
			operandField := fmt.Sprintf("%s.operands[%d]", field, operandIdx)
			errs.oneOf(operandField+".object_type", operand.ObjectType, operandObjectTypes...)
		}
	}
	return errs.err()
}

func (timeoutPolicyRuleAdapter) Normalize(value TimeoutPolicyRule) *resource.Canonical {
	return resource.NewCanonical().
		String("name", value.Name).
		String("description", value.Description).
		Enum("action", value.Action).
		String("custom_msg", value.CustomMsg).
		Enum("operator", value.Operator).
		String("rule_order", value.RuleOrder).
		String("reauth_idle_timeout", value.ReauthIdleTimeout).
		String("reauth_timeout", value.ReauthTimeout).
		Conditions("conditions", value.Conditions)
}

func (timeoutPolicyRuleAdapter) Excluded() []string { return nil }

func (timeoutPolicyRuleAdapter) Merge(current TimeoutPolicyRule, desired TimeoutPolicyRule) TimeoutPolicyRule {
	merged := current
	merged.Name = pick(current.Name, desired.Name)
	merged.Description = pick(current.Description, desired.Description)
	merged.Action = pick(current.Action, desired.Action)
	merged.CustomMsg = pick(current.CustomMsg, desired.CustomMsg)
	merged.Operator = pick(current.Operator, desired.Operator)
	merged.RuleOrder = pick(current.RuleOrder, desired.RuleOrder)
	merged.ReauthIdleTimeout = pick(current.ReauthIdleTimeout, desired.ReauthIdleTimeout)
	merged.ReauthTimeout = pick(current.ReauthTimeout, desired.ReauthTimeout)
	merged.Conditions = pickSlice(current.Conditions, desired.Conditions)
	return merged
}

// CreatePayload sends conditions in their flattened form: one OR group per
// object type. Group operators and negation set by the caller are not kept.
func (timeoutPolicyRuleAdapter) CreatePayload(desired TimeoutPolicyRule) TimeoutPolicyRule {
	return TimeoutPolicyRule{
		Name:              desired.Name,
		Description:       desired.Description,
		Action:            upperEnum(desired.Action),
		CustomMsg:         desired.CustomMsg,
		Operator:          upperEnum(desired.Operator),
		RuleOrder:         desired.RuleOrder,
		ReauthIdleTimeout: desired.ReauthIdleTimeout,
		ReauthTimeout:     desired.ReauthTimeout,
		Conditions:        resource.GroupTriples(resource.MapConditions(desired.Conditions)),
	}
}

func (a timeoutPolicyRuleAdapter) UpdatePayload(merged TimeoutPolicyRule) TimeoutPolicyRule {
	payload := a.CreatePayload(merged)
	payload.ID = merged.ID
	return payload
}
