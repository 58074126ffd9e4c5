package resource

import (
	"cmp"
	"slices"

	"k8s.io/utils/ptr"
)

type Operand struct {
	ID         *string `json:"id,omitempty" yaml:"id,omitempty"`
	IdpID      *string `json:"idpId,omitempty" yaml:"idp_id,omitempty"`
	Name       *string `json:"name,omitempty" yaml:"name,omitempty"`
	ObjectType *string `json:"objectType,omitempty" yaml:"object_type,omitempty"`
	LHS        *string `json:"lhs,omitempty" yaml:"lhs,omitempty"`
	RHS        *string `json:"rhs,omitempty" yaml:"rhs,omitempty"`
}

type ConditionGroup struct {
	ID       *string   `json:"id,omitempty" yaml:"id,omitempty"`
	Negated  *bool     `json:"negated,omitempty" yaml:"negated,omitempty"`
	Operator *string   `json:"operator,omitempty" yaml:"operator,omitempty"`
	Operands []Operand `json:"operands,omitempty" yaml:"operands,omitempty"`
}

type ConditionTriple struct {
	ObjectType string `json:"objectType" yaml:"object_type"`
	LHS        string `json:"lhs" yaml:"lhs"`
	RHS        string `json:"rhs" yaml:"rhs"`
}

// MapConditions flattens every operand of every group into one sequence,
// preserving input order. Operands missing object_type, lhs or rhs are
// dropped. Group operator and negation are not carried over.
func MapConditions(groups []ConditionGroup) []ConditionTriple {
	result := make([]ConditionTriple, 0)
	for _, group := range groups {
		for _, operand := range group.Operands {
			if operand.ObjectType == nil || operand.LHS == nil || operand.RHS == nil {
				continue
			}
			result = append(result, ConditionTriple{
				ObjectType: *operand.ObjectType,
				LHS:        *operand.LHS,
				RHS:        *operand.RHS,
			})
		}
	}
	return result
}

// CanonicalConditions returns the flattened triples as a sorted multiset so
// group and operand order never affect comparison.
func CanonicalConditions(groups []ConditionGroup) []ConditionTriple {
	triples := MapConditions(groups)
	for idx := range triples {
		triples[idx].ObjectType = CanonicalEnum(triples[idx].ObjectType)
	}
	slices.SortFunc(triples, compareTriples)
	return triples
}

func compareTriples(left ConditionTriple, right ConditionTriple) int {
	return cmp.Or(
		cmp.Compare(left.ObjectType, right.ObjectType),
		cmp.Compare(left.LHS, right.LHS),
		cmp.Compare(left.RHS, right.RHS),
	)
}

// GroupTriples rebuilds the flattened wire shape accepted by the remote API:
// one OR group per object type, in first-seen order.
func GroupTriples(triples []ConditionTriple) []ConditionGroup {
	if len(triples) == 0 {
		return nil
	}

	groups := make([]ConditionGroup, 0)
	positions := map[string]int{}
	for _, triple := range triples {
		idx, ok := positions[triple.ObjectType]
		if !ok {
			idx = len(groups)
			positions[triple.ObjectType] = idx
			groups = append(groups, ConditionGroup{Operator: ptr.To("OR")})
		}
		groups[idx].Operands = append(groups[idx].Operands, Operand{
			ObjectType: ptr.To(triple.ObjectType),
			LHS:        ptr.To(triple.LHS),
			RHS:        ptr.To(triple.RHS),
		})
	}
	return groups
}
