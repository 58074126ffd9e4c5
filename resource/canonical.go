package resource

// CanonicalField is one comparable field. Value holds the canonical value
// even when Set is false, so an unset current field still compares against
// its canonical zero (nil for scalars, empty for sets).
type CanonicalField struct {
	Name  string
	Value any
	Set   bool
}

// Canonical is a normalized record whose field order is fixed by the code
// that builds it.
type Canonical struct {
	fields []CanonicalField
	index  map[string]int
}

func NewCanonical() *Canonical {
	return &Canonical{index: map[string]int{}}
}

func (c *Canonical) Fields() []CanonicalField {
	if c == nil {
		return nil
	}
	return append([]CanonicalField(nil), c.fields...)
}

func (c *Canonical) Lookup(name string) (CanonicalField, bool) {
	if c == nil {
		return CanonicalField{}, false
	}
	idx, ok := c.index[name]
	if !ok {
		return CanonicalField{}, false
	}
	return c.fields[idx], true
}

func (c *Canonical) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.fields))
	for idx, field := range c.fields {
		names[idx] = field.Name
	}
	return names
}

func (c *Canonical) put(name string, value any, set bool) *Canonical {
	if idx, ok := c.index[name]; ok {
		c.fields[idx] = CanonicalField{Name: name, Value: value, Set: set}
		return c
	}
	c.index[name] = len(c.fields)
	c.fields = append(c.fields, CanonicalField{Name: name, Value: value, Set: set})
	return c
}

func (c *Canonical) String(name string, value *string) *Canonical {
	if value == nil {
		return c.put(name, nil, false)
	}
	return c.put(name, *value, true)
}

func (c *Canonical) Bool(name string, value *bool) *Canonical {
	if value == nil {
		return c.put(name, nil, false)
	}
	return c.put(name, *value, true)
}

func (c *Canonical) BoolString(name string, value *BoolString) *Canonical {
	if value == nil {
		return c.put(name, nil, false)
	}
	return c.put(name, value.Bool(), true)
}

func (c *Canonical) Enum(name string, value *string) *Canonical {
	if value == nil {
		return c.put(name, nil, false)
	}
	return c.put(name, CanonicalEnum(*value), true)
}

// Coordinate stores the quantized decimal text. Unparseable values are kept
// verbatim so they still compare unequal to any valid coordinate.
func (c *Canonical) Coordinate(name string, value *string) *Canonical {
	if value == nil {
		return c.put(name, nil, false)
	}
	canonical, err := CanonicalCoordinate(*value)
	if err != nil {
		return c.put(name, *value, true)
	}
	return c.put(name, canonical, true)
}

func (c *Canonical) IDSet(name string, values []string) *Canonical {
	return c.put(name, CanonicalIDSet(values), values != nil)
}

func (c *Canonical) EnumSet(name string, values []string) *Canonical {
	return c.put(name, CanonicalEnumSet(values), values != nil)
}

func (c *Canonical) Conditions(name string, groups []ConditionGroup) *Canonical {
	return c.put(name, CanonicalConditions(groups), groups != nil)
}

func (c *Canonical) WorkingHours(name string, value *WorkingHours) *Canonical {
	if value == nil {
		return c.put(name, nil, false)
	}
	return c.put(name, CanonicalWorkingHours(*value), true)
}
