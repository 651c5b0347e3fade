package filterexpr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ordering is the parsed order_by outcome: a primary key plus a
// distinct secondary key. The secondary key keeps pagination stable
// when the primary column carries duplicates.
type ordering struct {
	PrimaryKey    string
	PrimaryDesc   bool
	SecondaryKey  string
	SecondaryDesc bool
}

type orderKey struct {
	key  string
	desc bool
}

// resolveOrder parses "key [asc|desc][, key [asc|desc]]" against the
// schema whitelist. An empty input yields the schema defaults; a single
// explicit key gets the schema fallback as tiebreaker.
func resolveOrder(raw string, schema OrderSchema) (ordering, error) {
	if err := schema.validate(); err != nil {
		return ordering{}, err
	}

	ord := ordering{
		PrimaryKey:    schema.DefaultPrimary,
		PrimaryDesc:   schema.DefaultPrimaryDesc,
		SecondaryKey:  schema.FallbackKey,
		SecondaryDesc: schema.FallbackDesc,
	}

	keys, err := parseOrderSegments(raw, schema.Fields)
	if err != nil {
		return ordering{}, err
	}
	if len(keys) > 0 {
		ord.PrimaryKey, ord.PrimaryDesc = keys[0].key, keys[0].desc
	}
	if len(keys) > 1 {
		ord.SecondaryKey, ord.SecondaryDesc = keys[1].key, keys[1].desc
	}

	return ord.distinct(schema)
}

func (s OrderSchema) validate() error {
	if s.DefaultPrimary == "" {
		return errors.New("order schema default primary key required")
	}
	if s.FallbackKey == "" {
		return errors.New("order schema fallback key required")
	}
	if _, ok := s.Fields[s.DefaultPrimary]; !ok {
		return fmt.Errorf("order key %q missing from schema fields", s.DefaultPrimary)
	}
	if _, ok := s.Fields[s.FallbackKey]; !ok {
		return fmt.Errorf("fallback order key %q missing from schema fields", s.FallbackKey)
	}
	return nil
}

func parseOrderSegments(raw string, fields map[string]OrderField) ([]orderKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var keys []orderKey
	seen := make(map[string]struct{}, 2)
	for _, seg := range strings.Split(raw, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		key, desc, err := parseOrderSegment(seg, fields)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate order key %q", key)
		}
		seen[key] = struct{}{}
		if len(keys) == 2 {
			return nil, errors.New("order_by supports at most two keys")
		}
		keys = append(keys, orderKey{key: key, desc: desc})
	}
	return keys, nil
}

func parseOrderSegment(seg string, fields map[string]OrderField) (string, bool, error) {
	parts := strings.Fields(seg)
	key := parts[0]
	if _, ok := fields[key]; !ok {
		return "", false, fmt.Errorf("field %q cannot be used for ordering", key)
	}
	switch len(parts) {
	case 1:
		return key, false, nil
	case 2:
		switch strings.ToLower(parts[1]) {
		case "asc":
			return key, false, nil
		case "desc":
			return key, true, nil
		}
		return "", false, fmt.Errorf("invalid direction %q for field %q", parts[1], key)
	}
	return "", false, fmt.Errorf("invalid order segment %q", seg)
}

// distinct guarantees the secondary key never repeats the primary, so
// the emitted ORDER BY always has two independent columns.
func (o ordering) distinct(schema OrderSchema) (ordering, error) {
	if o.SecondaryKey != o.PrimaryKey {
		return o, nil
	}
	for key := range schema.Fields {
		if key != o.PrimaryKey {
			o.SecondaryKey, o.SecondaryDesc = key, false
			return o, nil
		}
	}
	return ordering{}, errors.New("order schema requires at least two distinct keys for stable ordering")
}

// writeOrder stores the four parsed order fields on the params struct.
// The fields are required: a params struct that cannot receive the
// ordering is a schema bug, not a request error.
func writeOrder(dest reflect.Value, ord ordering) error {
	for _, f := range []struct {
		name  string
		value reflect.Value
	}{
		{"PrimaryKey", reflect.ValueOf(ord.PrimaryKey)},
		{"PrimaryDesc", reflect.ValueOf(ord.PrimaryDesc)},
		{"SecondaryKey", reflect.ValueOf(ord.SecondaryKey)},
		{"SecondaryDesc", reflect.ValueOf(ord.SecondaryDesc)},
	} {
		if err := storeOrderField(dest, f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

func storeOrderField(dest reflect.Value, name string, value reflect.Value) error {
	field := dest.FieldByName(name)
	if !field.IsValid() {
		return fmt.Errorf("params struct %s has no field named %q", dest.Type(), name)
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field %q on params struct", name)
	}

	switch field.Kind() {
	case reflect.Interface:
		field.Set(value)
	case reflect.Ptr:
		elem := field.Type().Elem()
		if !value.Type().ConvertibleTo(elem) {
			return fmt.Errorf("field %q must be %s-compatible, got %s", name, elem, value.Type())
		}
		if field.IsNil() {
			field.Set(reflect.New(elem))
		}
		field.Elem().Set(value.Convert(elem))
	default:
		if !value.Type().ConvertibleTo(field.Type()) {
			return fmt.Errorf("field %q must be %s-compatible, got %s", name, field.Type(), value.Type())
		}
		field.Set(value.Convert(field.Type()))
	}
	return nil
}
