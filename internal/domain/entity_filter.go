package domain

import (
	"bytes"
	"encoding/json"
)

// Operator names a filter operation sent by the grid client.
type Operator string

const (
	OperatorIs              Operator = "is"
	OperatorNot             Operator = "not"
	OperatorAfter           Operator = "after"
	OperatorOnOrAfter       Operator = "onOrAfter"
	OperatorBefore          Operator = "before"
	OperatorOnOrBefore      Operator = "onOrBefore"
	OperatorContains        Operator = "contains"
	OperatorEquals          Operator = "equals"
	OperatorStartsWith      Operator = "startsWith"
	OperatorEndsWith        Operator = "endsWith"
	OperatorIsEmpty         Operator = "isEmpty"
	OperatorIsNotEmpty      Operator = "isNotEmpty"
	OperatorNumEq           Operator = "="
	OperatorNumNotEq        Operator = "!="
	OperatorNumGt           Operator = ">"
	OperatorNumGte          Operator = ">="
	OperatorNumLt           Operator = "<"
	OperatorNumLte          Operator = "<="
	OperatorIsAnyOf         Operator = "isAnyOf"
	OperatorIsNotEmptyArray Operator = "isNotEmptyArray"
)

// LinkOperator combines the clauses of one filter group.
type LinkOperator string

const (
	LinkAnd LinkOperator = "and"
	LinkOr  LinkOperator = "or"
)

// IsOr reports whether the group should be OR'ed. Only the exact "or" does;
// anything else means AND.
func (l LinkOperator) IsOr() bool {
	return l == LinkOr
}

// FilterClause is one user supplied condition.
type FilterClause struct {
	Field       string   `json:"columnField"`
	Operator    Operator `json:"operatorValue"`
	Value       *string  `json:"value,omitempty"`
	AnyOfValues []string `json:"anyOfValues,omitempty"`
}

// RequiresValue reports whether the operator needs a scalar value.
func (f FilterClause) RequiresValue() bool {
	return f.Operator != OperatorIsAnyOf && f.Operator != OperatorIsNotEmptyArray
}

// UnmarshalJSON accepts numbers and booleans wherever a value string is
// expected, keeping their JSON text. Values of any other shape are left unset,
// which drops the clause alone at compile time.
func (f *FilterClause) UnmarshalJSON(data []byte) error {
	var raw struct {
		Field       string          `json:"columnField"`
		Operator    Operator        `json:"operatorValue"`
		Value       json.RawMessage `json:"value"`
		AnyOfValues json.RawMessage `json:"anyOfValues"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*f = FilterClause{
		Field:    raw.Field,
		Operator: raw.Operator,
		Value:    scalarText(raw.Value),
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw.AnyOfValues, &items); err != nil {
		return nil
	}
	for _, item := range items {
		if text := scalarText(item); text != nil {
			f.AnyOfValues = append(f.AnyOfValues, *text)
		}
	}
	return nil
}

// scalarText returns the text form of a JSON string, number or boolean.
func scalarText(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	var text string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil
		}
	case 't', 'f':
		var flag bool
		if err := json.Unmarshal(raw, &flag); err != nil {
			return nil
		}
		if flag {
			text = "true"
		} else {
			text = "false"
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var number json.Number
		if err := json.Unmarshal(raw, &number); err != nil {
			return nil
		}
		text = number.String()
	default:
		return nil
	}
	return &text
}
