// internal/model/rule.go
package model

import "encoding/json"

// Rule is a targeting rule exactly as an operator authored it. It is stored
// verbatim on the campaign; internal/audience turns it into a typed filter.
type Rule struct {
	Entity   string `json:"entity"`
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// UnmarshalJSON accepts "table" as an alias of "entity" and numeric values.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var raw struct {
		Entity   string          `json:"entity"`
		Table    string          `json:"table"`
		Field    string          `json:"field"`
		Operator string          `json:"operator"`
		Value    json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Entity = raw.Entity
	if r.Entity == "" {
		r.Entity = raw.Table
	}
	r.Field = raw.Field
	r.Operator = raw.Operator
	r.Value = ""

	if len(raw.Value) == 0 || string(raw.Value) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Value, &s); err == nil {
		r.Value = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw.Value, &n); err != nil {
		return err
	}
	r.Value = n.String()
	return nil
}
