package onetrust

// FormulaValueAttribute is the attribute bag key carrying a control's
// computed numeric score.
const FormulaValueAttribute = "AttributeFormulaValue.value1_2"

// ControlRecord is one control implementation as returned by the paged
// search endpoint. Records are immutable value objects that live only for
// the duration of a single report request.
type ControlRecord struct {
	Control           Control                     `json:"control"`
	PrimaryEntity     PrimaryEntity               `json:"primaryEntity"`
	EffectivenessInfo EffectivenessInfo           `json:"effectivenessInfo"`
	Attributes        map[string][]AttributeValue `json:"attributes"`
}

// Control carries the descriptive metadata of a control implementation
type Control struct {
	Identifier   string `json:"identifier"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	OrgGroupName string `json:"orgGroupName"`
}

// PrimaryEntity is the entity a control implementation is attached to.
// Its name serves as the fallback company-name hint.
type PrimaryEntity struct {
	Name string `json:"name"`
}

// EffectivenessInfo is the effectiveness label attached to a control
type EffectivenessInfo struct {
	Name string `json:"name"`
}

// AttributeValue is a single entry of a record's attribute bag. Value is
// left untyped because the API returns scores both as JSON numbers and as
// strings.
type AttributeValue struct {
	Value interface{} `json:"value"`
}

// FormulaValue returns the raw formula value of the record, or nil when
// the attribute is absent or empty.
func (r ControlRecord) FormulaValue() interface{} {
	entries := r.Attributes[FormulaValueAttribute]
	if len(entries) == 0 {
		return nil
	}
	return entries[0].Value
}

// searchRequest is the JSON body of a paged search call
type searchRequest struct {
	Filters []searchFilter `json:"filters"`
}

// searchFilter is an exact-match filter clause
type searchFilter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// pageResponse is one page of search results
type pageResponse struct {
	Content    []ControlRecord `json:"content"`
	TotalPages int             `json:"totalPages"`
}
