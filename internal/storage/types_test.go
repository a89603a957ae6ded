package storage

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList_ScanAndValue(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan(`["meta","facebook"]`))
	assert.Equal(t, StringList{"meta", "facebook"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Equal(t, StringList{}, l)

	assert.Error(t, l.Scan(`{"not":"a list"}`))
	assert.Error(t, l.Scan(`[1,2]`))

	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestStringList_Normalized(t *testing.T) {
	got := StringList{" Meta ", "", "Meta", "Google"}.Normalized()
	assert.Equal(t, StringList{"Meta", "Google"}, got)
}

func TestStringList_MarshalNil(t *testing.T) {
	data, err := json.Marshal(struct {
		P StringList `json:"p"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"p":[]}`, string(data))
}

func TestJSONDoc_Validation(t *testing.T) {
	var d JSONDoc
	require.NoError(t, d.Scan([]byte(`{"sources":["campaign"]}`)))
	assert.JSONEq(t, `{"sources":["campaign"]}`, string(d))

	assert.Error(t, d.Scan(`"scalar"`))
	assert.Error(t, d.Scan(`{broken`))

	_, err := JSONDoc(`42`).Value()
	assert.Error(t, err)

	v, err := JSONDoc(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestJSONDoc_RoundTripInStruct(t *testing.T) {
	type wrapper struct {
		Doc JSONDoc `json:"doc"`
	}
	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"doc":[1,2,3]}`), &w))
	assert.Equal(t, `[1,2,3]`, string(w.Doc))

	require.NoError(t, json.Unmarshal([]byte(`{"doc":null}`), &w))
	assert.Empty(t, w.Doc)

	out, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `{"doc":null}`, string(out))
}

func TestCondition_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Condition
		wantErr bool
	}{
		{name: "scalar shorthand", input: `"Meta"`, want: Condition{Eq: "Meta"}},
		{name: "array shorthand", input: `["Meta","Google"]`, want: Condition{In: []interface{}{"Meta", "Google"}}},
		{name: "operator form", input: `{"contains":"click","ne":"Paused"}`, want: Condition{Contains: "click", Ne: "Paused"}},
		{name: "unknown operator", input: `{"regex":".*"}`, wantErr: true},
		{name: "empty object", input: `{}`, wantErr: true},
		{name: "null", input: `null`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Condition
			err := json.Unmarshal([]byte(tt.input), &c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c)
		})
	}
}

func TestCondition_Matches(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name    string
		cond    Condition
		value   interface{}
		present bool
		want    bool
	}{
		{"eq case insensitive", Condition{Eq: "meta"}, "Meta", true, true},
		{"eq numeric vs string", Condition{Eq: 10.0}, "10", true, true},
		{"eq mismatch", Condition{Eq: "meta"}, "google", true, false},
		{"ne", Condition{Ne: "Paused"}, "Live", true, true},
		{"contains", Condition{Contains: "CLICK"}, "Link Click", true, true},
		{"contains absent", Condition{Contains: "x"}, nil, false, false},
		{"in", Condition{In: []interface{}{"a", "b"}}, "B", true, true},
		{"in miss", Condition{In: []interface{}{"a", "b"}}, "c", true, false},
		{"exists true", Condition{Exists: &yes}, "v", true, true},
		{"exists false on absent", Condition{Exists: &no}, nil, false, true},
		{"exists true on absent", Condition{Exists: &yes}, nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.Matches(tt.value, tt.present))
		})
	}
}

func TestPredicate_ScanValidatesOperators(t *testing.T) {
	var p Predicate
	require.NoError(t, p.Scan(`{"product":"Meta","status":{"ne":"Cancelled"}}`))
	assert.Equal(t, []string{"product", "status"}, p.Fields())
	assert.Equal(t, "Meta", p["product"].Eq)

	assert.Error(t, p.Scan(`{"product":{"like":"M%"}}`))

	require.NoError(t, p.Scan(nil))
	assert.Empty(t, p)

	v, err := Predicate{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "link-click", Slugify("Link Click"))
	assert.Equal(t, "meta-facebook", Slugify("  Meta / Facebook! "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestValidate_KeyAndOneOf(t *testing.T) {
	err := Validate(&ReportSection{SectionKey: "Executive Summary", SectionName: "Exec"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "section_key must match ^[a-z0-9_]+$")

	assert.NoError(t, Validate(&ReportSection{SectionKey: "executive_summary", SectionName: "Exec"}))

	err = Validate(&Benchmark{MetricName: "ctr", Unit: "percent", Direction: HigherBetter})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit must be one of")
}

func TestNewValidator_RegistersPatternTags(t *testing.T) {
	v, err := newValidator()
	require.NoError(t, err)

	type slugged struct {
		Slug string `validate:"slug"`
	}
	assert.NoError(t, v.Struct(slugged{Slug: "link-click"}))
	assert.Error(t, v.Struct(slugged{Slug: "Link Click"}))
}

func TestRegisterPatternTags_SurfacesErrors(t *testing.T) {
	v := validator.New()
	err := registerPatternTags(v, []patternTag{{"", regexp.MustCompile(`.`)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register validation")
}
