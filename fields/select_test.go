package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steward-admin/steward/request"
)

func TestSelectFillDropsInvalidOption(t *testing.T) {
	rec := Record{}
	f := Select("Status").Options(map[string]string{"a": "A", "b": "B"})

	require.NoError(t, f.Fill(request.Values{"status": "z"}, rec))
	require.Contains(t, rec, "status")
	assert.Nil(t, rec["status"])
}

func TestSelectFillKeepsValidOption(t *testing.T) {
	rec := Record{}
	f := Select("Status").Options(map[string]string{"a": "A", "b": "B"})

	require.NoError(t, f.Fill(request.Values{"status": "b"}, rec))
	assert.Equal(t, "b", rec["status"])
}

func TestSelectTaggableKeepsUnknownValue(t *testing.T) {
	rec := Record{}
	f := Select("Status").Options(map[string]string{"a": "A"}).Taggable()

	require.NoError(t, f.Fill(request.Values{"status": "z"}, rec))
	assert.Equal(t, "z", rec["status"])
}

func TestSelectDisplayUsingLabels(t *testing.T) {
	f := Select("Status").
		Options(map[string]string{"draft": "Draft", "pub": "Published"}).
		DisplayUsingLabels()

	f.Resolve(Record{"status": "pub"})
	assert.Equal(t, "Published", f.Descriptor().Value)

	// Unknown stored values pass through untouched
	f.Resolve(Record{"status": "gone"})
	assert.Equal(t, "gone", f.Descriptor().Value)
}

func TestSelectOptionsAreDeterministic(t *testing.T) {
	f := Select("Status").Options(map[string]string{"b": "B", "a": "A", "c": "C"})
	options := f.Descriptor().Meta["options"].([]Option)

	assert.Equal(t, []Option{
		{Label: "A", Value: "a"},
		{Label: "B", Value: "b"},
		{Label: "C", Value: "c"},
	}, options)
}

func TestMultiSelectFillFiltersInvalid(t *testing.T) {
	rec := Record{}
	f := MultiSelect("Tags").Options(map[string]string{"go": "Go", "db": "DB"})

	require.NoError(t, f.Fill(request.Values{"tags": []any{"go", "zz", "db"}}, rec))
	assert.Equal(t, []string{"go", "db"}, rec["tags"])
}

func TestMultiSelectTaggable(t *testing.T) {
	rec := Record{}
	f := MultiSelect("Tags").Options(map[string]string{"go": "Go"}).Taggable()

	require.NoError(t, f.Fill(request.Values{"tags": []string{"go", "new"}}, rec))
	assert.Equal(t, []string{"go", "new"}, rec["tags"])
}

func TestBooleanFill(t *testing.T) {
	rec := Record{}
	f := Boolean("Active")

	require.NoError(t, f.Fill(request.Values{"active": "1"}, rec))
	assert.Equal(t, true, rec["active"])

	require.NoError(t, f.Fill(request.Values{"active": "false"}, rec))
	assert.Equal(t, false, rec["active"])
}

func TestBooleanCustomValues(t *testing.T) {
	rec := Record{}
	f := Boolean("Active").TrueValue("on").FalseValue("off")

	require.NoError(t, f.Fill(request.Values{"active": true}, rec))
	assert.Equal(t, "on", rec["active"])

	f.Resolve(Record{"active": "on"})
	assert.Equal(t, true, f.Descriptor().Value)

	f.Resolve(Record{"active": "off"})
	assert.Equal(t, false, f.Descriptor().Value)
}

func TestBooleanGroupResolveRepresentsAllOptions(t *testing.T) {
	f := BooleanGroup("Permissions").Options(map[string]string{
		"read":  "Read",
		"write": "Write",
	})

	f.Resolve(Record{"permissions": map[string]any{"read": true}})
	assert.Equal(t, map[string]bool{"read": true, "write": false}, f.Descriptor().Value)
}

func TestBooleanGroupResolveFromJSONString(t *testing.T) {
	f := BooleanGroup("Permissions").Options(map[string]string{
		"read":  "Read",
		"write": "Write",
	})

	f.Resolve(Record{"permissions": `{"write":true}`})
	assert.Equal(t, map[string]bool{"read": false, "write": true}, f.Descriptor().Value)
}

func TestBooleanGroupFillFiltersUndeclared(t *testing.T) {
	rec := Record{}
	f := BooleanGroup("Permissions").Options(map[string]string{
		"read":  "Read",
		"write": "Write",
	})

	form := request.Values{"permissions": map[string]any{"read": true, "admin": true}}
	require.NoError(t, f.Fill(form, rec))
	assert.Equal(t, map[string]bool{"read": true, "write": false}, rec["permissions"])
}

func TestTimezoneOptions(t *testing.T) {
	f := Timezone("Timezone")
	options := f.Descriptor().Meta["options"].([]Option)
	assert.Len(t, options, len(Timezones))
	assert.Equal(t, "UTC", options[0].Value)
}

func TestBadgeResolveSetsType(t *testing.T) {
	f := Badge("State").Map(map[string]string{
		"published": "success",
		"draft":     "danger",
	})

	f.Resolve(Record{"state": "draft"})
	assert.Equal(t, "draft", f.Descriptor().Value)
	assert.Equal(t, "danger", f.Descriptor().Meta["badgeType"])
}

func TestStatusResolveStates(t *testing.T) {
	f := Status("Job State").
		LoadingWhen("queued", "running").
		FailedWhen("failed")

	f.Resolve(Record{"job_state": "running"})
	assert.Equal(t, "loading", f.Descriptor().Meta["state"])

	f.Resolve(Record{"job_state": "failed"})
	assert.Equal(t, "failed", f.Descriptor().Meta["state"])

	f.Resolve(Record{"job_state": "done"})
	assert.Equal(t, "finished", f.Descriptor().Meta["state"])
}

func TestStackResolvesLines(t *testing.T) {
	name := Line("Name")
	city := Line("City", "address.city").AsSmall()
	f := Stack("Details", name, city)

	f.Resolve(Record{
		"name":    "Ada",
		"address": map[string]any{"city": "Oslo"},
	})

	assert.Equal(t, "Ada", name.Descriptor().Value)
	assert.Equal(t, "Oslo", city.Descriptor().Value)
	assert.Equal(t, []Element{name, city}, f.Descriptor().Meta["lines"])
}
