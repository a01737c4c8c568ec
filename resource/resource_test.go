package resource

import (
	"testing"

	"github.com/steward-admin/steward/fields"
	"github.com/stretchr/testify/assert"
)

func TestDefineDefaults(t *testing.T) {
	tests := []struct {
		name          string
		resource      *Definition
		expectedModel string
		expectedTable string
		expectedTitle string
	}{
		{
			name:          "plural name singularizes into model",
			resource:      Define("users"),
			expectedModel: "user",
			expectedTable: "users",
			expectedTitle: "name",
		},
		{
			name:          "irregular plural",
			resource:      Define("categories"),
			expectedModel: "category",
			expectedTable: "categories",
			expectedTitle: "name",
		},
		{
			name: "explicit overrides win",
			resource: Define("posts").
				WithModel("article").
				WithTable("blog_posts").
				WithTitle("headline"),
			expectedModel: "article",
			expectedTable: "blog_posts",
			expectedTitle: "headline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedModel, tt.resource.Model())
			assert.Equal(t, tt.expectedTable, tt.resource.Table())
			assert.Equal(t, tt.expectedTitle, tt.resource.TitleAttribute())
		})
	}
}

func TestDefinitionFields(t *testing.T) {
	res := Define("users").WithFields(func() []fields.Element {
		return []fields.Element{
			fields.ID(),
			fields.Text("Name"),
		}
	})

	assert.Len(t, res.Fields(), 2)

	// Without a field callback the list is empty, not nil-panicking
	bare := Define("tags")
	assert.Empty(t, bare.Fields())
}

func TestTitle(t *testing.T) {
	res := Define("users")

	tests := []struct {
		name     string
		record   Record
		expected string
	}{
		{
			name:     "title attribute present",
			record:   Record{"id": 1, "name": "Ada Lovelace"},
			expected: "Ada Lovelace",
		},
		{
			name:     "missing title degrades to id",
			record:   Record{"id": 42},
			expected: "#42",
		},
		{
			name:     "nil title degrades to id",
			record:   Record{"id": 7, "name": nil},
			expected: "#7",
		},
		{
			name:     "nil record",
			record:   nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Title(res, tt.record))
		})
	}
}

func TestSerialize(t *testing.T) {
	res := Define("users").WithFields(func() []fields.Element {
		return []fields.Element{
			fields.ID(),
			fields.Text("Name"),
			fields.Text("Secret").OnlyOnForms(),
		}
	})

	payload := Serialize(res, fields.ViewDetail, Record{"id": 5, "name": "Grace"})

	assert.Equal(t, "users", payload["resource"])
	assert.Equal(t, 5, payload["id"])
	assert.Equal(t, "Grace", payload["title"])

	resolved, ok := payload["fields"].([]fields.Element)
	assert.True(t, ok)
	assert.Len(t, resolved, 2, "forms-only field is excluded from detail")
}

func TestPolicyDefaults(t *testing.T) {
	res := Define("users")
	policy := res.Policy()

	assert.Nil(t, policy.CanView)
	assert.Nil(t, policy.CanDelete)

	res.WithPolicy(Policy{CanDelete: func(rec Record) bool { return false }})
	assert.NotNil(t, res.Policy().CanDelete)
	assert.False(t, res.Policy().CanDelete(Record{"id": 1}))
}
