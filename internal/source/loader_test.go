package source

import (
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/itembank/data"
)

func TestField_AcceptsStringsAndNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want Field
	}{
		{`"3"`, "3"},
		{`3`, "3"},
		{`3.0`, "3"},
		{`" ELA "`, "ELA"},
		{`null`, ""},
		{`"K"`, "K"},
	}
	for _, tt := range tests {
		var f Field
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &f), tt.raw)
		assert.Equal(t, tt.want, f, tt.raw)
	}

	var f Field
	require.Error(t, json.Unmarshal([]byte(`true`), &f))
}

func TestListSpec_MatchesAcrossJSONTypes(t *testing.T) {
	t.Parallel()
	var spec ListSpec
	require.NoError(t, json.Unmarshal([]byte(`{"subject":"Math","grade":3}`), &spec))

	var rec TaskModel
	require.NoError(t, json.Unmarshal([]byte(`{"Subject":"Math","Grade":"3"}`), &rec))
	assert.True(t, spec.Matches(rec.Subject, rec.Grade))
	assert.False(t, spec.Matches("ELA", rec.Grade))
}

func TestEvidenceStatement_Label(t *testing.T) {
	t.Parallel()

	es := EvidenceStatement{Code: "RI.3.1", Text: "Ask and answer questions..."}
	assert.Equal(t, "RI.3.1 Ask and answer questions...", es.Label())

	es = EvidenceStatement{Code: "RL.3.1", Text: "RL.3.1 Ask and answer questions."}
	assert.Equal(t, "RL.3.1 Ask and answer questions.", es.Label())
}

func TestStandardTree_Parses(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		ELATreeSource: {Data: []byte(`{"name":"root","identifier":"r","children":[
			{"name":"a","identifier":"1","children":[{"name":"b","identifier":"2"}]}]}`)},
	}
	l := NewLoader(fsys)

	got, err := l.StandardTree(ELATreeSource)
	require.NoError(t, err)

	want := &TreeNode{Name: "root", Identifier: "r", Children: []*TreeNode{
		{Name: "a", Identifier: "1", Children: []*TreeNode{{Name: "b", Identifier: "2"}}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeMap_KeepsDocumentOrder(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		IMSTreeMapSource: {Data: []byte(`{
			"z": {"tree":"MATH","label":"Z","subtrees":["Grade 3"]},
			"a": {"tree":"ELA","label":"A","subtrees":["Grade 4","Grade 5"]}
		}`)},
	}
	got, err := NewLoader(fsys).TreeMap()
	require.NoError(t, err)

	want := []Entry[TreeSpec]{
		{Key: "z", Value: TreeSpec{Tree: "MATH", Label: "Z", Subtrees: []string{"Grade 3"}}},
		{Key: "a", Value: TreeSpec{Tree: "ELA", Label: "A", Subtrees: []string{"Grade 4", "Grade 5"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree map mismatch (-want +got):\n%s", diff)
	}
}

func TestItemBankStructure_ArrayOrObject(t *testing.T) {
	t.Parallel()
	fromArray := NewLoader(fstest.MapFS{
		ItemBankMapSource: {Data: []byte(`[{"id":"ELA","children":[{"id":"Grade 3","task_model_list_key":"tm"}]}]`)},
	})
	fromObject := NewLoader(fstest.MapFS{
		ItemBankMapSource: {Data: []byte(`{"ela":{"id":"ELA","children":[{"id":"Grade 3","task_model_list_key":"tm"}]}}`)},
	})

	a, err := fromArray.ItemBankStructure()
	require.NoError(t, err)
	o, err := fromObject.ItemBankStructure()
	require.NoError(t, err)
	if diff := cmp.Diff(a, o); diff != "" {
		t.Errorf("array and object forms differ (-array +object):\n%s", diff)
	}
	require.Len(t, a, 1)
	assert.Equal(t, "tm", a[0].Children[0].TaskModelListKey)
}

func TestLoader_CachesDocuments(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		TaskModelSource: {Data: []byte(`[{"Subject":"ELA","Grade":"3","Task Model":"T","Task Model_Text":"one"}]`)},
	}
	l := NewLoader(fsys)

	first, err := l.TaskModels()
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Changing the file does not affect a cached document until Reset.
	fsys[TaskModelSource] = &fstest.MapFile{Data: []byte(`[]`)}
	again, err := l.TaskModels()
	require.NoError(t, err)
	assert.Len(t, again, 1)

	l.Reset()
	fresh, err := l.TaskModels()
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestLoader_MissingAndMalformed(t *testing.T) {
	t.Parallel()
	l := NewLoader(fstest.MapFS{
		EvidenceStatementSource: {Data: []byte(`[{`)},
	})

	_, err := l.TaskModelMap()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source: load task_model_map.json")

	_, err = l.EvidenceStatements()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source: parse evidence_statements.json")
}

func TestEmbeddedData_Preloads(t *testing.T) {
	t.Parallel()
	l := NewLoader(data.FS)
	require.NoError(t, l.Preload())

	trees, err := l.TreeMap()
	require.NoError(t, err)
	assert.Len(t, trees, 3)
	assert.Equal(t, "ela_3", trees[0].Key)
}
