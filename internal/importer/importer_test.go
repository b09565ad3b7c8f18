package importer

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/itembank/internal/ontology"
	"github.com/jward/itembank/internal/source"
	"github.com/jward/itembank/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestImporter(t *testing.T, fsys fstest.MapFS, opts ...Option) (*Importer, *store.Store) {
	t.Helper()
	s := newTestStore(t)
	return New(s, source.NewLoader(fsys), opts...), s
}

// fixtureFS is a small but complete set of source documents.
func fixtureFS() fstest.MapFS {
	return fstest.MapFS{
		source.ELATreeSource: {Data: []byte(`{"name":"ELA","identifier":"e0","children":[
			{"name":"Reading","identifier":"e1","children":[
				{"name":"Grade 3","identifier":"e2","children":[
					{"name":"RL.3.1","identifier":"e3"}]}]}]}`)},
		source.MathTreeSource: {Data: []byte(`{"name":"Math","identifier":"m0","children":[
			{"name":"Grade 3","identifier":"m1","children":[{"name":"3.OA.1","identifier":"m2"}]}]}`)},
		source.IMSTreeMapSource: {Data: []byte(`{
			"ela_3":{"tree":"ELA","label":"ELA 3","subtrees":["Grade 3"]},
			"math_3":{"tree":"MATH","label":"Math 3","subtrees":["Grade 3"]},
			"sci_3":{"tree":"SCIENCE","label":"Science 3","subtrees":["Grade 3"]}}`)},
		source.EvidenceStatementSource: {Data: []byte(`[
			{"Subject":"ELA","Grade":"3","Evidence Statement":"RI.3.1","Evidence Statement_Text":"Ask and answer questions..."},
			{"Subject":"ELA","Grade":"3","Evidence Statement":"RL.3.1","Evidence Statement_Text":"RL.3.1 Describe characters."},
			{"Subject":"Math","Grade":3,"Evidence Statement":"3.OA.1","Evidence Statement_Text":"Interpret products."}]`)},
		source.EvidenceStatementMapSource: {Data: []byte(`{
			"es_ela_3":{"subject":"ELA","grade":"3"},
			"es_math_3":{"subject":"Math","grade":"3"}}`)},
		source.TaskModelSource: {Data: []byte(`[
			{"Subject":"ELA","Grade":3,"Task Model":"T1","Task Model_Text":"Literary analysis"},
			{"Subject":"Math","Grade":"3","Task Model":"T2","Task Model_Text":"Type I"}]`)},
		source.TaskModelMapSource: {Data: []byte(`{
			"tm_ela_3":{"subject":"ELA","grade":"3"},
			"tm_math_3":{"subject":"Math","grade":3}}`)},
		source.ItemBankMapSource: {Data: []byte(`[
			{"id":"ELA","children":[
				{"id":"Grade 3","evidence_statement_list_key":"es_ela_3","task_model_list_key":"tm_ela_3","ims_tree_key":"ela_3"}]},
			{"id":"Math","children":[
				{"id":"Grade 3","evidence_statement_list_key":"es_math_3","task_model_list_key":"tm_math_3","ims_tree_key":"math_3"},
				{"id":"Grade 4","task_model_list_key":"tm_missing","ims_tree_key":"math_missing"}]}]`)},
	}
}

func labelsOf(rs []ontology.Resource) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Label
	}
	return out
}

func value(t *testing.T, repo ontology.Repository, subject, predicate string) string {
	t.Helper()
	v, err := ontology.FirstValue(context.Background(), repo, subject, predicate)
	require.NoError(t, err)
	return v
}

// findSubclass returns the direct subclass of parent labelled label.
func findSubclass(t *testing.T, repo ontology.Repository, parent, label string) string {
	t.Helper()
	subs, err := repo.Subclasses(context.Background(), parent, false)
	require.NoError(t, err)
	for _, s := range subs {
		if s.Label == label {
			return s.URI
		}
	}
	t.Fatalf("no subclass %q under %s", label, parent)
	return ""
}

// propertyByLabel returns the property labelled label on class, or "".
func propertyByLabel(t *testing.T, repo ontology.Repository, class, label string) string {
	t.Helper()
	props, err := repo.Properties(context.Background(), class)
	require.NoError(t, err)
	for _, p := range props {
		if p.Label == label {
			return p.URI
		}
	}
	return ""
}

// =============================================================================
// Up
// =============================================================================

func TestUp_FullImport(t *testing.T) {
	t.Parallel()
	im, s := newTestImporter(t, fixtureFS())
	ctx := context.Background()

	run, err := im.Up(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, run.Generation)

	assert.Len(t, run.Trees, 2, "unknown tree source is skipped")
	assert.Len(t, run.EvidenceLists, 2)
	assert.Len(t, run.TaskLists, 2)
	assert.Equal(t, Stats{
		Trees: 2, TreeNodes: 4, Lists: 4, ListElements: 5,
		Subclasses: 5, Properties: 6,
	}, run.Stats)

	top, err := s.Subclasses(ctx, ontology.ClassItem, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"ELA", "Math"}, labelsOf(top))

	for _, uri := range []string{run.Trees["ela_3"].URI, run.EvidenceLists["es_ela_3"].URI, run.TaskLists["tm_math_3"].URI} {
		assert.Equal(t, DefaultGenerator, value(t, s, uri, ontology.PropertyGeneratedBy))
		assert.Equal(t, run.Generation, value(t, s, uri, ontology.PropertyGeneration))
	}
}

func TestUp_MissingSourceAborts(t *testing.T) {
	t.Parallel()
	fsys := fixtureFS()
	delete(fsys, source.TaskModelSource)
	im, _ := newTestImporter(t, fsys)

	_, err := im.Up(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), source.TaskModelSource)
}

func TestWithGenerator(t *testing.T) {
	t.Parallel()
	im, s := newTestImporter(t, fixtureFS(), WithGenerator("custom"))
	assert.Equal(t, "custom", im.Generator())

	run, err := im.Up(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "custom", value(t, s, run.Trees["math_3"].URI, ontology.PropertyGeneratedBy))
}
