package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Source document names, relative to the loader's filesystem root.
const (
	ELATreeSource              = "core_standard_ela.json"
	MathTreeSource             = "core_standard_math.json"
	IMSTreeMapSource           = "ims_tree_map.json"
	EvidenceStatementSource    = "evidence_statements.json"
	EvidenceStatementMapSource = "evidence_statement_map.json"
	TaskModelSource            = "task_models.json"
	TaskModelMapSource         = "task_model_map.json"
	ItemBankMapSource          = "item_bank_map.json"
)

// AllSources lists every document a full import reads.
var AllSources = []string{
	ELATreeSource, MathTreeSource, IMSTreeMapSource,
	EvidenceStatementSource, EvidenceStatementMapSource,
	TaskModelSource, TaskModelMapSource, ItemBankMapSource,
}

// Standard tree identifiers used in TreeSpec.Tree.
const (
	TreeELA  = "ELA"
	TreeMath = "MATH"
)

// TreeNode is one node of a standard-tree document.
type TreeNode struct {
	Name       string      `json:"name"`
	Identifier string      `json:"identifier"`
	Children   []*TreeNode `json:"children,omitempty"`
}

// TreeSpec selects labelled subtrees of one standard tree.
type TreeSpec struct {
	Tree     string   `json:"tree"`
	Label    string   `json:"label"`
	Subtrees []string `json:"subtrees"`
}

// ListSpec names the subject/grade combination a generated list covers.
type ListSpec struct {
	Subject Field `json:"subject"`
	Grade   Field `json:"grade"`
}

// Matches reports whether subject and grade equal those of s.
func (s ListSpec) Matches(subject, grade Field) bool {
	return s.Subject == subject && s.Grade == grade
}

// EvidenceStatement is one record of the evidence statement document.
type EvidenceStatement struct {
	Subject Field  `json:"Subject"`
	Grade   Field  `json:"Grade"`
	Code    string `json:"Evidence Statement"`
	Text    string `json:"Evidence Statement_Text"`
}

// Label returns the display text of the statement: the long-form text,
// prefixed with the short code unless the text already starts with it.
func (e EvidenceStatement) Label() string {
	if strings.HasPrefix(e.Text, e.Code) {
		return e.Text
	}
	return e.Code + " " + e.Text
}

// TaskModel is one record of the task model document.
type TaskModel struct {
	Subject Field  `json:"Subject"`
	Grade   Field  `json:"Grade"`
	Code    string `json:"Task Model"`
	Text    string `json:"Task Model_Text"`
}

// StructureNode is one class of the declarative item-bank hierarchy.
type StructureNode struct {
	ID                       string           `json:"id"`
	EvidenceStatementListKey string           `json:"evidence_statement_list_key,omitempty"`
	TaskModelListKey         string           `json:"task_model_list_key,omitempty"`
	IMSTreeKey               string           `json:"ims_tree_key,omitempty"`
	Children                 []*StructureNode `json:"children,omitempty"`
}

// Entry is one key/value pair of a JSON object, kept in document order.
type Entry[T any] struct {
	Key   string
	Value T
}

// Field is a subject or grade value. JSON documents carry these either as
// strings or as numbers; both decode to the same canonical string so that
// "3", 3 and 3.0 compare equal.
type Field string

// UnmarshalJSON accepts a JSON string or number.
func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Field(strings.TrimSpace(s))
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("field: expected string or number, got %s", data)
		}
		*f = Field(strconv.FormatFloat(n, 'f', -1, 64))
	}
	return nil
}

func (f Field) String() string {
	return string(f)
}
