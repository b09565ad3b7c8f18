package importer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jward/itembank/internal/source"
)

// ImportEvidenceStatements creates one list per evidence-statement map entry.
func (im *Importer) ImportEvidenceStatements(ctx context.Context, run *Run) error {
	specs, err := im.source.EvidenceStatementMap()
	if err != nil {
		return fmt.Errorf("importer: %w", err)
	}
	records, err := im.source.EvidenceStatements()
	if err != nil {
		return fmt.Errorf("importer: %w", err)
	}
	for _, e := range specs {
		uri, err := im.CreateEvidenceStatementList(ctx, run, e.Value, records)
		if err != nil {
			return fmt.Errorf("importer: evidence statements %s: %w", e.Key, err)
		}
		run.EvidenceLists[e.Key] = ListRef{Spec: e.Value, URI: uri}
	}
	return nil
}

// CreateEvidenceStatementList creates a list holding every record matching
// spec's subject and grade, in record order.
func (im *Importer) CreateEvidenceStatementList(ctx context.Context, run *Run, spec source.ListSpec, records []source.EvidenceStatement) (string, error) {
	list, err := im.createList(ctx, run, fmt.Sprintf("Evidence Statements %s %s", spec.Subject, spec.Grade))
	if err != nil {
		return "", err
	}
	for _, rec := range records {
		if !spec.Matches(rec.Subject, rec.Grade) {
			continue
		}
		if err := im.appendElement(ctx, run, list, rec.Label()); err != nil {
			return "", err
		}
	}
	return list, nil
}

// ImportTaskModels creates one list per task-model map entry.
func (im *Importer) ImportTaskModels(ctx context.Context, run *Run) error {
	specs, err := im.source.TaskModelMap()
	if err != nil {
		return fmt.Errorf("importer: %w", err)
	}
	records, err := im.source.TaskModels()
	if err != nil {
		return fmt.Errorf("importer: %w", err)
	}
	for _, e := range specs {
		uri, err := im.CreateTaskModelList(ctx, run, e.Value, records)
		if err != nil {
			return fmt.Errorf("importer: task models %s: %w", e.Key, err)
		}
		run.TaskLists[e.Key] = ListRef{Spec: e.Value, URI: uri}
	}
	return nil
}

// CreateTaskModelList creates a list holding every task model matching
// spec's subject and grade, in record order.
func (im *Importer) CreateTaskModelList(ctx context.Context, run *Run, spec source.ListSpec, records []source.TaskModel) (string, error) {
	list, err := im.createList(ctx, run, fmt.Sprintf("Task Models %s %s", spec.Subject, spec.Grade))
	if err != nil {
		return "", err
	}
	for _, rec := range records {
		if !spec.Matches(rec.Subject, rec.Grade) {
			continue
		}
		if err := im.appendElement(ctx, run, list, rec.Text); err != nil {
			return "", err
		}
	}
	return list, nil
}

func (im *Importer) createList(ctx context.Context, run *Run, label string) (string, error) {
	list, err := im.lists.CreateList(ctx, label)
	if err != nil {
		return "", err
	}
	if err := im.stamp(ctx, run, list); err != nil {
		return "", err
	}
	run.Stats.Lists++
	im.logger.Debug("Created list", zap.String("label", label), zap.String("uri", list))
	return list, nil
}

func (im *Importer) appendElement(ctx context.Context, run *Run, list, label string) error {
	elem, err := im.lists.CreateListElement(ctx, list, label)
	if err != nil {
		return err
	}
	if err := im.stamp(ctx, run, elem); err != nil {
		return err
	}
	run.Stats.ListElements++
	return nil
}
