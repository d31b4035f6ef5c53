package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cogniflow/internal/domain/template"
	"cogniflow/internal/infrastructure/storage/objectstore"
)

// Templates lists the active user's templates ordered by sort_order.
func (v *Vault) Templates(ctx context.Context) ([]template.Template, error) {
	userID, err := v.userID()
	if err != nil {
		return nil, err
	}
	docs, err := v.store.GetByIndex(ctx, ColTemplates, "user_id", userID)
	if err != nil {
		return nil, err
	}
	out := make([]template.Template, 0, len(docs))
	for _, doc := range docs {
		var t template.Template
		if err := json.Unmarshal(doc, &t); err != nil {
			return nil, fmt.Errorf("%w: decode template: %v", objectstore.ErrStorage, err)
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

// TemplateByTrigger resolves a template by its trigger word,
// case-insensitively.
func (v *Vault) TemplateByTrigger(ctx context.Context, trigger string) (*template.Template, error) {
	tpls, err := v.Templates(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tpls {
		if tpls[i].IsActive && strings.EqualFold(tpls[i].TriggerWord, trigger) {
			return &tpls[i], nil
		}
	}
	return nil, template.ErrNotFound
}

// CreateTemplate stores a new template; trigger words are unique per user.
func (v *Vault) CreateTemplate(ctx context.Context, d template.Draft) (*template.Template, error) {
	userID, err := v.userID()
	if err != nil {
		return nil, err
	}
	existing, err := v.Templates(ctx)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if strings.EqualFold(existing[i].TriggerWord, d.TriggerWord) {
			return nil, template.ErrDuplicateTrigger
		}
	}
	now := v.now()
	t := template.Template{
		ID:              v.newID(),
		UserID:          userID,
		TriggerWord:     d.TriggerWord,
		TemplateName:    d.TemplateName,
		Icon:            d.Icon,
		CollectionType:  d.CollectionType,
		DefaultTags:     d.DefaultTags,
		DefaultSubItems: d.DefaultSubItems,
		Color:           d.Color,
		IsActive:        true,
		SortOrder:       d.SortOrder,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := v.store.Add(ctx, ColTemplates, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTemplate replaces mutable fields of an owned template.
func (v *Vault) UpdateTemplate(ctx context.Context, id string, d template.Draft) (*template.Template, error) {
	t, err := v.templateByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.TriggerWord != "" {
		t.TriggerWord = d.TriggerWord
	}
	if d.TemplateName != "" {
		t.TemplateName = d.TemplateName
	}
	if d.Icon != "" {
		t.Icon = d.Icon
	}
	if d.CollectionType != "" {
		t.CollectionType = d.CollectionType
	}
	if d.DefaultTags != nil {
		t.DefaultTags = d.DefaultTags
	}
	if d.DefaultSubItems != nil {
		t.DefaultSubItems = d.DefaultSubItems
	}
	if d.Color != "" {
		t.Color = d.Color
	}
	t.SortOrder = d.SortOrder
	t.UpdatedAt = v.now()
	if err := v.store.Put(ctx, ColTemplates, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (v *Vault) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := v.templateByID(ctx, id); err != nil {
		return err
	}
	return v.store.Delete(ctx, ColTemplates, id)
}

// MarkTemplateUsed bumps the usage counter. Best effort: callers record use
// after the item is already created.
func (v *Vault) MarkTemplateUsed(ctx context.Context, id string) error {
	t, err := v.templateByID(ctx, id)
	if err != nil {
		return err
	}
	t.UsageCount++
	t.UpdatedAt = v.now()
	return v.store.Put(ctx, ColTemplates, t)
}

// ProvisionDefaultTemplates seeds the built-in template set for a fresh
// account. Existing triggers are left alone so re-runs are harmless.
func (v *Vault) ProvisionDefaultTemplates(ctx context.Context) error {
	for _, d := range template.Defaults() {
		if _, err := v.CreateTemplate(ctx, d); err != nil {
			if errors.Is(err, template.ErrDuplicateTrigger) {
				continue
			}
			return err
		}
	}
	return nil
}

func (v *Vault) templateByID(ctx context.Context, id string) (*template.Template, error) {
	userID, err := v.userID()
	if err != nil {
		return nil, err
	}
	doc, err := v.store.GetByID(ctx, ColTemplates, id)
	if err != nil {
		if errors.Is(err, objectstore.ErrNoRecord) {
			return nil, template.ErrNotFound
		}
		return nil, err
	}
	var t template.Template
	if err := json.Unmarshal(doc, &t); err != nil {
		return nil, fmt.Errorf("%w: decode template: %v", objectstore.ErrStorage, err)
	}
	if t.UserID != userID {
		return nil, template.ErrNotFound
	}
	return &t, nil
}
