package app

import (
	"github.com/example/formcraft/internal/ports/primary"
	"github.com/example/formcraft/internal/ports/secondary"
)

func recordToControl(r *secondary.ControlRecord) *primary.Control {
	if r == nil {
		return nil
	}
	props := make(map[string]any, len(r.Properties))
	for k, v := range r.Properties {
		props[k] = v
	}
	return &primary.Control{
		ID:              r.ID,
		QuestionnaireID: r.QuestionnaireID,
		SectionID:       r.SectionID,
		Type:            r.Type,
		Name:            r.Name,
		Position:        primary.Position{X: r.Position.X, Y: r.Position.Y},
		Size:            primary.Size{Width: r.Size.Width, Height: r.Size.Height},
		Properties:      props,
	}
}

func recordsToControls(records []*secondary.ControlRecord) []*primary.Control {
	out := make([]*primary.Control, 0, len(records))
	for _, r := range records {
		out = append(out, recordToControl(r))
	}
	return out
}

func requestToPatch(req primary.UpdateControlRequest) secondary.ControlPatch {
	patch := secondary.ControlPatch{
		Type:       req.Type,
		Name:       req.Name,
		SectionID:  req.SectionID,
		Properties: req.Properties,
	}
	if req.Position != nil {
		patch.Position = &secondary.Position{X: req.Position.X, Y: req.Position.Y}
	}
	if req.Size != nil {
		patch.Size = &secondary.Size{Width: req.Size.Width, Height: req.Size.Height}
	}
	return patch
}

// applyPatch returns a copy of r with patch applied.
func applyPatch(r *secondary.ControlRecord, patch secondary.ControlPatch) *secondary.ControlRecord {
	out := r.Clone()
	if patch.Type != nil {
		out.Type = *patch.Type
	}
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	if patch.SectionID != nil {
		out.SectionID = *patch.SectionID
	}
	if patch.Position != nil {
		out.Position = *patch.Position
	}
	if patch.Size != nil {
		out.Size = *patch.Size
	}
	if patch.Properties != nil {
		out.Properties = make(map[string]any, len(patch.Properties))
		for k, v := range patch.Properties {
			out.Properties[k] = v
		}
	}
	return out
}

func recordToQuestionnaire(r *secondary.QuestionnaireRecord) *primary.Questionnaire {
	return &primary.Questionnaire{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		Purpose:        r.Purpose,
		Category:       r.Category,
		Status:         r.Status,
		Version:        r.Version,
		Tier:           r.Tier,
		CreatedBy:      r.CreatedBy,
		TotalResponses: r.TotalResponses,
		CompletionRate: r.CompletionRate,
		AverageTime:    r.AverageTime,
		LastResponse:   r.LastResponse,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func recordToSection(r *secondary.SectionRecord) *primary.Section {
	return &primary.Section{
		ID:              r.ID,
		QuestionnaireID: r.QuestionnaireID,
		Name:            r.Name,
		Description:     r.Description,
		Color:           r.Color,
		Icon:            r.Icon,
		Order:           r.Order,
		Required:        r.Required,
	}
}
