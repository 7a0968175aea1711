package app

import (
	"slices"

	"go.trai.ch/protanno/internal/core/domain"
)

// FieldInfo describes one requestable field.
type FieldInfo struct {
	Name   string
	Source string
	// Groups lists the presets containing the field, in display order.
	Groups []string
	// Always is set for fields added to every request.
	Always bool
}

// Fields lists every requestable field in catalog order.
func (a *App) Fields() []FieldInfo {
	var out []FieldInfo
	for _, f := range domain.Catalog() {
		if f.Internal {
			continue
		}
		info := FieldInfo{
			Name:   f.Name,
			Source: f.Source.String(),
			Always: slices.Contains(domain.AlwaysIncluded, f.Name),
		}
		for _, g := range domain.GroupNames {
			if slices.Contains(domain.Groups[g], f.Name) {
				info.Groups = append(info.Groups, g)
			}
		}
		out = append(out, info)
	}
	return out
}
