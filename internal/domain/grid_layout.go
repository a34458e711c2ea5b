package domain

import (
	"encoding/json"
	"time"
)

// GridLayout stores the client-side presentation of an entity grid.
type GridLayout struct {
	EntityName               string              `json:"entityName"`
	ColumnOrderAndVisibility []string            `json:"columnOrderAndVisibility,omitempty"`
	ColumnWidth              map[string]int      `json:"columnWidth,omitempty"`
	ColumnPinned             map[string][]string `json:"columnPinned,omitempty"`
	Density                  string              `json:"density,omitempty"`
	UpdatedAt                time.Time           `json:"updatedAt"`
}

type layoutSettings struct {
	ColumnOrderAndVisibility []string            `json:"columnOrderAndVisibility,omitempty"`
	ColumnWidth              map[string]int      `json:"columnWidth,omitempty"`
	ColumnPinned             map[string][]string `json:"columnPinned,omitempty"`
	Density                  string              `json:"density,omitempty"`
}

// SettingsJSON encodes the presentation settings for storage.
func (l GridLayout) SettingsJSON() ([]byte, error) {
	return json.Marshal(layoutSettings{
		ColumnOrderAndVisibility: l.ColumnOrderAndVisibility,
		ColumnWidth:              l.ColumnWidth,
		ColumnPinned:             l.ColumnPinned,
		Density:                  l.Density,
	})
}

// GridLayoutFromJSON rebuilds a layout from its stored settings.
func GridLayoutFromJSON(entityName string, data []byte, updatedAt time.Time) (GridLayout, error) {
	var settings layoutSettings
	if len(data) > 0 {
		if err := json.Unmarshal(data, &settings); err != nil {
			return GridLayout{}, err
		}
	}
	return GridLayout{
		EntityName:               entityName,
		ColumnOrderAndVisibility: settings.ColumnOrderAndVisibility,
		ColumnWidth:              settings.ColumnWidth,
		ColumnPinned:             settings.ColumnPinned,
		Density:                  settings.Density,
		UpdatedAt:                updatedAt,
	}, nil
}
