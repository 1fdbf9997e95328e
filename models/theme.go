package models

import "encoding/json"

// ThemeManifest - метаданные темы из themes/<id>/theme.json.
// Цена и премиум-флаг пока только отображаются.
type ThemeManifest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Version     string   `json:"version,omitempty"`
	Author      string   `json:"author,omitempty"`
	Preview     string   `json:"preview,omitempty"`
	Premium     bool     `json:"premium"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	// Raw - исходный манифест (уже без комментариев), отдается клиенту как есть.
	Raw json.RawMessage `json:"-"`
}

// MarshalJSON отдает исходный манифест, дополненный полем id.
// Неизвестные поля манифеста не теряются.
func (m ThemeManifest) MarshalJSON() ([]byte, error) {
	type plain ThemeManifest
	if len(m.Raw) == 0 {
		return json.Marshal(plain(m))
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(m.Raw, &fields); err != nil {
		return json.Marshal(plain(m))
	}
	id, err := json.Marshal(m.ID)
	if err != nil {
		return nil, err
	}
	fields["id"] = id
	return json.Marshal(fields)
}

// ThemeListResponse - ответ GET /api/themes.
type ThemeListResponse struct {
	Success bool            `json:"success"`
	Themes  []ThemeManifest `json:"themes"`
}

// ThemeResponse - ответ GET /api/themes/{theme_id}.
type ThemeResponse struct {
	Success bool          `json:"success"`
	Theme   ThemeManifest `json:"theme"`
}
