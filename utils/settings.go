package utils

import (
	"errors"
	"regexp"
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeCustom = "custom"

	LayoutClassic    = "classic"
	LayoutCard       = "card"
	LayoutOnePerPage = "one_per_page"

	ButtonRounded = "rounded"
	ButtonSquare  = "square"
	ButtonPill    = "pill"
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

type Branding struct {
	LogoURL       string `json:"logo_url,omitempty"`
	LogoPath      string `json:"logo_path,omitempty"` // key của object trong BlobStorage
	CompanyName   string `json:"company_name,omitempty"`
	FooterText    string `json:"footer_text,omitempty"`
	HidePoweredBy bool   `json:"hide_powered_by,omitempty"`
}

// PresentationSettings là bộ cài đặt giao diện của form, lưu trong cột JSON.
type PresentationSettings struct {
	Theme           string   `json:"theme"`
	Layout          string   `json:"layout"`
	Font            string   `json:"font"`
	PrimaryColor    string   `json:"primary_color"`
	BackgroundColor string   `json:"background_color"`
	TextColor       string   `json:"text_color"`
	ButtonStyle     string   `json:"button_style"`
	ShowProgress    bool     `json:"show_progress"`
	Branding        Branding `json:"branding"`
}

// SettingsPatch: mọi trường đều là con trỏ, nil = giữ nguyên giá trị cũ.
type SettingsPatch struct {
	Theme           *string        `json:"theme"`
	Layout          *string        `json:"layout"`
	Font            *string        `json:"font"`
	PrimaryColor    *string        `json:"primary_color"`
	BackgroundColor *string        `json:"background_color"`
	TextColor       *string        `json:"text_color"`
	ButtonStyle     *string        `json:"button_style"`
	ShowProgress    *bool          `json:"show_progress"`
	Branding        *BrandingPatch `json:"branding"`
}

type BrandingPatch struct {
	CompanyName   *string `json:"company_name"`
	FooterText    *string `json:"footer_text"`
	HidePoweredBy *bool   `json:"hide_powered_by"`
}

func DefaultSettings() PresentationSettings {
	return PresentationSettings{
		Theme:           ThemeLight,
		Layout:          LayoutClassic,
		Font:            "Inter",
		PrimaryColor:    "#4f46e5",
		BackgroundColor: "#ffffff",
		TextColor:       "#111827",
		ButtonStyle:     ButtonRounded,
		ShowProgress:    true,
	}
}

// NormalizeSettings điền giá trị mặc định cho các trường còn trống.
func NormalizeSettings(s PresentationSettings) PresentationSettings {
	d := DefaultSettings()
	if s.Theme == "" {
		s.Theme = d.Theme
	}
	if s.Layout == "" {
		s.Layout = d.Layout
	}
	if s.Font == "" {
		s.Font = d.Font
	}
	if s.PrimaryColor == "" {
		s.PrimaryColor = d.PrimaryColor
	}
	if s.BackgroundColor == "" {
		s.BackgroundColor = d.BackgroundColor
	}
	if s.TextColor == "" {
		s.TextColor = d.TextColor
	}
	if s.ButtonStyle == "" {
		s.ButtonStyle = d.ButtonStyle
	}
	return s
}

func ValidateSettings(s PresentationSettings) error {
	switch s.Theme {
	case ThemeLight, ThemeDark, ThemeCustom:
	default:
		return errors.New("theme không hợp lệ")
	}
	switch s.Layout {
	case LayoutClassic, LayoutCard, LayoutOnePerPage:
	default:
		return errors.New("layout không hợp lệ")
	}
	switch s.ButtonStyle {
	case ButtonRounded, ButtonSquare, ButtonPill:
	default:
		return errors.New("button_style không hợp lệ")
	}
	for _, c := range []string{s.PrimaryColor, s.BackgroundColor, s.TextColor} {
		if !hexColor.MatchString(c) {
			return errors.New("màu phải có dạng #rgb hoặc #rrggbb")
		}
	}
	if len(s.Font) > 64 {
		return errors.New("font quá dài")
	}
	return nil
}

// MergeSettings áp patch lên base rồi chuẩn hoá; logo chỉ đổi qua API upload.
func MergeSettings(base PresentationSettings, patch SettingsPatch) PresentationSettings {
	out := base
	if patch.Theme != nil {
		out.Theme = *patch.Theme
	}
	if patch.Layout != nil {
		out.Layout = *patch.Layout
	}
	if patch.Font != nil {
		out.Font = *patch.Font
	}
	if patch.PrimaryColor != nil {
		out.PrimaryColor = *patch.PrimaryColor
	}
	if patch.BackgroundColor != nil {
		out.BackgroundColor = *patch.BackgroundColor
	}
	if patch.TextColor != nil {
		out.TextColor = *patch.TextColor
	}
	if patch.ButtonStyle != nil {
		out.ButtonStyle = *patch.ButtonStyle
	}
	if patch.ShowProgress != nil {
		out.ShowProgress = *patch.ShowProgress
	}
	if b := patch.Branding; b != nil {
		if b.CompanyName != nil {
			out.Branding.CompanyName = *b.CompanyName
		}
		if b.FooterText != nil {
			out.Branding.FooterText = *b.FooterText
		}
		if b.HidePoweredBy != nil {
			out.Branding.HidePoweredBy = *b.HidePoweredBy
		}
	}
	return NormalizeSettings(out)
}
