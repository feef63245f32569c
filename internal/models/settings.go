package models

import "time"

// SettingsDocumentID is the key of the singleton settings record
const SettingsDocumentID = "general"

// SiteSettings holds the global branding shown on every page
type SiteSettings struct {
	ID           string    `gorm:"type:varchar(32);primaryKey" bson:"_id" json:"-"`
	BrandName    string    `gorm:"type:varchar(120)" bson:"brandName" json:"brandName"`
	HeroTitle    string    `gorm:"type:text" bson:"heroTitle" json:"heroTitle"`
	HeroSubtitle string    `gorm:"type:text" bson:"heroSubtitle" json:"heroSubtitle"`
	PrimaryColor string    `gorm:"type:varchar(32)" bson:"primaryColor" json:"primaryColor"`
	ContactEmail string    `gorm:"type:varchar(190)" bson:"contactEmail" json:"contactEmail"`
	FooterText   string    `gorm:"type:text" bson:"footerText" json:"footerText"`
	UpdatedAt    time.Time `gorm:"type:datetime(3)" bson:"updatedAt" json:"updatedAt"`
}

// TableName specifies the table name
func (SiteSettings) TableName() string {
	return "site_settings"
}

// DefaultSiteSettings returns the values seeded when no settings exist yet
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		ID:           SettingsDocumentID,
		BrandName:    "HomeQuest",
		HeroTitle:    "Find the Perfect Place to Call Home",
		HeroSubtitle: "Browse premium properties in the world's most desirable locations. Luxury living tailored to you.",
		PrimaryColor: "#2563eb",
		ContactEmail: "hello@homequest.com",
		FooterText:   "© 2024 HomeQuest Realty Inc. All rights reserved.",
	}
}

// SettingsPatch is a partial update; nil fields are left untouched
type SettingsPatch struct {
	BrandName    *string `json:"brandName,omitempty"`
	HeroTitle    *string `json:"heroTitle,omitempty"`
	HeroSubtitle *string `json:"heroSubtitle,omitempty"`
	PrimaryColor *string `json:"primaryColor,omitempty"`
	ContactEmail *string `json:"contactEmail,omitempty"`
	FooterText   *string `json:"footerText,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p *SettingsPatch) IsEmpty() bool {
	return p.BrandName == nil && p.HeroTitle == nil && p.HeroSubtitle == nil &&
		p.PrimaryColor == nil && p.ContactEmail == nil && p.FooterText == nil
}

// Fields returns the patch as column/value pairs, keyed by the JSON name
func (p *SettingsPatch) Fields() map[string]string {
	fields := make(map[string]string)
	set := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	set("brandName", p.BrandName)
	set("heroTitle", p.HeroTitle)
	set("heroSubtitle", p.HeroSubtitle)
	set("primaryColor", p.PrimaryColor)
	set("contactEmail", p.ContactEmail)
	set("footerText", p.FooterText)
	return fields
}

// Merge applies the patch and returns the result; s is not modified
func (s SiteSettings) Merge(p SettingsPatch) SiteSettings {
	if p.BrandName != nil {
		s.BrandName = *p.BrandName
	}
	if p.HeroTitle != nil {
		s.HeroTitle = *p.HeroTitle
	}
	if p.HeroSubtitle != nil {
		s.HeroSubtitle = *p.HeroSubtitle
	}
	if p.PrimaryColor != nil {
		s.PrimaryColor = *p.PrimaryColor
	}
	if p.ContactEmail != nil {
		s.ContactEmail = *p.ContactEmail
	}
	if p.FooterText != nil {
		s.FooterText = *p.FooterText
	}
	return s
}
