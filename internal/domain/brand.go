package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxBrandHistory  = 15
	MaxGalleryImages = 6
)

type BrandStatus string

const (
	BrandActive   BrandStatus = "active"
	BrandInactive BrandStatus = "inactive"
)

var (
	brandEmailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	brandPhonePattern = regexp.MustCompile(`^\+?[\d\s-]{8,}$`)
	brandThemes       = []string{"blue", "green", "purple", "red"}
	brandLanguages    = []string{"en", "es", "fr", "de", "zh", "it", "ja"}
)

type Brand struct {
	ID                 uuid.UUID          `json:"id"`
	Name               string             `json:"name"`
	Tagline            string             `json:"tagline,omitempty"`
	Mission            string             `json:"mission,omitempty"`
	Email              string             `json:"email"`
	Phone              string             `json:"phone"`
	Website            string             `json:"website,omitempty"`
	Address            string             `json:"address"`
	Logo               string             `json:"logo"`
	GalleryImages      StringList         `json:"galleryImages"`
	BusinessHours      BusinessHours      `json:"businessHours"`
	SocialLinks        SocialLinks        `json:"socialLinks"`
	TeamMembers        []TeamMember       `json:"teamMembers"`
	Categories         StringList         `json:"categories"`
	Keywords           StringList         `json:"keywords"`
	Theme              string             `json:"theme"`
	VisibilitySettings VisibilitySettings `json:"visibilitySettings"`
	Languages          StringList         `json:"languages"`
	Status             BrandStatus        `json:"status"`
	ChangeHistory      []BrandChange      `json:"changeHistory"`
	OwnerID            uuid.UUID          `json:"owner"`
	Collaborators      []uuid.UUID        `json:"collaborators"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

type OpeningHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	IsOpen Flag   `json:"isOpen"`
}

type BusinessHours struct {
	Monday    OpeningHours `json:"monday"`
	Tuesday   OpeningHours `json:"tuesday"`
	Wednesday OpeningHours `json:"wednesday"`
	Thursday  OpeningHours `json:"thursday"`
	Friday    OpeningHours `json:"friday"`
	Saturday  OpeningHours `json:"saturday"`
	Sunday    OpeningHours `json:"sunday"`
}

func (b *BusinessHours) UnmarshalJSON(data []byte) error {
	type plain BusinessHours
	return decodeSection(data, "businessHours", (*plain)(b))
}

type SocialLinks struct {
	Facebook  string `json:"facebook"`
	Twitter   string `json:"twitter"`
	LinkedIn  string `json:"linkedin"`
	Instagram string `json:"instagram"`
	YouTube   string `json:"youtube"`
	Pinterest string `json:"pinterest"`
}

func (s *SocialLinks) UnmarshalJSON(data []byte) error {
	type plain SocialLinks
	return decodeSection(data, "socialLinks", (*plain)(s))
}

type VisibilitySettings struct {
	IsPublic    Flag `json:"isPublic"`
	ShowEmail   Flag `json:"showEmail"`
	ShowPhone   Flag `json:"showPhone"`
	ShowAddress Flag `json:"showAddress"`
	ShowSocial  Flag `json:"showSocial"`
	ShowGallery Flag `json:"showGallery"`
}

func (v *VisibilitySettings) UnmarshalJSON(data []byte) error {
	type plain VisibilitySettings
	return decodeSection(data, "visibilitySettings", (*plain)(v))
}

type TeamMember struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Photo string `json:"photo"`
	Order Number `json:"order"`
}

// BrandChange is one entry of the capped brand audit trail.
type BrandChange struct {
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   uuid.UUID `json:"user"`
}

// NewBrand returns an empty brand carrying every schema default.
func NewBrand() Brand {
	day := OpeningHours{Open: "09:00", Close: "17:00", IsOpen: true}
	return Brand{
		GalleryImages: StringList{},
		BusinessHours: BusinessHours{
			Monday: day, Tuesday: day, Wednesday: day, Thursday: day,
			Friday: day, Saturday: day, Sunday: day,
		},
		TeamMembers: []TeamMember{},
		Categories:  StringList{},
		Keywords:    StringList{},
		Theme:       "blue",
		VisibilitySettings: VisibilitySettings{
			IsPublic: true, ShowEmail: true, ShowPhone: true,
			ShowAddress: true, ShowSocial: true, ShowGallery: true,
		},
		Languages:     StringList{"en"},
		Status:        BrandActive,
		ChangeHistory: []BrandChange{},
		Collaborators: []uuid.UUID{},
	}
}

// brandInput lists the members a client may set. Identity, ownership,
// status and history are managed by the service.
type brandInput struct {
	Name               *string             `json:"name"`
	Tagline            *string             `json:"tagline"`
	Mission            *string             `json:"mission"`
	Email              *string             `json:"email"`
	Phone              *string             `json:"phone"`
	Website            *string             `json:"website"`
	Address            *string             `json:"address"`
	GalleryImages      *StringList         `json:"galleryImages"`
	BusinessHours      *BusinessHours      `json:"businessHours"`
	SocialLinks        *SocialLinks        `json:"socialLinks"`
	TeamMembers        *teamMemberList     `json:"teamMembers"`
	Categories         *StringList         `json:"categories"`
	Keywords           *StringList         `json:"keywords"`
	Theme              *string             `json:"theme"`
	VisibilitySettings *VisibilitySettings `json:"visibilitySettings"`
	Languages          *StringList         `json:"languages"`
	Collaborators      *[]uuid.UUID        `json:"collaborators"`
}

type teamMemberList []TeamMember

func (l *teamMemberList) UnmarshalJSON(data []byte) error {
	items, err := decodeRecordList[TeamMember](data, "teamMembers")
	if err != nil {
		return err
	}
	*l = items
	return nil
}

// ApplyBrandPayload decodes the client-settable members of body over b.
func ApplyBrandPayload(b *Brand, body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	// sections decode on top of the current values
	in := brandInput{
		BusinessHours:      &b.BusinessHours,
		SocialLinks:        &b.SocialLinks,
		VisibilitySettings: &b.VisibilitySettings,
	}
	if err := json.Unmarshal(body, &in); err != nil {
		if errors.Is(err, ErrValidation) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&b.Name, in.Name)
	setString(&b.Tagline, in.Tagline)
	setString(&b.Mission, in.Mission)
	setString(&b.Email, in.Email)
	setString(&b.Phone, in.Phone)
	setString(&b.Website, in.Website)
	setString(&b.Address, in.Address)
	setString(&b.Theme, in.Theme)
	if in.GalleryImages != nil {
		b.GalleryImages = *in.GalleryImages
	}
	if in.TeamMembers != nil {
		b.TeamMembers = []TeamMember(*in.TeamMembers)
	}
	if in.Categories != nil {
		b.Categories = trimList(*in.Categories)
	}
	if in.Keywords != nil {
		b.Keywords = trimList(*in.Keywords)
	}
	if in.Languages != nil {
		b.Languages = *in.Languages
	}
	if in.Collaborators != nil {
		b.Collaborators = *in.Collaborators
	}
	return nil
}

func trimList(items StringList) StringList {
	out := make(StringList, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ValidateBrand reports every schema violation in one error.
func ValidateBrand(b Brand) error {
	var problems []string
	if b.Name == "" {
		problems = append(problems, "name is required")
	}
	if b.Email != "" && !brandEmailPattern.MatchString(b.Email) {
		problems = append(problems, "Invalid email format")
	}
	if b.Phone != "" && !brandPhonePattern.MatchString(b.Phone) {
		problems = append(problems, "Invalid phone format")
	}
	if len(b.GalleryImages) > MaxGalleryImages {
		problems = append(problems, fmt.Sprintf("at most %d gallery images allowed", MaxGalleryImages))
	}
	if !oneOf(b.Theme, brandThemes) {
		problems = append(problems, "theme must be one of "+strings.Join(brandThemes, ", "))
	}
	for _, lang := range b.Languages {
		if !oneOf(lang, brandLanguages) {
			problems = append(problems, fmt.Sprintf("unsupported language %q", lang))
		}
	}
	for i, m := range b.TeamMembers {
		if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Role) == "" {
			problems = append(problems, fmt.Sprintf("teamMembers[%d] requires name and role", i))
		}
	}
	if b.OwnerID == uuid.Nil {
		problems = append(problems, "owner is required")
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// RecordChange puts the newest entry first and keeps at most MaxBrandHistory.
func (b *Brand) RecordChange(action string, actor uuid.UUID, at time.Time) {
	entry := BrandChange{Action: action, Timestamp: at, ActorID: actor}
	history := make([]BrandChange, 0, len(b.ChangeHistory)+1)
	history = append(history, entry)
	history = append(history, b.ChangeHistory...)
	if len(history) > MaxBrandHistory {
		history = history[:MaxBrandHistory]
	}
	b.ChangeHistory = history
}

// ToggleStatus flips active/inactive and ties public visibility to the result.
func (b *Brand) ToggleStatus() BrandStatus {
	if b.Status == BrandActive {
		b.Status = BrandInactive
	} else {
		b.Status = BrandActive
	}
	b.VisibilitySettings.IsPublic = Flag(b.Status == BrandActive)
	return b.Status
}
