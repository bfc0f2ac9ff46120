package domain

import (
	"time"

	"github.com/google/uuid"
)

type ProductStatus string

const (
	ProductInStock     ProductStatus = "In Stock"
	ProductLowStock    ProductStatus = "Low Stock"
	ProductOutOfStock  ProductStatus = "Out of Stock"
	ProductDiscontinue ProductStatus = "Discontinued"
	ProductComingSoon  ProductStatus = "Coming Soon"
)

const ProductPlaceholderImage = "/api/placeholder/300/300"

// Product is the catalog document. Every nested section is a value so that
// splicing an upload into a section never needs to allocate parents.
type Product struct {
	ID                  uuid.UUID  `json:"id"`
	OwnerID             uuid.UUID  `json:"owner"`
	Name                string     `json:"name"`
	Description         string     `json:"description"`
	DetailedDescription string     `json:"detailedDescription,omitempty"`
	Category            string     `json:"category"`
	MSRP                *Number    `json:"msrp"`
	RetailMargin        Number     `json:"retailMargin"`
	WholesalePrice      Number     `json:"wholesalePrice"`
	CasePackSize        Number     `json:"casePackSize"`
	CasePrice           Number     `json:"casePrice"`
	DateAvailable       Date       `json:"dateAvailable"`
	PricingComments     string     `json:"pricingComments,omitempty"`
	COGS                Number     `json:"cogs"`
	Stock               Number     `json:"stock"`
	Discount            Number     `json:"discount"`
	DiscountedPrice     Number     `json:"discountedPrice"`

	Packaging      Packaging      `json:"packaging"`
	Certifications Certifications `json:"certifications"`
	Allergens      Allergens      `json:"allergens"`
	Distribution   Distribution   `json:"distribution"`
	Broker         BrokerSection  `json:"broker"`
	Marketing      Marketing      `json:"marketing"`

	Status       ProductStatus `json:"status"`
	Tags         StringList    `json:"tags"`
	SalesCount   Number        `json:"salesCount"`
	Revenue      Number        `json:"revenue"`
	Rating       Number        `json:"rating"`
	ImageURL     string        `json:"imageUrl"`
	ImageDetails *ImageDetails `json:"imageDetails,omitempty"`
	LastUpdated  time.Time     `json:"lastUpdated"`
	CreatedAt    time.Time     `json:"createdAt"`
}

type ImageDetails struct {
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimetype"`
	Size         Number `json:"size"`
}

type Packaging struct {
	ProductBarcode     ProductBarcode     `json:"productBarcode"`
	MultipleLanguages  MultipleLanguages  `json:"multipleLanguages"`
	UnitPackaging      UnitPackaging      `json:"unitPackaging"`
	CasePackaging      CasePackaging      `json:"casePackaging"`
	InnerCasePackaging InnerCasePackaging `json:"innerCasePackaging"`
	Callouts           Callouts           `json:"callouts"`
	Ingredients        Ingredients        `json:"ingredients"`
	ShelfLife          ShelfLife          `json:"shelfLife"`
	NutritionalInfo    NutritionalInfo    `json:"nutritionalInfo"`
}

func (p *Packaging) UnmarshalJSON(data []byte) error {
	type plain Packaging
	return decodeSection(data, "packaging", (*plain)(p))
}

type ProductBarcode struct {
	HasUPC  Flag   `json:"hasUPC"`
	UPCCode string `json:"upcCode,omitempty"`
}

func (b *ProductBarcode) UnmarshalJSON(data []byte) error {
	type plain ProductBarcode
	return decodeSection(data, "packaging.productBarcode", (*plain)(b))
}

type MultipleLanguages struct {
	HasMultipleLanguages Flag       `json:"hasMultipleLanguages"`
	Languages            StringList `json:"languages,omitempty"`
}

func (m *MultipleLanguages) UnmarshalJSON(data []byte) error {
	type plain MultipleLanguages
	return decodeSection(data, "packaging.multipleLanguages", (*plain)(m))
}

type UnitPackaging struct {
	MeasurementSystem string `json:"measurementSystem"`
	Height            Number `json:"height,omitempty"`
	Width             Number `json:"width,omitempty"`
	Length            Number `json:"length,omitempty"`
	WeightUnit        string `json:"weightUnit,omitempty"`
	Weight            Number `json:"weight,omitempty"`
	Volume            Number `json:"volume,omitempty"`
}

func (u *UnitPackaging) UnmarshalJSON(data []byte) error {
	type plain UnitPackaging
	return decodeSection(data, "packaging.unitPackaging", (*plain)(u))
}

type CasePackaging struct {
	HasCasePacking    Flag   `json:"hasCasePacking"`
	MeasurementSystem string `json:"measurementSystem"`
	Height            Number `json:"height,omitempty"`
	Width             Number `json:"width,omitempty"`
	Length            Number `json:"length,omitempty"`
	WeightUnit        string `json:"weightUnit,omitempty"`
	Weight            Number `json:"weight,omitempty"`
	Volume            Number `json:"volume,omitempty"`
	CasesPerTier      Number `json:"casesPerTier,omitempty"`
	TiersPerPallet    Number `json:"tiersPerPallet,omitempty"`
	CaseUPC           string `json:"caseUPC,omitempty"`
}

func (c *CasePackaging) UnmarshalJSON(data []byte) error {
	type plain CasePackaging
	return decodeSection(data, "packaging.casePackaging", (*plain)(c))
}

type InnerCasePackaging struct {
	HasInnerCase      Flag   `json:"hasInnerCase"`
	UnitsPerInnerCase Number `json:"unitsPerInnerCase,omitempty"`
	MeasurementSystem string `json:"measurementSystem"`
	Height            Number `json:"height,omitempty"`
	Width             Number `json:"width,omitempty"`
	Length            Number `json:"length,omitempty"`
	WeightUnit        string `json:"weightUnit,omitempty"`
	Weight            Number `json:"weight,omitempty"`
}

func (c *InnerCasePackaging) UnmarshalJSON(data []byte) error {
	type plain InnerCasePackaging
	return decodeSection(data, "packaging.innerCasePackaging", (*plain)(c))
}

type Callouts struct {
	HasCallouts Flag       `json:"hasCallouts"`
	CalloutList StringList `json:"calloutList,omitempty"`
}

func (c *Callouts) UnmarshalJSON(data []byte) error {
	type plain Callouts
	return decodeSection(data, "packaging.callouts", (*plain)(c))
}

type Ingredients struct {
	IsFrozen              Flag               `json:"isFrozen"`
	IsRefrigerated        Flag               `json:"isRefrigerated"`
	IsShelfStable         Flag               `json:"isShelfStable"`
	HasIngredients        Flag               `json:"hasIngredients"`
	IngredientsList       StringList         `json:"ingredientsList,omitempty"`
	IngredientsLabelImage string             `json:"ingredientsLabelImage,omitempty"`
	ForeignIngredients    ForeignIngredients `json:"foreignIngredients"`
}

func (i *Ingredients) UnmarshalJSON(data []byte) error {
	type plain Ingredients
	return decodeSection(data, "packaging.ingredients", (*plain)(i))
}

type ForeignIngredients struct {
	HasSourcedIngredients Flag       `json:"hasSourcedIngredients"`
	SourceCountries       StringList `json:"sourceCountries,omitempty"`
}

func (f *ForeignIngredients) UnmarshalJSON(data []byte) error {
	type plain ForeignIngredients
	return decodeSection(data, "packaging.ingredients.foreignIngredients", (*plain)(f))
}

type ShelfLife struct {
	HasShelfLife Flag   `json:"hasShelfLife"`
	Unit         string `json:"unit,omitempty"`
	Value        Number `json:"value,omitempty"`
}

func (s *ShelfLife) UnmarshalJSON(data []byte) error {
	type plain ShelfLife
	return decodeSection(data, "packaging.shelfLife", (*plain)(s))
}

type NutritionalInfo struct {
	HasNutritionalLabel   Flag   `json:"hasNutritionalLabel"`
	NutritionalLabelImage string `json:"nutritionalLabelImage,omitempty"`
}

func (n *NutritionalInfo) UnmarshalJSON(data []byte) error {
	type plain NutritionalInfo
	return decodeSection(data, "packaging.nutritionalInfo", (*plain)(n))
}

type Certifications struct {
	HasCertifications Flag       `json:"hasCertifications"`
	CertificationList StringList `json:"certificationList,omitempty"`
}

func (c *Certifications) UnmarshalJSON(data []byte) error {
	type plain Certifications
	return decodeSection(data, "certifications", (*plain)(c))
}

type AllergenLevel string

const (
	AllergenContains       AllergenLevel = "Contains"
	AllergenMayContain     AllergenLevel = "May Contain"
	AllergenDoesNotContain AllergenLevel = "Does Not Contain"
)

type Allergens struct {
	Dairy       AllergenLevel `json:"dairy"`
	Egg         AllergenLevel `json:"egg"`
	Mustard     AllergenLevel `json:"mustard"`
	Peanuts     AllergenLevel `json:"peanuts"`
	Seafood     AllergenLevel `json:"seafood"`
	Soy         AllergenLevel `json:"soy"`
	Sesame      AllergenLevel `json:"sesame"`
	Sulfites    AllergenLevel `json:"sulfites"`
	TreeNuts    AllergenLevel `json:"treeNuts"`
	WheatGluten AllergenLevel `json:"wheatGluten"`
}

func (a *Allergens) UnmarshalJSON(data []byte) error {
	type plain Allergens
	return decodeSection(data, "allergens", (*plain)(a))
}

func (a *Allergens) levels() map[string]*AllergenLevel {
	return map[string]*AllergenLevel{
		"dairy":       &a.Dairy,
		"egg":         &a.Egg,
		"mustard":     &a.Mustard,
		"peanuts":     &a.Peanuts,
		"seafood":     &a.Seafood,
		"soy":         &a.Soy,
		"sesame":      &a.Sesame,
		"sulfites":    &a.Sulfites,
		"treeNuts":    &a.TreeNuts,
		"wheatGluten": &a.WheatGluten,
	}
}

type Distribution struct {
	ManufactureCountry   string          `json:"manufactureCountry,omitempty"`
	ManufactureRegion    string          `json:"manufactureRegion,omitempty"`
	HasDistributors      Flag            `json:"hasDistributors"`
	Distributors         DistributorList `json:"distributors"`
	Retailers            StringList      `json:"retailers,omitempty"`
	DistributionComments string          `json:"distributionComments,omitempty"`
}

func (d *Distribution) UnmarshalJSON(data []byte) error {
	type plain Distribution
	return decodeSection(data, "distribution", (*plain)(d))
}

type Distributor struct {
	Name       string `json:"name"`
	Percentage Number `json:"percentage,omitempty"`
	DoesPickup Flag   `json:"doesPickup"`
}

// DistributorList never holds anything but a list; malformed input becomes empty.
type DistributorList []Distributor

func (l *DistributorList) UnmarshalJSON(data []byte) error {
	items, err := decodeRecordList[Distributor](data, "distribution.distributors")
	if err != nil {
		return err
	}
	*l = items
	return nil
}

type BrokerSection struct {
	HasBrokers     Flag       `json:"hasBrokers"`
	Brokers        BrokerList `json:"brokers"`
	BrokerComments string     `json:"brokerComments,omitempty"`
}

func (b *BrokerSection) UnmarshalJSON(data []byte) error {
	type plain BrokerSection
	return decodeSection(data, "broker", (*plain)(b))
}

type Broker struct {
	Name                 string `json:"name"`
	ChargesCommission    Flag   `json:"chargesCommission"`
	CommissionPercentage Number `json:"commissionPercentage,omitempty"`
	CommissionDuration   string `json:"commissionDuration,omitempty"`
	ChargesRetainer      Flag   `json:"chargesRetainer"`
	RetainerAmount       Number `json:"retainerAmount,omitempty"`
	RetainerDuration     string `json:"retainerDuration,omitempty"`
}

type BrokerList []Broker

func (l *BrokerList) UnmarshalJSON(data []byte) error {
	items, err := decodeRecordList[Broker](data, "broker.brokers")
	if err != nil {
		return err
	}
	*l = items
	return nil
}

type Marketing struct {
	HasElevatorPitch  Flag   `json:"hasElevatorPitch"`
	ElevatorPitch     string `json:"elevatorPitch,omitempty"`
	ElevatorPitchFile string `json:"elevatorPitchFile,omitempty"`
	HasSellSheet      Flag   `json:"hasSellSheet"`
	SellSheetFile     string `json:"sellSheetFile,omitempty"`
	HasPresentation   Flag   `json:"hasPresentation"`
	PresentationFile  string `json:"presentationFile,omitempty"`
}

func (m *Marketing) UnmarshalJSON(data []byte) error {
	type plain Marketing
	return decodeSection(data, "marketing", (*plain)(m))
}
