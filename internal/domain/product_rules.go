package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

const maxCallouts = 10

var (
	upcPattern     = regexp.MustCompile(`^\d{12}$`)
	caseUPCPattern = regexp.MustCompile(`^\d{14}$`)
)

// NewProduct returns an empty product carrying every schema default.
func NewProduct() Product {
	return Product{
		RetailMargin: 35,
		CasePackSize: 1,
		Packaging: Packaging{
			UnitPackaging:      UnitPackaging{MeasurementSystem: "Metric"},
			CasePackaging:      CasePackaging{MeasurementSystem: "Metric"},
			InnerCasePackaging: InnerCasePackaging{MeasurementSystem: "Metric"},
		},
		Allergens: Allergens{
			Dairy:       AllergenDoesNotContain,
			Egg:         AllergenDoesNotContain,
			Mustard:     AllergenDoesNotContain,
			Peanuts:     AllergenDoesNotContain,
			Seafood:     AllergenDoesNotContain,
			Soy:         AllergenDoesNotContain,
			Sesame:      AllergenDoesNotContain,
			Sulfites:    AllergenDoesNotContain,
			TreeNuts:    AllergenDoesNotContain,
			WheatGluten: AllergenDoesNotContain,
		},
		Distribution: Distribution{Distributors: DistributorList{}},
		Broker:       BrokerSection{Brokers: BrokerList{}},
		Status:       ProductInStock,
		Tags:         StringList{},
		ImageURL:     ProductPlaceholderImage,
	}
}

// Clone copies p so that decoding into the copy never writes through to p.
func (p Product) Clone() Product {
	if p.MSRP != nil {
		msrp := *p.MSRP
		p.MSRP = &msrp
	}
	if p.ImageDetails != nil {
		details := *p.ImageDetails
		p.ImageDetails = &details
	}
	return p
}

// NormalizeProductPayload decodes a loosely typed product body on top of the
// schema defaults.
func NormalizeProductPayload(body []byte) (Product, error) {
	p := NewProduct()
	if err := ApplyProductPayload(&p, body); err != nil {
		return Product{}, err
	}
	return p, nil
}

// ApplyProductPayload decodes body over p. Fields absent from body keep their
// current value.
func ApplyProductPayload(p *Product, body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	hadMSRP := p.MSRP != nil
	if err := json.Unmarshal(body, p); err != nil {
		if errors.Is(err, ErrValidation) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	// a blank msrp leaves an unset price unset
	if !hadMSRP && p.MSRP != nil && blankMSRP(body) {
		p.MSRP = nil
	}
	if p.Distribution.Distributors == nil {
		p.Distribution.Distributors = DistributorList{}
	}
	if p.Broker.Brokers == nil {
		p.Broker.Brokers = BrokerList{}
	}
	if p.Tags == nil {
		p.Tags = StringList{}
	}
	return nil
}

func blankMSRP(body []byte) bool {
	var fields struct {
		MSRP json.RawMessage `json:"msrp"`
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return false
	}
	var text string
	if err := json.Unmarshal(fields.MSRP, &text); err != nil {
		return false
	}
	return strings.TrimSpace(text) == ""
}

// DeriveProductPricing recomputes the wholesale, case and discounted prices.
func DeriveProductPricing(p *Product) {
	msrp := 0.0
	if p.MSRP != nil {
		msrp = p.MSRP.Float()
	}
	if msrp != 0 && p.RetailMargin != 0 {
		p.WholesalePrice = Number(round2(msrp * (1 - p.RetailMargin.Float()/100)))
	}
	if p.WholesalePrice != 0 && p.CasePackSize != 0 {
		p.CasePrice = Number(round2(p.WholesalePrice.Float() * p.CasePackSize.Float()))
	}
	if p.Discount > 0 {
		p.DiscountedPrice = Number(round2(msrp * (1 - p.Discount.Float()/100)))
	} else {
		p.DiscountedPrice = Number(msrp)
	}
}

// ValidateProduct reports every schema violation in one error.
func ValidateProduct(p Product) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(p.Name) == "" {
		add("Product name is required")
	}
	if strings.TrimSpace(p.Description) == "" {
		add("Product description is required")
	}
	if strings.TrimSpace(p.Category) == "" {
		add("Product category is required")
	}
	if p.MSRP == nil {
		add("MSRP is required")
	} else if *p.MSRP < 0 {
		add("msrp must be at least 0")
	}

	minimums := []struct {
		name  string
		value Number
		min   float64
	}{
		{"retailMargin", p.RetailMargin, 0},
		{"wholesalePrice", p.WholesalePrice, 0},
		{"casePackSize", p.CasePackSize, 1},
		{"casePrice", p.CasePrice, 0},
		{"cogs", p.COGS, 0},
		{"stock", p.Stock, 0},
		{"discount", p.Discount, 0},
		{"rating", p.Rating, 0},
	}
	for _, m := range minimums {
		if m.value.Float() < m.min {
			add("%s must be at least %v", m.name, m.min)
		}
	}
	if p.Discount > 100 {
		add("discount must be at most 100")
	}
	if p.Rating > 5 {
		add("rating must be at most 5")
	}

	pk := p.Packaging
	if bool(pk.ProductBarcode.HasUPC) && !upcPattern.MatchString(pk.ProductBarcode.UPCCode) {
		add("UPC must be 12 digits")
	}
	if bool(pk.CasePackaging.HasCasePacking) && pk.CasePackaging.CaseUPC != "" && !caseUPCPattern.MatchString(pk.CasePackaging.CaseUPC) {
		add("Case UPC must be 14 digits")
	}
	if pk.Callouts.HasCallouts && len(pk.Callouts.CalloutList) > maxCallouts {
		add("Maximum %d callouts allowed", maxCallouts)
	}

	checkEnum := func(field, value string, allowed ...string) {
		if value == "" {
			return
		}
		for _, a := range allowed {
			if value == a {
				return
			}
		}
		add("%s must be one of %s", field, strings.Join(allowed, ", "))
	}
	checkEnum("packaging.unitPackaging.measurementSystem", pk.UnitPackaging.MeasurementSystem, "Imperial", "Metric")
	checkEnum("packaging.unitPackaging.weightUnit", pk.UnitPackaging.WeightUnit, "Kilograms", "Pounds")
	checkEnum("packaging.casePackaging.measurementSystem", pk.CasePackaging.MeasurementSystem, "Imperial", "Metric")
	checkEnum("packaging.casePackaging.weightUnit", pk.CasePackaging.WeightUnit, "Kilograms", "grams", "Pounds", "ounces")
	checkEnum("packaging.innerCasePackaging.measurementSystem", pk.InnerCasePackaging.MeasurementSystem, "Imperial", "Metric")
	checkEnum("packaging.innerCasePackaging.weightUnit", pk.InnerCasePackaging.WeightUnit, "Kilograms", "grams", "Pounds", "ounces")
	checkEnum("packaging.shelfLife.unit", pk.ShelfLife.Unit, "Days", "Months", "Years")
	checkEnum("status", string(p.Status),
		string(ProductInStock), string(ProductLowStock), string(ProductOutOfStock),
		string(ProductDiscontinue), string(ProductComingSoon))

	allergens := p.Allergens
	for name, level := range allergens.levels() {
		checkEnum("allergens."+name, string(*level),
			string(AllergenContains), string(AllergenMayContain), string(AllergenDoesNotContain))
	}

	if len(problems) == 0 {
		return nil
	}
	// map iteration above makes the order unstable
	sort.Strings(problems)
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
}

// RecordSale adds one sale of quantity units at salePrice each.
func RecordSale(p *Product, quantity, salePrice float64) error {
	if quantity <= 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return fmt.Errorf("%w: quantity must be greater than 0", ErrValidation)
	}
	if salePrice < 0 || math.IsNaN(salePrice) || math.IsInf(salePrice, 0) {
		return fmt.Errorf("%w: salePrice must be at least 0", ErrValidation)
	}
	p.SalesCount += Number(quantity)
	p.Revenue = Number(round2(p.Revenue.Float() + salePrice*quantity))
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
