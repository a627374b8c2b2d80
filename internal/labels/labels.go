// Package labels translates pricing object type and field names for display.
package labels

import (
	pricingobjectdomain "github.com/smallbiznis/scrooge/internal/pricingobject/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Field keys double as the English label.
const (
	FieldName             = "Name"
	FieldType             = "Type"
	FieldRemarks          = "Remarks"
	FieldService          = "Service"
	FieldSN               = "Serial number"
	FieldBarcode          = "Barcode"
	FieldDeviceID         = "Device ID"
	FieldAssetID          = "Asset ID"
	FieldDate             = "Date"
	FieldDepreciationRate = "Depreciation rate"
	FieldIsDepreciated    = "Is depreciated"
	FieldDailyCost        = "Daily cost"
	FieldHypervisor       = "Hypervisor"
)

var typeKeys = map[pricingobjectdomain.Type]string{
	pricingobjectdomain.TypeAsset:     "Asset",
	pricingobjectdomain.TypeVirtual:   "Virtual",
	pricingobjectdomain.TypeTenant:    "OpenStack Tenant",
	pricingobjectdomain.TypeIPAddress: "IP Address",
}

var polish = map[string]string{
	"Asset":               "Zasób",
	"Virtual":             "Maszyna wirtualna",
	"OpenStack Tenant":    "Tenant OpenStack",
	"IP Address":          "Adres IP",
	FieldName:             "Nazwa",
	FieldType:             "Typ",
	FieldRemarks:          "Uwagi",
	FieldService:          "Usługa",
	FieldSN:               "Numer seryjny",
	FieldBarcode:          "Kod kreskowy",
	FieldDeviceID:         "ID urządzenia",
	FieldAssetID:          "ID środka trwałego",
	FieldDate:             "Data",
	FieldDepreciationRate: "Stopa amortyzacji",
	FieldIsDepreciated:    "Zamortyzowany",
	FieldDailyCost:        "Koszt dzienny",
	FieldHypervisor:       "Hypervisor",
}

var supported = []language.Tag{language.English, language.Polish}

// Labeler resolves labels for a requested language, falling back to English.
type Labeler struct {
	catalog catalog.Catalog
	matcher language.Matcher
}

func New() (*Labeler, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, key := range allKeys() {
		if err := b.SetString(language.English, key, key); err != nil {
			return nil, err
		}
		if pl, ok := polish[key]; ok {
			if err := b.SetString(language.Polish, key, pl); err != nil {
				return nil, err
			}
		}
	}
	return &Labeler{catalog: b, matcher: language.NewMatcher(supported)}, nil
}

// Printer returns a printer for an Accept-Language style preference list.
func (l *Labeler) Printer(lang string) *message.Printer {
	tags, _, _ := language.ParseAcceptLanguage(lang)
	tag, _, _ := l.matcher.Match(tags...)
	base, _ := tag.Base()
	return message.NewPrinter(language.Make(base.String()), message.Catalog(l.catalog))
}

func (l *Labeler) Type(lang string, t pricingobjectdomain.Type) string {
	key, ok := typeKeys[t]
	if !ok {
		return t.String()
	}
	return l.Printer(lang).Sprintf(key)
}

func (l *Labeler) Field(lang, field string) string {
	return l.Printer(lang).Sprintf(field)
}

func allKeys() []string {
	keys := []string{
		FieldName, FieldType, FieldRemarks, FieldService, FieldSN, FieldBarcode, FieldDeviceID,
		FieldAssetID, FieldDate, FieldDepreciationRate, FieldIsDepreciated, FieldDailyCost, FieldHypervisor,
	}
	for _, t := range pricingobjectdomain.Types {
		keys = append(keys, typeKeys[t])
	}
	return keys
}
