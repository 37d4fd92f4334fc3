package checkout

import (
	twmerge "github.com/Oudwins/tailwind-merge-go"
)

// Field describes one input of the checkout form.
type Field struct {
	Name         string
	Label        string
	Type         string
	Autocomplete string
	Required     bool
	MaxLength    int
	Wide         bool
}

var contactFields = []Field{
	{Name: "first_name", Label: "First name", Type: "text", Autocomplete: "given-name", Required: true, MaxLength: 50},
	{Name: "last_name", Label: "Last name", Type: "text", Autocomplete: "family-name", Required: true, MaxLength: 50},
	{Name: "email", Label: "Email", Type: "email", Autocomplete: "email", Required: true, MaxLength: 254, Wide: true},
	{Name: "phone", Label: "Phone", Type: "tel", Autocomplete: "tel", MaxLength: 15, Wide: true},
}

var shippingFields = []Field{
	{Name: "company", Label: "Company", Type: "text", Autocomplete: "organization", MaxLength: 100, Wide: true},
	{Name: "address1", Label: "Address", Type: "text", Autocomplete: "address-line1", MaxLength: 255, Wide: true},
	{Name: "address2", Label: "Apartment, suite, etc.", Type: "text", Autocomplete: "address-line2", MaxLength: 255, Wide: true},
	{Name: "city", Label: "City", Type: "text", Autocomplete: "address-level2", MaxLength: 100},
	{Name: "postal_code", Label: "Postal code", Type: "text", Autocomplete: "postal-code", MaxLength: 20},
	{Name: "province", Label: "State / Province", Type: "text", Autocomplete: "address-level1", MaxLength: 100},
	{Name: "country", Label: "Country", Type: "text", Autocomplete: "country-name", MaxLength: 100},
}

func ContactFields() []Field {
	return append([]Field(nil), contactFields...)
}

func ShippingFields() []Field {
	return append([]Field(nil), shippingFields...)
}

// FieldNames lists every form input name, contact fields first.
func FieldNames() []string {
	names := make([]string, 0, len(contactFields)+len(shippingFields)+1)
	for _, field := range contactFields {
		names = append(names, field.Name)
	}
	for _, field := range shippingFields {
		names = append(names, field.Name)
	}
	return append(names, "special_instructions")
}

const (
	inputBase    = "block w-full rounded-md border border-gray-300 px-3 py-2 text-sm"
	inputInvalid = "border-red-500 bg-red-50"
	cellBase     = "col-span-1"
	cellWide     = "col-span-2"
)

// InputClass returns the input classes, switching the border to the error
// style when the field was rejected.
func InputClass(invalid bool) string {
	if invalid {
		return twmerge.Merge(inputBase, inputInvalid)
	}
	return inputBase
}

func CellClass(field Field) string {
	if field.Wide {
		return twmerge.Merge(cellBase, cellWide)
	}
	return cellBase
}
