package model

// AddressSummary is the denormalized read model of an address. Aggregates such
// as residents and voters are precomputed strings, and a single geocode is
// flattened into type and x/y columns.
type AddressSummary struct {
	StreetAddress    string  `json:"street_address" yaml:"street_address"`
	AddressLow       int     `json:"address_low" yaml:"address_low"`
	AddressLowSuffix string  `json:"address_low_suffix" yaml:"address_low_suffix"`
	AddressLowFrac   string  `json:"address_low_frac" yaml:"address_low_frac"`
	AddressHigh      *int    `json:"address_high" yaml:"address_high"`
	StreetPredir     string  `json:"street_predir" yaml:"street_predir"`
	StreetName       string  `json:"street_name" yaml:"street_name"`
	StreetSuffix     string  `json:"street_suffix" yaml:"street_suffix"`
	StreetPostdir    string  `json:"street_postdir" yaml:"street_postdir"`
	UnitType         string  `json:"unit_type" yaml:"unit_type"`
	UnitNum          string  `json:"unit_num" yaml:"unit_num"`
	StreetFull       string  `json:"street_full" yaml:"street_full"`
	ZipCode          string  `json:"zip_code" yaml:"zip_code"`
	Zip4             string  `json:"zip_4" yaml:"zip_4"`
	SegID            *int    `json:"seg_id" yaml:"seg_id"`
	SegSide          string  `json:"seg_side" yaml:"seg_side"`
	PWDParcelID      string  `json:"pwd_parcel_id" yaml:"pwd_parcel_id"`
	DORParcelID      string  `json:"dor_parcel_id" yaml:"dor_parcel_id"`
	OPAAccountNum    string  `json:"opa_account_num" yaml:"opa_account_num"`
	OPAOwners        string  `json:"opa_owners" yaml:"opa_owners"`
	OPAAddress       string  `json:"opa_address" yaml:"opa_address"`
	InfoResidents    string  `json:"info_residents" yaml:"info_residents"`
	InfoCompanies    string  `json:"info_companies" yaml:"info_companies"`
	PWDAccountNums   string  `json:"pwd_account_nums" yaml:"pwd_account_nums"`
	LIAddressKey     string  `json:"li_address_key" yaml:"li_address_key"`
	Voters           string  `json:"voters" yaml:"voters"`
	GeocodeType      string  `json:"geocode_type" yaml:"geocode_type"`
	GeocodeX         float64 `json:"geocode_x" yaml:"geocode_x"`
	GeocodeY         float64 `json:"geocode_y" yaml:"geocode_y"`
}
