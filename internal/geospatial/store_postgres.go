package geospatial

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/cityofphiladelphia/ais/internal/db"
	"github.com/cityofphiladelphia/ais/internal/errs"
	"github.com/cityofphiladelphia/ais/internal/model"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store against the AIS PostGIS database.
type PostgresStore struct {
	pool     db.Pool
	priority []string
}

// StoreOption configures a PostgresStore.
type StoreOption func(*PostgresStore)

// WithGeocodePriority overrides DefaultGeocodePriority.
func WithGeocodePriority(priority []string) StoreOption {
	return func(s *PostgresStore) {
		s.priority = priority
	}
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool db.Pool, opts ...StoreOption) *PostgresStore {
	s := &PostgresStore{pool: pool, priority: DefaultGeocodePriority}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAddresses implements Store.
func (s *PostgresStore) GetAddresses(ctx context.Context, streetAddresses []string) ([]model.Address, error) {
	if len(streetAddresses) == 0 {
		return nil, nil
	}

	sql := `
		SELECT id, street_address, address_low,
		       COALESCE(address_low_suffix, ''), COALESCE(address_low_frac, ''), address_high,
		       COALESCE(street_predir, ''), COALESCE(street_name, ''), COALESCE(street_suffix, ''),
		       COALESCE(street_postdir, ''), COALESCE(unit_type, ''), COALESCE(unit_num, ''),
		       COALESCE(street_full, ''), COALESCE(zip_code, ''), COALESCE(zip_4, ''),
		       COALESCE(pwd_parcel_id, ''), COALESCE(dor_parcel_id, ''),
		       COALESCE(opa_account_num, ''), COALESCE(opa_owners, ''), COALESCE(opa_address, '')
		FROM address
		WHERE street_address = ANY($1)
		ORDER BY array_position($1, street_address)
	`
	rows, err := s.pool.Query(ctx, sql, streetAddresses)
	if err != nil {
		return nil, errs.NewDataAccessError("get addresses", eris.Wrap(err, "geo: query addresses"))
	}
	defer rows.Close()

	var addresses []model.Address
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(
			&a.ID, &a.StreetAddress, &a.AddressLow,
			&a.AddressLowSuffix, &a.AddressLowFrac, &a.AddressHigh,
			&a.StreetPredir, &a.StreetName, &a.StreetSuffix,
			&a.StreetPostdir, &a.UnitType, &a.UnitNum,
			&a.StreetFull, &a.ZipCode, &a.Zip4,
			&a.PWDParcelID, &a.DORParcelID,
			&a.OPAAccountNum, &a.OPAOwners, &a.OPAAddress,
		); err != nil {
			return nil, errs.NewDataAccessError("get addresses", eris.Wrap(err, "geo: scan address row"))
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDataAccessError("get addresses", eris.Wrap(err, "geo: iterate address rows"))
	}
	if len(addresses) == 0 {
		return addresses, nil
	}

	if err := s.attachTags(ctx, addresses); err != nil {
		return nil, err
	}
	if err := s.attachGeocodes(ctx, addresses); err != nil {
		return nil, err
	}
	if err := s.attachParcels(ctx, addresses, model.ParcelSourcePWD); err != nil {
		return nil, err
	}
	if err := s.attachParcels(ctx, addresses, model.ParcelSourceDOR); err != nil {
		return nil, err
	}
	return addresses, nil
}

func indexByStreetAddress(addresses []model.Address) (map[string]int, []string) {
	byStreet := make(map[string]int, len(addresses))
	keys := make([]string, 0, len(addresses))
	for i, a := range addresses {
		byStreet[a.StreetAddress] = i
		keys = append(keys, a.StreetAddress)
	}
	return byStreet, keys
}

func (s *PostgresStore) attachTags(ctx context.Context, addresses []model.Address) error {
	byStreet, keys := indexByStreetAddress(addresses)

	sql := `
		SELECT street_address, key, COALESCE(value, '')
		FROM address_tag
		WHERE street_address = ANY($1)
		ORDER BY id
	`
	rows, err := s.pool.Query(ctx, sql, keys)
	if err != nil {
		return errs.NewDataAccessError("get address tags", eris.Wrap(err, "geo: query address tags"))
	}
	defer rows.Close()

	for rows.Next() {
		var street string
		var tag model.Tag
		if err := rows.Scan(&street, &tag.Key, &tag.Value); err != nil {
			return errs.NewDataAccessError("get address tags", eris.Wrap(err, "geo: scan address tag row"))
		}
		if i, ok := byStreet[street]; ok {
			addresses[i].Tags = append(addresses[i].Tags, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return errs.NewDataAccessError("get address tags", eris.Wrap(err, "geo: iterate address tag rows"))
	}
	return nil
}

func (s *PostgresStore) attachGeocodes(ctx context.Context, addresses []model.Address) error {
	byStreet, keys := indexByStreetAddress(addresses)

	sql := `
		SELECT id, street_address, geocode_type, ST_AsEWKB(geom)
		FROM geocode
		WHERE street_address = ANY($1)
		ORDER BY id
	`
	rows, err := s.pool.Query(ctx, sql, keys)
	if err != nil {
		return errs.NewDataAccessError("get geocodes", eris.Wrap(err, "geo: query geocodes"))
	}
	defer rows.Close()

	for rows.Next() {
		var street string
		var g model.Geocode
		if err := rows.Scan(&g.ID, &street, &g.GeocodeType, &g.Geom); err != nil {
			return errs.NewDataAccessError("get geocodes", eris.Wrap(err, "geo: scan geocode row"))
		}
		if i, ok := byStreet[street]; ok {
			addresses[i].Geocodes = append(addresses[i].Geocodes, g)
		}
	}
	if err := rows.Err(); err != nil {
		return errs.NewDataAccessError("get geocodes", eris.Wrap(err, "geo: iterate geocode rows"))
	}

	for i := range addresses {
		MarkPrimary(addresses[i].Geocodes, s.priority)
	}
	return nil
}

// parcelTables is an allowlist mapping parcel relations to their tables.
var parcelTables = map[model.ParcelSource]string{
	model.ParcelSourcePWD: "pwd_parcel",
	model.ParcelSourceDOR: "dor_parcel",
}

func (s *PostgresStore) attachParcels(ctx context.Context, addresses []model.Address, src model.ParcelSource) error {
	table, ok := parcelTables[src]
	if !ok {
		return eris.Errorf("geo: invalid parcel relation %q", src)
	}

	parcelIDs := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if id := parcelIDFor(&a, src); id != "" {
			parcelIDs = append(parcelIDs, id)
		}
	}
	if len(parcelIDs) == 0 {
		return nil
	}

	sql := `SELECT id, parcel_id, ST_AsEWKB(geom) FROM ` + pgx.Identifier{table}.Sanitize() + ` WHERE parcel_id = ANY($1)`
	rows, err := s.pool.Query(ctx, sql, parcelIDs)
	if err != nil {
		return errs.NewDataAccessError("get parcels", eris.Wrapf(err, "geo: query %s", table))
	}
	defer rows.Close()

	parcels := make(map[string]*model.Parcel, len(parcelIDs))
	for rows.Next() {
		var p model.Parcel
		if err := rows.Scan(&p.ID, &p.ParcelID, &p.Geom); err != nil {
			return errs.NewDataAccessError("get parcels", eris.Wrapf(err, "geo: scan %s row", table))
		}
		parcels[p.ParcelID] = &p
	}
	if err := rows.Err(); err != nil {
		return errs.NewDataAccessError("get parcels", eris.Wrapf(err, "geo: iterate %s rows", table))
	}

	for i := range addresses {
		p, ok := parcels[parcelIDFor(&addresses[i], src)]
		if !ok {
			continue
		}
		switch src {
		case model.ParcelSourcePWD:
			addresses[i].PWDParcel = p
		case model.ParcelSourceDOR:
			addresses[i].DORParcel = p
		}
	}
	return nil
}

func parcelIDFor(a *model.Address, src model.ParcelSource) string {
	switch src {
	case model.ParcelSourcePWD:
		return a.PWDParcelID
	case model.ParcelSourceDOR:
		return a.DORParcelID
	default:
		return ""
	}
}

// GetAddressSummaries implements Store.
func (s *PostgresStore) GetAddressSummaries(ctx context.Context, streetAddresses []string) ([]model.AddressSummary, error) {
	if len(streetAddresses) == 0 {
		return nil, nil
	}

	sql := `
		SELECT street_address, address_low,
		       COALESCE(address_low_suffix, ''), COALESCE(address_low_frac, ''), address_high,
		       COALESCE(street_predir, ''), COALESCE(street_name, ''), COALESCE(street_suffix, ''),
		       COALESCE(street_postdir, ''), COALESCE(unit_type, ''), COALESCE(unit_num, ''),
		       COALESCE(street_full, ''), COALESCE(zip_code, ''), COALESCE(zip_4, ''),
		       seg_id, COALESCE(seg_side, ''),
		       COALESCE(pwd_parcel_id, ''), COALESCE(dor_parcel_id, ''),
		       COALESCE(opa_account_num, ''), COALESCE(opa_owners, ''), COALESCE(opa_address, ''),
		       COALESCE(info_residents, ''), COALESCE(info_companies, ''),
		       COALESCE(pwd_account_nums, ''), COALESCE(li_address_key, ''), COALESCE(voters, ''),
		       COALESCE(geocode_type, ''), geocode_x, geocode_y
		FROM address_summary
		WHERE street_address = ANY($1)
		ORDER BY array_position($1, street_address)
	`
	rows, err := s.pool.Query(ctx, sql, streetAddresses)
	if err != nil {
		return nil, errs.NewDataAccessError("get address summaries", eris.Wrap(err, "geo: query address summaries"))
	}
	defer rows.Close()

	var summaries []model.AddressSummary
	for rows.Next() {
		var a model.AddressSummary
		if err := rows.Scan(
			&a.StreetAddress, &a.AddressLow,
			&a.AddressLowSuffix, &a.AddressLowFrac, &a.AddressHigh,
			&a.StreetPredir, &a.StreetName, &a.StreetSuffix,
			&a.StreetPostdir, &a.UnitType, &a.UnitNum,
			&a.StreetFull, &a.ZipCode, &a.Zip4,
			&a.SegID, &a.SegSide,
			&a.PWDParcelID, &a.DORParcelID,
			&a.OPAAccountNum, &a.OPAOwners, &a.OPAAddress,
			&a.InfoResidents, &a.InfoCompanies,
			&a.PWDAccountNums, &a.LIAddressKey, &a.Voters,
			&a.GeocodeType, &a.GeocodeX, &a.GeocodeY,
		); err != nil {
			return nil, errs.NewDataAccessError("get address summaries", eris.Wrap(err, "geo: scan address summary row"))
		}
		summaries = append(summaries, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDataAccessError("get address summaries", eris.Wrap(err, "geo: iterate address summary rows"))
	}
	return summaries, nil
}
