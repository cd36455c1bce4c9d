package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

// chargeData reads the licence and charging reference tables. These are
// maintained by the import service; the pipeline never writes them.
type chargeData struct {
	db *pgxpool.Pool
}

const licenceColumns = `
	id, licence_number, region, start_date, expired_date, is_water_undertaker,
	invoice_account_id, invoice_account_number, company_id, contact_id, address_id, address`

func (c *chargeData) Licence(ctx context.Context, id uuid.UUID) (*model.Licence, error) {
	row := c.db.QueryRow(ctx, `SELECT `+licenceColumns+` FROM licences WHERE id = $1`, id)
	licence, err := scanLicence(row)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("licence %s not found", id))
	}
	return licence, nil
}

func (c *chargeData) LicencesInRegion(ctx context.Context, region string) ([]*model.Licence, error) {
	rows, err := c.db.Query(ctx, `SELECT `+licenceColumns+` FROM licences WHERE region = $1`, region)
	if err != nil {
		return nil, mapError(err, "licence list failed")
	}
	defer rows.Close()

	var out []*model.Licence
	for rows.Next() {
		licence, err := scanLicence(rows)
		if err != nil {
			return nil, mapError(err, "licence scan failed")
		}
		out = append(out, licence)
	}
	return out, mapError(rows.Err(), "licence list failed")
}

func (c *chargeData) ChargeVersion(ctx context.Context, id uuid.UUID) (*model.ChargeVersion, error) {
	row := c.db.QueryRow(ctx, `
		SELECT id, licence_id, start_date, end_date, elements
		FROM charge_versions WHERE id = $1`, id)
	version, err := scanChargeVersion(row)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("charge version %s not found", id))
	}
	return version, nil
}

func (c *chargeData) ChargeVersionsForLicence(ctx context.Context, licenceID uuid.UUID) ([]*model.ChargeVersion, error) {
	rows, err := c.db.Query(ctx, `
		SELECT id, licence_id, start_date, end_date, elements
		FROM charge_versions WHERE licence_id = $1
		ORDER BY start_date`, licenceID)
	if err != nil {
		return nil, mapError(err, "charge version list failed")
	}
	defer rows.Close()

	var out []*model.ChargeVersion
	for rows.Next() {
		version, err := scanChargeVersion(rows)
		if err != nil {
			return nil, mapError(err, "charge version scan failed")
		}
		out = append(out, version)
	}
	return out, mapError(rows.Err(), "charge version list failed")
}

func (c *chargeData) AgreementsForLicence(ctx context.Context, licenceID uuid.UUID) ([]*model.ChargeAgreement, error) {
	rows, err := c.db.Query(ctx, `
		SELECT id, code, factor, start_date, end_date, date_deleted
		FROM charge_agreements WHERE licence_id = $1
		ORDER BY start_date`, licenceID)
	if err != nil {
		return nil, mapError(err, "agreement list failed")
	}
	defer rows.Close()

	var out []*model.ChargeAgreement
	for rows.Next() {
		var agreement model.ChargeAgreement
		var factor *string
		if err := rows.Scan(&agreement.ID, &agreement.Code, &factor,
			&agreement.StartDate, &agreement.EndDate, &agreement.DateDeleted); err != nil {
			return nil, mapError(err, "agreement scan failed")
		}
		if factor != nil {
			f, err := decimal.NewFromString(*factor)
			if err != nil {
				return nil, model.WrapError(model.ErrInternal, "decode agreement factor", err)
			}
			agreement.Factor = &f
		}
		out = append(out, &agreement)
	}
	return out, mapError(rows.Err(), "agreement list failed")
}

func (c *chargeData) ReturnsForLicence(ctx context.Context, licenceID uuid.UUID, financialYearEnding int) ([]*model.Return, error) {
	rows, err := c.db.Query(ctx, `
		SELECT id, licence_id, purpose_use_code, financial_year_ending, volume, is_complete
		FROM returns WHERE licence_id = $1 AND financial_year_ending = $2`,
		licenceID, financialYearEnding)
	if err != nil {
		return nil, mapError(err, "return list failed")
	}
	defer rows.Close()

	var out []*model.Return
	for rows.Next() {
		var ret model.Return
		var volume string
		if err := rows.Scan(&ret.ID, &ret.LicenceID, &ret.PurposeUseCode,
			&ret.FinancialYearEnding, &volume, &ret.IsComplete); err != nil {
			return nil, mapError(err, "return scan failed")
		}
		ret.Volume, err = decimal.NewFromString(volume)
		if err != nil {
			return nil, model.WrapError(model.ErrInternal, "decode return volume", err)
		}
		out = append(out, &ret)
	}
	return out, mapError(rows.Err(), "return list failed")
}

func scanLicence(row pgx.Row) (*model.Licence, error) {
	var licence model.Licence
	var address []byte
	err := row.Scan(
		&licence.ID, &licence.LicenceNumber, &licence.Region,
		&licence.StartDate, &licence.ExpiredDate, &licence.IsWaterUndertaker,
		&licence.InvoiceAccountID, &licence.InvoiceAccountNumber,
		&licence.CompanyID, &licence.ContactID, &licence.AddressID, &address)
	if err != nil {
		return nil, err
	}
	if len(address) > 0 {
		if err := json.Unmarshal(address, &licence.Address); err != nil {
			return nil, model.WrapError(model.ErrInternal, "decode licence address", err)
		}
	}
	licence.StartDate = model.TruncateDay(licence.StartDate)
	return &licence, nil
}

func scanChargeVersion(row pgx.Row) (*model.ChargeVersion, error) {
	var version model.ChargeVersion
	var elements []byte
	err := row.Scan(&version.ID, &version.LicenceID, &version.StartDate, &version.EndDate, &elements)
	if err != nil {
		return nil, err
	}
	if len(elements) > 0 {
		if err := json.Unmarshal(elements, &version.Elements); err != nil {
			return nil, model.WrapError(model.ErrInternal, "decode charge elements", err)
		}
	}
	version.StartDate = model.TruncateDay(version.StartDate)
	return &version, nil
}
