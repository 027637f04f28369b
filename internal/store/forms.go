package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/formscript/internal/forms"
)

// Store implements forms.VersionedRepository.
var _ forms.VersionedRepository = (*Store)(nil)

// Publication records one Publish call.
type Publication struct {
	Seq       int64  `json:"seq"`
	Entity    string `json:"entity"`
	FormCount int    `json:"form_count"`
}

// ImportForm inserts a form, or replaces the XML, name and type of an
// existing form with the same id. A form without an id gets a new one.
// Imported forms are customizable and active.
func (s *Store) ImportForm(ctx context.Context, f forms.EntityForm) (forms.EntityForm, error) {
	if strings.TrimSpace(f.Entity) == "" {
		return forms.EntityForm{}, fmt.Errorf("import form: entity is required")
	}
	if strings.TrimSpace(f.FormXML) == "" {
		return forms.EntityForm{}, fmt.Errorf("import form: form xml is required")
	}
	codes := f.Type.Codes()
	if len(codes) != 1 {
		return forms.EntityForm{}, fmt.Errorf("import form: exactly one form type is required, got %s", f.Type)
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Name == "" {
		f.Name = f.Entity
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		seq, err := nextSeq(ctx, tx)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO system_forms
			(form_id, entity, name, type_code, form_xml, version, updated_seq)
			VALUES (?, ?, ?, ?, ?, 1, ?)
			ON CONFLICT(form_id) DO UPDATE SET
				entity = excluded.entity,
				name = excluded.name,
				type_code = excluded.type_code,
				form_xml = excluded.form_xml,
				version = system_forms.version + 1,
				updated_seq = excluded.updated_seq
		`, f.ID, f.Entity, f.Name, codes[0], f.FormXML, seq)
		return err
	})
	if err != nil {
		return forms.EntityForm{}, fmt.Errorf("import form: %w", err)
	}
	return s.GetForm(ctx, f.ID)
}

// GetForms returns the customizable, active forms of q.Entity whose type is
// selected by q.Types, optionally narrowed by name and id.
func (s *Store) GetForms(ctx context.Context, q forms.Query) ([]forms.EntityForm, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var (
		where = []string{"entity = ?", "is_customizable = 1", "activation_state = 1"}
		args  = []any{q.Entity}
	)
	codes := q.Types.Codes()
	placeholders := make([]string, len(codes))
	for i, c := range codes {
		placeholders[i] = "?"
		args = append(args, c)
	}
	where = append(where, "type_code IN ("+strings.Join(placeholders, ", ")+")")
	if q.Name != "" {
		where = append(where, "name = ?")
		args = append(args, q.Name)
	}
	if q.FormID != "" {
		where = append(where, "form_id = ?")
		args = append(args, q.FormID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT form_id, entity, name, type_code, form_xml, version
		FROM system_forms
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY name ASC, form_id COLLATE BINARY ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("get forms: %w", err)
	}
	defer rows.Close()

	return scanForms(rows)
}

// GetForm returns a single form by id regardless of its state.
func (s *Store) GetForm(ctx context.Context, formID string) (forms.EntityForm, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT form_id, entity, name, type_code, form_xml, version
		FROM system_forms
		WHERE form_id = ?
	`, formID)
	if err != nil {
		return forms.EntityForm{}, fmt.Errorf("get form: %w", err)
	}
	defer rows.Close()

	out, err := scanForms(rows)
	if err != nil {
		return forms.EntityForm{}, err
	}
	if len(out) == 0 {
		return forms.EntityForm{}, fmt.Errorf("get form %s: %w", formID, forms.ErrFormNotFound)
	}
	return out[0], nil
}

// UpdateFormXML replaces the draft XML of a form and bumps its version.
func (s *Store) UpdateFormXML(ctx context.Context, formID, formXML string) error {
	return s.updateFormXML(ctx, formID, formXML, 0)
}

// UpdateFormXMLIfVersion is UpdateFormXML guarded by the version the caller
// read. It fails with forms.ErrVersionConflict if the form changed since.
func (s *Store) UpdateFormXMLIfVersion(ctx context.Context, formID, formXML string, version int64) error {
	if version <= 0 {
		return fmt.Errorf("update form %s: version must be positive", formID)
	}
	return s.updateFormXML(ctx, formID, formXML, version)
}

func (s *Store) updateFormXML(ctx context.Context, formID, formXML string, version int64) error {
	if strings.TrimSpace(formXML) == "" {
		return fmt.Errorf("update form %s: form xml is required", formID)
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var current int64
		err := tx.QueryRowContext(ctx, `SELECT version FROM system_forms WHERE form_id = ?`, formID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return forms.ErrFormNotFound
		}
		if err != nil {
			return err
		}
		if version > 0 && current != version {
			return fmt.Errorf("%w: have version %d, form is at %d", forms.ErrVersionConflict, version, current)
		}

		seq, err := nextSeq(ctx, tx)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE system_forms
			SET form_xml = ?, version = version + 1, updated_seq = ?
			WHERE form_id = ?
		`, formXML, seq, formID)
		return err
	})
	if err != nil {
		return fmt.Errorf("update form %s: %w", formID, err)
	}
	return nil
}

// SetFormState sets the customizable and active flags of a form.
func (s *Store) SetFormState(ctx context.Context, formID string, customizable, active bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE system_forms SET is_customizable = ?, activation_state = ?
		WHERE form_id = ?
	`, boolInt(customizable), boolInt(active), formID)
	if err != nil {
		return fmt.Errorf("set form state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set form state: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("set form state %s: %w", formID, forms.ErrFormNotFound)
	}
	return nil
}

// Publish makes the draft XML of every form of entity the published XML.
// A publication row is recorded even when nothing differed.
func (s *Store) Publish(ctx context.Context, entity string) error {
	if strings.TrimSpace(entity) == "" {
		return fmt.Errorf("publish: entity is required")
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE system_forms SET published_xml = form_xml
			WHERE entity = ? AND (published_xml IS NULL OR published_xml != form_xml)
		`, entity)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		seq, err := nextSeq(ctx, tx)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO publications (seq, entity, form_count) VALUES (?, ?, ?)
		`, seq, entity, n)
		return err
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", entity, err)
	}
	return nil
}

// Pending returns the forms of entity whose draft differs from the
// published XML.
func (s *Store) Pending(ctx context.Context, entity string) ([]forms.EntityForm, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT form_id, entity, name, type_code, form_xml, version
		FROM system_forms
		WHERE entity = ? AND (published_xml IS NULL OR published_xml != form_xml)
		ORDER BY name ASC, form_id COLLATE BINARY ASC
	`, entity)
	if err != nil {
		return nil, fmt.Errorf("pending forms: %w", err)
	}
	defer rows.Close()
	return scanForms(rows)
}

// Publications returns the publish history of entity, oldest first.
func (s *Store) Publications(ctx context.Context, entity string) ([]Publication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, entity, form_count FROM publications
		WHERE entity = ?
		ORDER BY seq ASC
	`, entity)
	if err != nil {
		return nil, fmt.Errorf("publications: %w", err)
	}
	defer rows.Close()

	var out []Publication
	for rows.Next() {
		var p Publication
		if err := rows.Scan(&p.Seq, &p.Entity, &p.FormCount); err != nil {
			return nil, fmt.Errorf("scan publication: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanForms(rows *sql.Rows) ([]forms.EntityForm, error) {
	var out []forms.EntityForm
	for rows.Next() {
		var (
			f    forms.EntityForm
			code int
		)
		if err := rows.Scan(&f.ID, &f.Entity, &f.Name, &code, &f.FormXML, &f.Version); err != nil {
			return nil, fmt.Errorf("scan form: %w", err)
		}
		ft, ok := forms.FormTypeFromCode(code)
		if !ok {
			return nil, fmt.Errorf("scan form %s: unknown type code %d", f.ID, code)
		}
		f.Type = ft
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forms: %w", err)
	}
	return out, nil
}

// nextSeq returns the next logical sequence number across all tables.
func nextSeq(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(s), 0) + 1 FROM (
			SELECT MAX(updated_seq) AS s FROM system_forms
			UNION ALL
			SELECT MAX(seq) AS s FROM publications
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
