package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/nriit/facultypubs/internal/objects"
)

const publicationsTable = "publications"

// publicationFields are the stored columns in scan order, id excluded.
var publicationFields = []string{
	"publication_type", "main_author", "title", "email", "phone", "dept", "coauthors",
	"journal", "publisher", "year", "vol", "issue_no", "pages", "indexation", "issn_no",
	"journal_link", "ugc_approved", "impact_factor", "pdf_url",
}

type PublicationRepo struct {
	client *Client
}

func NewPublicationRepo(client *Client) *PublicationRepo {
	return &PublicationRepo{client: client}
}

func publicationValues(p objects.Publication) []any {
	var year any
	if p.Year != nil {
		year = *p.Year
	}

	return []any{
		string(p.PublicationType), p.MainAuthor, p.Title, p.Email, p.Phone, p.Dept, p.Coauthors,
		p.Journal, p.Publisher, year, p.Vol, p.IssueNo, p.Pages, p.Indexation, p.IssnNo,
		p.JournalLink, string(p.UGCApproved), p.ImpactFactor, p.PdfURL,
	}
}

func (r *PublicationRepo) selectAll() *entsql.Selector {
	columns := append([]string{"id"}, publicationFields...)
	return r.client.builder().Select(columns...).From(entsql.Table(publicationsTable))
}

func scanPublications(rows *entsql.Rows) ([]objects.Publication, error) {
	defer rows.Close()

	var result []objects.Publication

	for rows.Next() {
		var (
			p            objects.Publication
			pubType, ugc string
			year         sql.NullInt64
		)

		if err := rows.Scan(
			&p.ID, &pubType, &p.MainAuthor, &p.Title, &p.Email, &p.Phone, &p.Dept, &p.Coauthors,
			&p.Journal, &p.Publisher, &year, &p.Vol, &p.IssueNo, &p.Pages, &p.Indexation, &p.IssnNo,
			&p.JournalLink, &ugc, &p.ImpactFactor, &p.PdfURL,
		); err != nil {
			return nil, err
		}

		p.PublicationType = objects.PublicationType(pubType)
		p.UGCApproved = objects.UGCApproval(ugc)

		if year.Valid {
			y := int(year.Int64)
			p.Year = &y
		}

		result = append(result, p)
	}

	return result, rows.Err()
}

func (r *PublicationRepo) getOne(ctx context.Context, pred *entsql.Predicate) (*objects.Publication, error) {
	rows, err := r.client.query(ctx, r.selectAll().Where(pred).Limit(1))
	if err != nil {
		return nil, err
	}

	pubs, err := scanPublications(rows)
	if err != nil {
		return nil, err
	}

	if len(pubs) == 0 {
		return nil, ErrNotFound
	}

	return &pubs[0], nil
}

func (r *PublicationRepo) GetByID(ctx context.Context, id int64) (*objects.Publication, error) {
	return r.getOne(ctx, entsql.EQ("id", id))
}

func (r *PublicationRepo) GetByTitle(ctx context.Context, title string) (*objects.Publication, error) {
	return r.getOne(ctx, entsql.EQ("title", title))
}

// GetAll returns every record ordered by id.
func (r *PublicationRepo) GetAll(ctx context.Context) ([]objects.Publication, error) {
	rows, err := r.client.query(ctx, r.selectAll().OrderBy("id"))
	if err != nil {
		return nil, err
	}

	return scanPublications(rows)
}

// Insert stores the record and returns the assigned id.
func (r *PublicationRepo) Insert(ctx context.Context, p objects.Publication) (int64, error) {
	now := time.Now().UTC()

	insert := r.client.builder().Insert(publicationsTable).
		Columns(append(publicationFields, "created_at", "updated_at")...).
		Values(append(publicationValues(p), now, now)...)

	if r.client.dialect == "postgres" {
		rows, err := r.client.query(ctx, insert.Returning("id"))
		if err != nil {
			return 0, err
		}
		defer rows.Close()

		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return 0, err
			}

			return 0, errors.New("db: insert returned no id")
		}

		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}

		return id, rows.Close()
	}

	res, err := r.client.exec(ctx, insert)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// Update overwrites every stored field of the record with p.
func (r *PublicationRepo) Update(ctx context.Context, p objects.Publication) error {
	update := r.client.builder().Update(publicationsTable)

	values := publicationValues(p)
	for i, column := range publicationFields {
		update.Set(column, values[i])
	}

	update.Set("updated_at", time.Now().UTC()).Where(entsql.EQ("id", p.ID))

	res, err := r.client.exec(ctx, update)
	if err != nil {
		return err
	}

	return requireAffected(res)
}

// requireAffected maps an UPDATE or DELETE that matched no row to ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateFields writes only the fields set on the patch.
func (r *PublicationRepo) UpdateFields(ctx context.Context, patch objects.PublicationPatch) error {
	update := r.client.builder().Update(publicationsTable)

	setString := func(column string, v *string) {
		if v != nil {
			update.Set(column, *v)
		}
	}

	if patch.PublicationType != nil {
		update.Set("publication_type", string(*patch.PublicationType))
	}

	setString("main_author", patch.MainAuthor)
	setString("title", patch.Title)
	setString("email", patch.Email)
	setString("phone", patch.Phone)
	setString("dept", patch.Dept)
	setString("coauthors", patch.Coauthors)
	setString("journal", patch.Journal)
	setString("publisher", patch.Publisher)

	if patch.Year != nil {
		update.Set("year", *patch.Year)
	}

	setString("vol", patch.Vol)
	setString("issue_no", patch.IssueNo)
	setString("pages", patch.Pages)
	setString("indexation", patch.Indexation)
	setString("issn_no", patch.IssnNo)
	setString("journal_link", patch.JournalLink)

	if patch.UGCApproved != nil {
		update.Set("ugc_approved", string(*patch.UGCApproved))
	}

	setString("impact_factor", patch.ImpactFactor)
	setString("pdf_url", patch.PdfURL)

	update.Set("updated_at", time.Now().UTC()).Where(entsql.EQ("id", patch.ID))

	res, err := r.client.exec(ctx, update)
	if err != nil {
		return err
	}

	return requireAffected(res)
}

// Delete removes the record. It returns ErrNotFound when no row was deleted.
func (r *PublicationRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.client.exec(ctx, r.client.builder().Delete(publicationsTable).Where(entsql.EQ("id", id)))
	if err != nil {
		return err
	}

	return requireAffected(res)
}
