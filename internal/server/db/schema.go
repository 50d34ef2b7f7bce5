package db

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// PublicationsColumns holds the columns for the "publications" table.
	PublicationsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "publication_type", Type: field.TypeString, Size: 64},
		{Name: "main_author", Type: field.TypeString},
		{Name: "title", Type: field.TypeString, Unique: true, Size: 512},
		{Name: "email", Type: field.TypeString},
		{Name: "phone", Type: field.TypeString, Size: 32},
		{Name: "dept", Type: field.TypeString, Size: 64},
		{Name: "coauthors", Type: field.TypeString, Size: 2147483647},
		{Name: "journal", Type: field.TypeString},
		{Name: "publisher", Type: field.TypeString},
		{Name: "year", Type: field.TypeInt, Nullable: true},
		{Name: "vol", Type: field.TypeString, Size: 64},
		{Name: "issue_no", Type: field.TypeString, Size: 64},
		{Name: "pages", Type: field.TypeString, Size: 64},
		{Name: "indexation", Type: field.TypeString},
		{Name: "issn_no", Type: field.TypeString, Size: 64},
		{Name: "journal_link", Type: field.TypeString, Size: 2147483647},
		{Name: "ugc_approved", Type: field.TypeString, Size: 8},
		{Name: "impact_factor", Type: field.TypeString, Size: 64},
		{Name: "pdf_url", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// PublicationsTable holds the schema information for the "publications" table.
	PublicationsTable = &schema.Table{
		Name:       "publications",
		Columns:    PublicationsColumns,
		PrimaryKey: []*schema.Column{PublicationsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "publication_email",
				Unique:  false,
				Columns: []*schema.Column{PublicationsColumns[4]},
			},
		},
	}
	// AdminsColumns holds the columns for the "admins" table.
	AdminsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// AdminsTable holds the schema information for the "admins" table.
	AdminsTable = &schema.Table{
		Name:       "admins",
		Columns:    AdminsColumns,
		PrimaryKey: []*schema.Column{AdminsColumns[0]},
	}
	// AuditLogsColumns holds the columns for the "audit_logs" table.
	AuditLogsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_email", Type: field.TypeString},
		{Name: "action", Type: field.TypeString, Size: 32},
		{Name: "details", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
	}
	// AuditLogsTable holds the schema information for the "audit_logs" table.
	AuditLogsTable = &schema.Table{
		Name:       "audit_logs",
		Columns:    AuditLogsColumns,
		PrimaryKey: []*schema.Column{AuditLogsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "auditlog_created_at",
				Unique:  false,
				Columns: []*schema.Column{AuditLogsColumns[4]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		PublicationsTable,
		AdminsTable,
		AuditLogsTable,
	}
)

// Migrate creates or updates the tables. Columns and indexes are never dropped.
func (c *Client) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(c.drv, schema.WithForeignKeys(false))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	return nil
}
