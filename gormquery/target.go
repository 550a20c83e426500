package gormquery

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/theplant/qfilter"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Target is a queryable source: either a flat tabular Selection or a mapped
// Entity. Binding resolves the target against a session so that columns and
// relationships can be looked up with type information.
type Target interface {
	bind(db *gorm.DB) (binding, error)
}

// binding is the shared resolution surface over the two target kinds.
type binding interface {
	// scope restricts db to the target's table or model.
	scope(db *gorm.DB) *gorm.DB
	// column resolves a field name to a typed column.
	column(name string) (column, error)
	// relationship resolves a declared relationship attribute.
	relationship(name string) (*relationship, error)
}

// Column declares one column of a flat selection.
type Column struct {
	Name string
	Kind Kind
}

// Selection is a flat tabular target: a table or view with a fixed set of
// typed columns and no relationship attributes. Column resolution is
// case-insensitive.
type Selection struct {
	Table   string
	Columns []Column
}

func (s *Selection) bind(db *gorm.DB) (binding, error) {
	return &selectionBinding{sel: s, stmt: &gorm.Statement{DB: db}}, nil
}

type selectionBinding struct {
	sel  *Selection
	stmt *gorm.Statement
}

func (b *selectionBinding) scope(db *gorm.DB) *gorm.DB {
	names := lo.Map(b.sel.Columns, func(c Column, _ int) string { return c.Name })
	return db.Table(b.sel.Table).Select(names)
}

func (b *selectionBinding) column(name string) (column, error) {
	c, ok := lo.Find(b.sel.Columns, func(c Column) bool {
		return strings.EqualFold(c.Name, name)
	})
	if !ok {
		return column{}, qfilter.NewFieldError(qfilter.ErrColumnNotFound, name)
	}
	return column{
		Column: clause.Column{Table: b.sel.Table, Name: c.Name},
		kind:   c.Kind,
		stmt:   b.stmt,
	}, nil
}

func (b *selectionBinding) relationship(name string) (*relationship, error) {
	return nil, qfilter.NewFieldError(qfilter.ErrNotMapped, name)
}

// Entity is a mapped model target. Columns resolve to the parsed schema's
// fields, by Go field name or database column name, and declared has-many,
// has-one and belongs-to relationships are traversable with the "with"
// operator.
type Entity struct {
	Model any
}

func (e *Entity) bind(db *gorm.DB) (binding, error) {
	b, err := newEntityBinding(db, e.Model)
	if err != nil {
		return nil, err
	}
	return b, nil
}

type entityBinding struct {
	model  any
	schema *schema.Schema
	stmt   *gorm.Statement
}

func newEntityBinding(db *gorm.DB, model any) (*entityBinding, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, errors.Wrap(err, "parse schema")
	}
	return &entityBinding{model: model, schema: stmt.Schema, stmt: stmt}, nil
}

func (b *entityBinding) scope(db *gorm.DB) *gorm.DB {
	if db.Statement.Model == nil {
		db = db.Model(b.model)
	}
	return db
}

func (b *entityBinding) column(name string) (column, error) {
	f, ok := b.schema.FieldsByName[name]
	if !ok {
		f, ok = b.schema.FieldsByDBName[name]
	}
	if !ok {
		return column{}, qfilter.NewFieldError(qfilter.ErrColumnNotFound, name)
	}
	return column{
		Column: clause.Column{Table: b.schema.Table, Name: f.DBName},
		kind:   fieldKind(f),
		stmt:   b.stmt,
	}, nil
}

func (b *entityBinding) relationship(name string) (*relationship, error) {
	rel, ok := b.schema.Relationships.Relations[name]
	if !ok {
		// query keys are usually lowercase, relation names are Go field names
		for n, r := range b.schema.Relationships.Relations {
			if strings.EqualFold(n, name) {
				rel, ok = r, true
				break
			}
		}
	}
	if !ok || rel.Type == schema.Many2Many || len(rel.References) == 0 {
		return nil, qfilter.NewFieldError(qfilter.ErrNotMapped, name)
	}

	relatedModel := reflect.New(rel.FieldSchema.ModelType).Interface()
	relatedBinding, err := newEntityBinding(b.stmt.DB, relatedModel)
	if err != nil {
		return nil, err
	}

	ref := rel.References[0]
	ownerField, relatedField := ref.ForeignKey, ref.PrimaryKey
	if ref.OwnPrimaryKey {
		ownerField, relatedField = ref.PrimaryKey, ref.ForeignKey
	}
	return &relationship{
		ownerCol:   clause.Column{Table: b.schema.Table, Name: ownerField.DBName},
		related:    relatedBinding,
		relatedCol: clause.Column{Table: relatedBinding.schema.Table, Name: relatedField.DBName},
	}, nil
}

// relationship is a resolved one-hop link from the outer target to a related
// entity.
type relationship struct {
	ownerCol   clause.Column
	related    *entityBinding
	relatedCol clause.Column
}

// subquery builds the related-side SELECT carrying the inner predicate.
func (r *relationship) subquery(inner clause.Expression) *gorm.DB {
	db := r.related.stmt.DB.Session(&gorm.Session{NewDB: true})
	return db.Model(r.related.model).
		Select(r.related.stmt.Quote(r.relatedCol)).
		Where(inner)
}
