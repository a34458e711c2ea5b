// Package entities declares the field tables of the entity types served by the
// grid API. Each table mirrors a relation created by the embedded migrations.
package entities

import (
	"github.com/rpattn/koreng/internal/domain"
	"github.com/rpattn/koreng/internal/schema"
)

// Address is a postal address referenced by customers.
var Address = schema.Definition{
	Name:  "Address",
	Table: "addresses",
	Fields: []domain.FieldDescriptor{
		{Name: "id", Kind: domain.FieldKindInt},
		{Name: "street", Kind: domain.FieldKindString},
		{Name: "city", Kind: domain.FieldKindString},
		{Name: "postalCode", Column: "postal_code", Kind: domain.FieldKindString},
		{Name: "country", Kind: domain.FieldKindString},
	},
}

// Customer owns orders and lives at an address.
var Customer = schema.Definition{
	Name:  "Customer",
	Table: "customers",
	Fields: []domain.FieldDescriptor{
		{Name: "id", Kind: domain.FieldKindInt},
		{Name: "name", Kind: domain.FieldKindString},
		{Name: "email", Kind: domain.FieldKindString, SerializedName: "emailAddress"},
		{Name: "vip", Kind: domain.FieldKindBool},
		{Name: "creditLimit", Column: "credit_limit", Kind: domain.FieldKindFloat},
		{Name: "birthDate", Column: "birth_date", Kind: domain.FieldKindDate},
		{Name: "createdAt", Column: "created_at", Kind: domain.FieldKindDateTime, Format: "2006-01-02 15:04"},
		{Name: "status", Kind: domain.FieldKindInt},
		{Name: "passwordHash", Column: "password_hash", Kind: domain.FieldKindString, Ignored: true},
		{
			Name: "address",
			Kind: domain.FieldKindRelationship,
			Relation: &domain.Relation{
				Target:       "Address",
				LocalColumn:  "address_id",
				RemoteColumn: "id",
			},
		},
		{
			Name: "orders",
			Kind: domain.FieldKindRelationship,
			Relation: &domain.Relation{
				Target:       "Order",
				LocalColumn:  "id",
				RemoteColumn: "customer_id",
			},
		},
	},
}

// Product is a sellable item. Its status is free text, so no active-row rule applies.
var Product = schema.Definition{
	Name:  "Product",
	Table: "products",
	Fields: []domain.FieldDescriptor{
		{Name: "id", Kind: domain.FieldKindInt},
		{Name: "sku", Kind: domain.FieldKindString},
		{Name: "name", Kind: domain.FieldKindString},
		{Name: "price", Kind: domain.FieldKindFloat},
		{Name: "active", Kind: domain.FieldKindBool},
		{Name: "status", Kind: domain.FieldKindString},
	},
}

// Order links a customer to a product.
var Order = schema.Definition{
	Name:  "Order",
	Table: "orders",
	Fields: []domain.FieldDescriptor{
		{Name: "id", Kind: domain.FieldKindInt},
		{Name: "quantity", Kind: domain.FieldKindInt},
		{Name: "state", Kind: domain.FieldKindString},
		{Name: "orderedOn", Column: "ordered_on", Kind: domain.FieldKindDate},
		{Name: "shippedAt", Column: "shipped_at", Kind: domain.FieldKindDateTime},
		{Name: "status", Kind: domain.FieldKindBool},
		{
			Name: "customer",
			Kind: domain.FieldKindRelationship,
			Relation: &domain.Relation{
				Target:       "Customer",
				LocalColumn:  "customer_id",
				RemoteColumn: "id",
			},
		},
		{
			Name: "product",
			Kind: domain.FieldKindRelationship,
			Relation: &domain.Relation{
				Target:       "Product",
				LocalColumn:  "product_id",
				RemoteColumn: "id",
			},
		},
	},
}

// All lists every entity definition of the catalog.
func All() []schema.Definition {
	return []schema.Definition{Address, Customer, Product, Order}
}

// NewRegistry returns a registry holding the whole catalog.
func NewRegistry() *schema.Registry {
	registry := schema.NewRegistry()
	registry.MustRegister(All()...)
	return registry
}
