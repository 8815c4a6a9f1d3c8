// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package spintatest

import (
	"github.com/diffeo/go-spinta/spinta"
)

// Property types understood by the emulator.
const (
	TypeInteger = "integer"
	TypeString  = "string"
	TypeRef     = "ref"
)

// Property declares one property of a model.
type Property struct {
	// Type is one of TypeInteger, TypeString or TypeRef.
	Type string

	// Ref names the target model of a TypeRef property, relative
	// to the referencing model's dataset.
	Ref string

	// RefKeys lists the business-key properties a reference is
	// declared to resolve by.  Empty means the reference only
	// accepts {"_id": …}.
	RefKeys []string
}

// Model declares a model the emulator serves.
type Model struct {
	Name       spinta.ModelName
	Properties map[string]Property

	// ClientID allows POST bodies to carry their own _id.
	ClientID bool
}

// Defects switches on behavior observed from real servers that does
// not match what models declare.
type Defects struct {
	// IgnoreClientIDPolicy accepts a client-supplied _id even on
	// models that do not set ClientID.
	IgnoreClientIDPolicy bool

	// RejectKeyRefs treats every reference as _id-only, so a
	// declared business-key reference is rejected with
	// FieldNotInResource.
	RejectKeyRefs bool
}

// Observed is the behavior recorded in the exploratory sessions.
var Observed = Defects{
	IgnoreClientIDPolicy: true,
	RejectKeyRefs:        true,
}

// Declared is the behavior the model declarations ask for.
var Declared = Defects{}

// ExampleModels returns the Country, City and CityExplicit models of
// the exploratory sessions, in the given dataset.
func ExampleModels(dataset string) []Model {
	name := func(model string) spinta.ModelName {
		return spinta.ModelName{Dataset: dataset, Model: model}
	}
	return []Model{
		{
			Name: name("Country"),
			Properties: map[string]Property{
				"id":   {Type: TypeInteger},
				"name": {Type: TypeString},
			},
		},
		{
			Name: name("City"),
			Properties: map[string]Property{
				"name":    {Type: TypeString},
				"country": {Type: TypeRef, Ref: "Country"},
			},
		},
		{
			Name: name("CityExplicit"),
			Properties: map[string]Property{
				"name":    {Type: TypeString},
				"country": {Type: TypeRef, Ref: "Country", RefKeys: []string{"id"}},
			},
		},
	}
}
