// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package spintatest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/diffeo/go-spinta/ascii"
	"github.com/diffeo/go-spinta/restdata"
	"github.com/diffeo/go-spinta/spinta"
	"github.com/satori/go.uuid"
)

func invalidValue(model *Model, property, message string) spinta.Error {
	return spinta.Error{
		Code:     spinta.CodeInvalidValue,
		Type:     "property",
		Template: "Invalid value.",
		Message:  message,
		Context: map[string]string{
			"model":    model.Name.String(),
			"dataset":  model.Name.Dataset,
			"property": property,
		},
	}
}

func managedProperty(model *Model, property string) spinta.Error {
	return spinta.Error{
		Code:     spinta.CodeManagedProperty,
		Type:     "property",
		Template: "Value of this property is managed automatically and cannot be set manually.",
		Message:  "Value of this property is managed automatically and cannot be set manually.",
		Context: map[string]string{
			"model":    model.Name.String(),
			"dataset":  model.Name.Dataset,
			"property": property,
		},
	}
}

// prepare validates one incoming object against model and returns the
// object to store, with references normalized.  Callers hold s.lock.
// clientID says whether an explicit _id is acceptable for this
// request.
func (s *Server) prepare(model *Model, in spinta.Object, clientID bool) (spinta.Object, error) {
	var errs spinta.Errors
	result := spinta.Object{spinta.KeyType: model.Name.String()}

	names := make([]string, 0, len(in))
	for k := range in {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, name := range names {
		value := in[name]
		switch name {
		case spinta.KeyType, spinta.KeyOp, spinta.KeyWhere:
			continue
		case spinta.KeyID:
			id, ok := value.(string)
			if _, err := uuid.FromString(id); !ok || err != nil {
				errs = append(errs, invalidValue(model, name, "Invalid _id value."))
				continue
			}
			if !clientID {
				errs = append(errs, managedProperty(model, name))
				continue
			}
			result[name] = id
			continue
		case spinta.KeyRevision:
			errs = append(errs, managedProperty(model, name))
			continue
		}

		prop, declared := model.Properties[name]
		if !declared {
			errs = append(errs, spinta.NewFieldNotInResource(model.Name, name))
			continue
		}
		switch prop.Type {
		case TypeInteger:
			if value != nil && !isInteger(value) {
				errs = append(errs, invalidValue(model, name, fmt.Sprintf("Invalid integer value %v.", value)))
				continue
			}
		case TypeString:
			if _, ok := value.(string); value != nil && !ok {
				errs = append(errs, invalidValue(model, name, fmt.Sprintf("Invalid string value %v.", value)))
				continue
			}
		case TypeRef:
			ref, refErrs := s.resolveRef(model, name, prop, value)
			if len(refErrs) > 0 {
				errs = append(errs, refErrs...)
				continue
			}
			value = ref
		}
		result[name] = value
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return result, nil
}

// resolveRef checks a reference value against its declaration and
// returns its normalized form.
func (s *Server) resolveRef(model *Model, name string, prop Property, value interface{}) (interface{}, spinta.Errors) {
	if value == nil {
		return nil, nil
	}
	target := s.target(model, prop)
	ref, shape := spinta.RefOf(value)
	if shape == spinta.RefInvalid || target == nil {
		return nil, spinta.Errors{invalidValue(model, name, "Invalid reference.")}
	}

	keys := prop.RefKeys
	if s.defects.RejectKeyRefs {
		keys = nil
	}

	if shape == spinta.RefByID && len(keys) > 0 {
		return nil, spinta.Errors{invalidValue(model, name, "Reference must be given by "+strings.Join(keys, ", ")+".")}
	}
	if shape == spinta.RefByID {
		var errs spinta.Errors
		for k := range ref {
			if k != spinta.KeyID {
				errs = append(errs, spinta.NewFieldNotInResource(model.Name, k))
			}
		}
		if len(errs) > 0 {
			return nil, errs
		}
		id, _ := ref[spinta.KeyID].(string)
		if _, found := s.tables[target.Name.String()].get(id); !found {
			return nil, spinta.Errors{referencedNotFound(model, name, id)}
		}
		return spinta.RefID(id), nil
	}

	allowed := make(map[string]bool, len(keys))
	for _, k := range keys {
		allowed[k] = true
	}
	var errs spinta.Errors
	var refKeys []string
	for k := range ref {
		refKeys = append(refKeys, k)
	}
	sort.Strings(refKeys)
	for _, k := range refKeys {
		if !allowed[k] {
			errs = append(errs, spinta.NewFieldNotInResource(model.Name, k))
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	if len(ref) != len(keys) {
		return nil, spinta.Errors{invalidValue(model, name, "Reference must give every key: "+strings.Join(keys, ", ")+".")}
	}
	if _, found := s.tables[target.Name.String()].findByKey(ref); !found {
		return nil, spinta.Errors{referencedNotFound(model, name, fmt.Sprint(ref))}
	}
	return ref, nil
}

func referencedNotFound(model *Model, property, id string) spinta.Error {
	return spinta.Error{
		Code:    "ReferencedObjectNotFound",
		Type:    "property",
		Message: fmt.Sprintf("Referenced object %s not found.", id),
		Context: map[string]string{
			"model":    model.Name.String(),
			"property": property,
			"id":       id,
		},
	}
}

// allowClientID decides whether POST may carry its own _id.
func (s *Server) allowClientID(model *Model) bool {
	return model.ClientID || s.defects.IgnoreClientIDPolicy
}

// Insert creates a new object.
func (s *Server) Insert(ctx *context, in interface{}) (interface{}, error) {
	obj, valid := in.(spinta.Object)
	if !valid {
		return nil, errUnmarshal
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	prepared, err := s.prepare(ctx.Model, obj, s.allowClientID(ctx.Model))
	if err != nil {
		return nil, err
	}
	tbl := s.tables[ctx.Model.Name.String()]
	if id := prepared.ID(); id != "" {
		if _, exists := tbl.get(id); exists {
			return nil, uniqueConstraint(ctx.Model, id)
		}
	} else {
		prepared[spinta.KeyID] = uuid.NewV4().String()
	}
	tbl.put(prepared)

	return responseCreated{
		Location: s.location(ctx.Model, prepared.ID()),
		Body:     copyObject(prepared),
	}, nil
}

func uniqueConstraint(model *Model, id string) spinta.Error {
	return spinta.Error{
		Code:    spinta.CodeUniqueConstraint,
		Type:    "property",
		Message: "Given value already exists.",
		Context: map[string]string{
			"model":    model.Name.String(),
			"property": spinta.KeyID,
			"id":       id,
		},
	}
}

// GetOne returns a single object by _id.
func (s *Server) GetOne(ctx *context) (interface{}, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	obj, found := s.tables[ctx.Model.Name.String()].get(ctx.ID)
	if !found {
		return nil, spinta.Error{
			Code:    spinta.CodeItemDoesNotExist,
			Type:    "model",
			Message: fmt.Sprintf("Resource %q not found.", ctx.ID),
			Context: map[string]string{
				"model": ctx.Model.Name.String(),
				"id":    ctx.ID,
			},
		}
	}
	return copyObject(obj), nil
}

// GetAll returns a model's objects as JSON or an ascii table.
func (s *Server) GetAll(ctx *context) (interface{}, error) {
	s.lock.Lock()
	objects := s.tables[ctx.Model.Name.String()].all()
	rows := make([]spinta.Object, len(objects))
	for i, obj := range objects {
		rows[i] = copyObject(obj)
	}
	s.lock.Unlock()

	q := ctx.Query
	if err := s.checkSelect(ctx.Model, q.Select); err != nil {
		return nil, err
	}
	sortObjects(rows, q.Sort)
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	if len(q.Select) > 0 {
		for i, row := range rows {
			selected := spinta.Object{}
			for _, name := range q.Select {
				if v, ok := row[name]; ok {
					selected[name] = v
				}
			}
			rows[i] = selected
		}
	}

	switch q.Format {
	case "", "json":
		return restdata.DataList{Data: rows}, nil
	case spinta.FormatASCII:
		return textResponse(renderTable(ctx.Model, q.Select, rows)), nil
	default:
		return nil, spinta.Error{
			Code:    "UnknownOutputFormat",
			Message: fmt.Sprintf("Unknown output format %q.", q.Format),
		}
	}
}

func (s *Server) checkSelect(model *Model, selected []string) error {
	var errs spinta.Errors
	for _, name := range selected {
		if spinta.IsReserved(name) {
			continue
		}
		if _, declared := model.Properties[name]; !declared {
			errs = append(errs, spinta.NewFieldNotInResource(model.Name, name))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func renderTable(model *Model, selected []string, rows []spinta.Object) string {
	flat := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		flat[i] = ascii.Flatten(row)
	}
	if len(selected) == 0 {
		selected = []string{spinta.KeyType, spinta.KeyID, spinta.KeyRevision}
		var props []string
		for name := range model.Properties {
			props = append(props, name)
		}
		sort.Strings(props)
		selected = append(selected, props...)
	}
	return ascii.Render(ascii.Columns(selected, flat), flat, ascii.Options{})
}

func sortObjects(rows []spinta.Object, keys []string) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, key := range keys {
			desc := strings.HasPrefix(key, "-")
			key = strings.TrimLeft(key, "+-")
			a := ascii.FormatValue(rows[i][key])
			b := ascii.FormatValue(rows[j][key])
			if fa, ok := toFloat(rows[i][key]); ok {
				if fb, ok := toFloat(rows[j][key]); ok {
					if fa != fb {
						return (fa < fb) != desc
					}
					continue
				}
			}
			if a != b {
				return (a < b) != desc
			}
		}
		return false
	})
}
