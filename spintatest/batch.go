// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package spintatest

import (
	"fmt"
	"strconv"

	"github.com/diffeo/go-spinta/restdata"
	"github.com/diffeo/go-spinta/spinta"
	"github.com/satori/go.uuid"
)

// Batch operations understood in a batch's _op.
const (
	OpInsert = "insert"
	OpUpsert = "upsert"
	OpPatch  = "patch"
)

type batchOp struct {
	model    *Model
	op       string
	existing spinta.Object
	obj      spinta.Object
}

// Batch applies every operation of a batch, or none of them if any
// operation fails validation.
func (s *Server) Batch(ctx *context, in interface{}) (interface{}, error) {
	batch, valid := in.(restdata.Batch)
	if !valid {
		return nil, errUnmarshal
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	ops := make([]batchOp, len(batch.Data))
	seen := make(map[string]bool)
	var errs spinta.Errors
	for i, item := range batch.Data {
		op, err := s.prepareOp(item, seen)
		if err != nil {
			errs = append(errs, indexErrors(i, err)...)
			continue
		}
		ops[i] = op
	}
	if len(errs) > 0 {
		return nil, errs
	}

	result := restdata.BatchResult{
		Transaction: uuid.NewV4().String(),
		Status:      "ok",
		Data:        make([]spinta.Object, len(ops)),
	}
	for i, op := range ops {
		tbl := s.tables[op.model.Name.String()]
		stored := op.obj
		if op.existing != nil {
			stored = copyObject(op.existing)
			if op.op == OpUpsert {
				stored = spinta.Object{
					spinta.KeyID:   op.existing.ID(),
					spinta.KeyType: op.existing.Type(),
				}
			}
			for k, v := range op.obj {
				stored[k] = v
			}
		}
		tbl.put(stored)
		out := copyObject(stored)
		out[spinta.KeyOp] = op.op
		result.Data[i] = out
	}
	return result, nil
}

// prepareOp validates one batch item.  Callers hold s.lock.
func (s *Server) prepareOp(item spinta.Object, seen map[string]bool) (batchOp, error) {
	name, err := spinta.ParseModelName(item.Type())
	if err != nil {
		return batchOp{}, spinta.Error{
			Code:    spinta.CodeNodeNotFound,
			Type:    "model",
			Message: fmt.Sprintf("Model %q not found.", item.Type()),
		}
	}
	model := s.models[name.String()]
	if model == nil {
		return batchOp{}, spinta.Error{
			Code:    spinta.CodeNodeNotFound,
			Type:    "model",
			Message: fmt.Sprintf("Model %q not found.", item.Type()),
			Context: map[string]string{"model": name.String()},
		}
	}

	op, _ := item[spinta.KeyOp].(string)
	if op == "" {
		op = OpInsert
	}
	var clientID bool
	switch op {
	case OpInsert:
		clientID = s.allowClientID(model)
	case OpUpsert, OpPatch:
		clientID = true
	default:
		return batchOp{}, spinta.Error{
			Code:    "UnknownAction",
			Message: fmt.Sprintf("Unknown action %q.", op),
			Context: map[string]string{"model": name.String()},
		}
	}

	obj, err := s.prepare(model, item, clientID)
	if err != nil {
		return batchOp{}, err
	}

	tbl := s.tables[name.String()]
	id := obj.ID()
	var existing spinta.Object
	if id != "" {
		existing, _ = tbl.get(id)
	}
	switch {
	case op == OpInsert && existing != nil, seen[name.String()+"/"+id] && id != "":
		return batchOp{}, uniqueConstraint(model, id)
	case op == OpPatch && existing == nil:
		return batchOp{}, spinta.Error{
			Code:    spinta.CodeItemDoesNotExist,
			Type:    "model",
			Message: fmt.Sprintf("Resource %q not found.", id),
			Context: map[string]string{"model": name.String(), "id": id},
		}
	}
	if id == "" {
		id = uuid.NewV4().String()
		obj[spinta.KeyID] = id
	}
	seen[name.String()+"/"+id] = true
	return batchOp{model: model, op: op, existing: existing, obj: obj}, nil
}

// indexErrors tags each server error from a batch item with its
// position in the batch.
func indexErrors(i int, err error) spinta.Errors {
	var errs spinta.Errors
	switch e := err.(type) {
	case spinta.Errors:
		errs = append(errs, e...)
	case spinta.Error:
		errs = append(errs, e)
	default:
		errs = append(errs, spinta.Error{Code: "error", Message: err.Error()})
	}
	for j := range errs {
		ctx := make(map[string]string, len(errs[j].Context)+1)
		for k, v := range errs[j].Context {
			ctx[k] = v
		}
		ctx["index"] = strconv.Itoa(i)
		errs[j].Context = ctx
	}
	return errs
}
