// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package validation

// Result maps each form field to its error codes, in rule order.
// A field with no codes is valid; Valid is true iff no field has codes.
type Result struct {
	Errors map[string][]string
	Valid  bool

	fields []string
}

func newResult(fields []string) *Result {
	errs := make(map[string][]string, len(fields))
	for _, f := range fields {
		errs[f] = nil
	}
	return &Result{Errors: errs, fields: fields}
}

func (r *Result) add(field, code string) {
	if code == "" {
		return
	}
	r.Errors[field] = append(r.Errors[field], code)
}

func (r *Result) seal() Result {
	r.Valid = true
	for _, codes := range r.Errors {
		if len(codes) > 0 {
			r.Valid = false
			break
		}
	}
	return *r
}

// Field returns the error codes for one field.
func (r Result) Field(name string) []string {
	return r.Errors[name]
}

// HasErrors reports whether a field failed any rule.
func (r Result) HasErrors(name string) bool {
	return len(r.Errors[name]) > 0
}

// Fields returns the validated fields in form order.
func (r Result) Fields() []string {
	return r.fields
}

// First returns the first failure in form order.
func (r Result) First() (field, code string, ok bool) {
	for _, f := range r.fields {
		if codes := r.Errors[f]; len(codes) > 0 {
			return f, codes[0], true
		}
	}
	return "", "", false
}

// Count returns the total number of failures across all fields.
func (r Result) Count() int {
	n := 0
	for _, codes := range r.Errors {
		n += len(codes)
	}
	return n
}

// MessageKey maps a field failure to its catalog key.
func MessageKey(field, code string) string {
	switch code {
	case CodeRequired:
		return field + "Required"
	case CodeInvalidFormat:
		return "invalidEmail"
	case CodeTooShort:
		return "passwordTooShort"
	case CodeMismatch:
		return "passwordMismatch"
	default:
		return "generalError"
	}
}

// Clone returns a deep copy.
func (r Result) Clone() Result {
	out := r
	if r.Errors != nil {
		out.Errors = make(map[string][]string, len(r.Errors))
		for f, codes := range r.Errors {
			if codes == nil {
				out.Errors[f] = nil
				continue
			}
			out.Errors[f] = append([]string(nil), codes...)
		}
	}
	return out
}
