package http

import (
	"errors"
	"strings"
	"testing"
)

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestHex32Validation(t *testing.T) {
	type P struct {
		DocumentTypeID string `json:"document_type_id" validate:"hex32"`
	}
	cv := NewValidator()

	ok := P{DocumentTypeID: strings.Repeat("a", 32)}
	if err := cv.Validate(ok); err != nil {
		t.Fatalf("expected valid hex32, got err: %v", err)
	}

	for _, s := range []string{
		"",                                  // empty
		strings.Repeat("A", 32),             // uppercase
		"deadbeef",                          // too short
		strings.Repeat("g", 32),             // non-hex char
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",   // 31 chars
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88x", // 33 with extra
	} {
		err := cv.Validate(P{DocumentTypeID: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "document_type_id", "32-char lowercase hex") {
			t.Fatalf("expected hex32 message for %q, got: %+v", s, fe)
		}
	}
}

func TestNotBlankValidation(t *testing.T) {
	cv := NewValidator()
	for _, notes := range []string{"   ", "\t\n"} {
		err := cv.Validate(rejectReq{Notes: notes})
		if err == nil {
			t.Fatalf("expected error for %q", notes)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "notes", "is required") {
			t.Fatalf("unexpected mapping for %q: %+v", notes, fe)
		}
	}
	if err := cv.Validate(rejectReq{Notes: "wrong document"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpsertRequestMapping(t *testing.T) {
	cv := NewValidator()
	zero, unit := 0, "weeks"

	err := cv.Validate(upsertDocumentTypeReq{
		Name:          "",
		Category:      strings.Repeat("c", 65),
		RenewalPeriod: &zero,
		RenewalUnit:   &unit,
	})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	fe := ToFieldErrors(err)

	if !containsFieldMsg(fe, "name", "is required") {
		t.Fatalf("missing 'is required' for name: %+v", fe)
	}
	if !containsFieldMsg(fe, "category", "at most 64") {
		t.Fatalf("missing max message for category: %+v", fe)
	}
	if !containsFieldMsg(fe, "renewal_period", "greater than 0") {
		t.Fatalf("missing gt message for renewal_period: %+v", fe)
	}
	if !containsFieldMsg(fe, "renewal_unit", "days, months, years") {
		t.Fatalf("missing oneof message for renewal_unit: %+v", fe)
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	err := errors.New("boom")
	fe := ToFieldErrors(err)
	if len(fe) != 1 {
		t.Fatalf("expected 1 field error, got %d", len(fe))
	}
	if fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe[0])
	}
}
