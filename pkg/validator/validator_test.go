package validator

import "testing"

type device struct {
	Brand string `json:"brand" validate:"notblank"`
	Model string `json:"model" validate:"notblank"`
	Note  string `json:"note"`
}

func TestValidateStructNotBlank(t *testing.T) {
	errs := ValidateStruct(device{Brand: "  ", Model: "X"}, "items[0].service_info")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %+v", len(errs), errs)
	}
	if errs[0].Field != "items[0].service_info.brand" {
		t.Errorf("unexpected field %q", errs[0].Field)
	}
}

func TestValidateStructPasses(t *testing.T) {
	if errs := ValidateStruct(device{Brand: "Acme", Model: "X1"}, ""); len(errs) != 0 {
		t.Errorf("expected no errors, got %+v", errs)
	}
}
